package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/treacherygg/pokebot/internal/services/battle"
)

// channelReporter relays battle events into the channel the battle was
// started from.
type channelReporter struct {
	handler   *Handler
	session   *discordgo.Session
	channelID string
}

func (r *channelReporter) SwitchedIn(ev *battle.SwitchEvent) {
	r.handler.sendf(r.session, r.channelID, "<@%s> sent out %s (%d HP)!",
		ev.OwnerID, ev.Name, ev.HP)
}

func (r *channelReporter) TurnPlayed(ev *battle.TurnEvent) {
	var b strings.Builder
	if ev.UsedFallback {
		fmt.Fprintf(&b, "%s lashed out with %s!", ev.Attacker, ev.Move)
	} else {
		fmt.Fprintf(&b, "%s used %s!", ev.Attacker, ev.Move)
	}
	switch {
	case ev.Multiplier >= 2:
		b.WriteString(" It's super effective!")
	case ev.Multiplier == 0:
		b.WriteString(" It had no effect...")
	case ev.Multiplier < 1:
		b.WriteString(" It's not very effective...")
	}
	fmt.Fprintf(&b, " %s took %g damage (%d HP left).", ev.Defender, ev.Damage, ev.DefenderHP)
	r.handler.send(r.session, r.channelID, b.String())
}

func (r *channelReporter) CreatureFainted(ev *battle.FaintEvent) {
	r.handler.sendf(r.session, r.channelID, "%s fainted!", ev.Name)
}

func (r *channelReporter) BattleResolved(result *battle.Result) {
	if result.Tie {
		r.handler.send(r.session, r.channelID, "The battle ended in a draw!")
		return
	}
	r.handler.sendf(r.session, r.channelID, "<@%s> defeated <@%s> after %d turns!",
		result.WinnerID, result.LoserID, result.Turns)
}
