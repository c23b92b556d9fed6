package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/treacherygg/pokebot/internal/entities"
)

// numberEmojis are the reaction options for an evolution choice, capping
// the number of branches a trainer can pick from.
var numberEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

// reactionChooser resolves a branching evolution by posting the options
// as numbered reactions and waiting for the trainer to pick one.
type reactionChooser struct {
	session   *discordgo.Session
	channelID string
	trainerID string
}

func (c *reactionChooser) Choose(ctx context.Context, creature *entities.Creature, candidates []entities.Candidate) (int, error) {
	if len(candidates) > len(numberEmojis) {
		candidates = candidates[:len(numberEmojis)]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s can evolve into more than one form. React to pick:\n", creature.DisplayName())
	for i, cand := range candidates {
		fmt.Fprintf(&b, "%s %s\n", numberEmojis[i], entities.Capitalize(cand.SpeciesName))
	}

	msg, err := c.session.ChannelMessageSend(c.channelID, b.String())
	if err != nil {
		return 0, fmt.Errorf("failed to post evolution choices: %w", err)
	}
	for i := range candidates {
		if err := c.session.MessageReactionAdd(c.channelID, msg.ID, numberEmojis[i]); err != nil {
			return 0, fmt.Errorf("failed to add choice reaction: %w", err)
		}
	}

	picked := make(chan int, 1)
	remove := c.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.MessageID != msg.ID || r.UserID != c.trainerID {
			return
		}
		for i := range candidates {
			if r.Emoji.Name == numberEmojis[i] {
				select {
				case picked <- i:
				default:
				}
				return
			}
		}
	})
	defer remove()

	select {
	case idx := <-picked:
		return idx, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
