package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/services/spawn"
	"github.com/treacherygg/pokebot/internal/services/trade"
)

func (h *Handler) handleCatch(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if m.GuildID == "" {
		return
	}
	if len(args) == 0 {
		h.sendf(s, m.ChannelID, "Usage: `%scatch <name>`", h.prefix)
		return
	}

	guess := strings.Join(args, " ")
	caught, err := h.provider.SpawnService.Catch(ctx, m.GuildID, m.Author.ID, guess)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}

	h.sendf(s, m.ChannelID, "<@%s> caught %s! Its tag is `%s`.",
		m.Author.ID, caught.DisplayName(), caught.Tag)
}

func (h *Handler) handleFree(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) != 1 {
		h.sendf(s, m.ChannelID, "Usage: `%sfree <tag>`", h.prefix)
		return
	}

	freed, err := h.provider.CollectionService.Free(ctx, m.Author.ID, args[0])
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}

	h.sendf(s, m.ChannelID, "%s was released back into the wild. Bye bye, %s!",
		freed.DisplayName(), freed.DisplayName())
}

func (h *Handler) handlePokedex(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	entries, err := h.provider.CollectionService.List(ctx, m.Author.ID)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}

	for _, page := range pokedexPages(entries) {
		h.send(s, m.ChannelID, page)
	}
}

func (h *Handler) handleParty(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		party, err := h.provider.CollectionService.GetParty(ctx, m.Author.ID)
		if err != nil {
			h.send(s, m.ChannelID, renderError(err))
			return
		}
		h.send(s, m.ChannelID, renderParty(party))
		return
	}

	party, err := h.provider.CollectionService.SetParty(ctx, m.Author.ID, args)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}
	h.send(s, m.ChannelID, "Party updated!\n"+renderParty(party))
}

func (h *Handler) handleTrade(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	receiver, tag := parseMentionAndTag(m, args)
	if receiver == "" || tag == "" {
		h.sendf(s, m.ChannelID, "Usage: `%strade @user <tag>`", h.prefix)
		return
	}

	offerMsg, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"<@%s> wants to trade with <@%s>! Reply to this message with the tag you are offering in return.",
		m.Author.ID, receiver))
	if err != nil {
		h.logger.Error().Str("channel_id", m.ChannelID).Err(err).Msg("failed to post trade offer")
		return
	}

	offer, err := h.provider.TradeService.Open(ctx, offerMsg.ID, m.Author.ID, receiver, tag)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}

	go h.awaitTrade(s, m.ChannelID, offer)
}

// awaitTrade blocks on the offer's resolution and announces the outcome
func (h *Handler) awaitTrade(s *discordgo.Session, channelID string, offer *trade.Offer) {
	result, err := h.provider.TradeService.Await(context.Background(), offer.ID)
	switch {
	case apperr.IsTimeout(err):
		h.sendf(s, channelID, "The trade offer from <@%s> expired.", offer.SenderID)
	case err != nil:
		h.send(s, channelID, renderError(err))
	default:
		h.sendf(s, channelID, "Trade complete! <@%s> received %s and <@%s> received %s.",
			result.Offer.ReceiverID, result.Offer.Creature.DisplayName(),
			result.Offer.SenderID, result.Received.DisplayName())
	}
}

func (h *Handler) handleEvolve(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		h.sendf(s, m.ChannelID, "Usage: `%sevolve <tag> [tag...]`", h.prefix)
		return
	}

	chooser := &reactionChooser{
		session:   s,
		channelID: m.ChannelID,
		trainerID: m.Author.ID,
	}
	reports, err := h.provider.ProgressionService.Evolve(ctx, m.Author.ID, args, chooser)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}

	var b strings.Builder
	for _, report := range reports {
		if report.Evolved {
			fmt.Fprintf(&b, "What? %s is evolving... congratulations, it became %s!\n",
				entities.Capitalize(report.From), entities.Capitalize(report.To))
			continue
		}
		fmt.Fprintf(&b, "`%s`: %s\n", report.Tag, report.Reason)
	}
	h.send(s, m.ChannelID, strings.TrimRight(b.String(), "\n"))
}

func (h *Handler) handleLevelUp(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	reports, err := h.provider.ProgressionService.LevelUpToThreshold(ctx, m.Author.ID)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}
	if len(reports) == 0 {
		h.send(s, m.ChannelID, "You have no pokemon to level up.")
		return
	}

	var b strings.Builder
	for _, report := range reports {
		if report.Raised {
			fmt.Fprintf(&b, "%s jumped from level %d to level %d!\n",
				report.Creature.DisplayName(), report.FromLevel, report.ToLevel)
			continue
		}
		fmt.Fprintf(&b, "%s stayed at level %d: %s\n",
			report.Creature.DisplayName(), report.FromLevel, report.Reason)
	}
	h.send(s, m.ChannelID, strings.TrimRight(b.String(), "\n"))
}

func (h *Handler) handleBattle(s *discordgo.Session, m *discordgo.MessageCreate) {
	if len(m.Mentions) == 0 {
		h.sendf(s, m.ChannelID, "Usage: `%sbattle @user`", h.prefix)
		return
	}
	opponent := m.Mentions[0].ID

	go func() {
		reporter := &channelReporter{handler: h, session: s, channelID: m.ChannelID}
		if _, err := h.provider.BattleService.Start(context.Background(), m.Author.ID, opponent, reporter); err != nil {
			h.send(s, m.ChannelID, renderError(err))
		}
	}()
}

func (h *Handler) handleSpawn(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}
	if h.ownerID == "" || m.Author.ID != h.ownerID {
		h.send(s, m.ChannelID, "Only the bot owner can force a spawn.")
		return
	}

	spawned, err := h.provider.SpawnService.Spawn(ctx, m.GuildID, true)
	if err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}
	if spawned != nil {
		h.announceSpawn(s, m.ChannelID, spawned)
	}
}

func (h *Handler) handleConfigureSpawn(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if m.GuildID == "" {
		return
	}
	if !h.canManageGuild(s, m) {
		h.send(s, m.ChannelID, "You need the Manage Server permission to configure spawns.")
		return
	}
	if len(args) != 2 {
		h.sendf(s, m.ChannelID, "Usage: `%ssetpokemonspawn <rate%%> <cooldown minutes>`", h.prefix)
		return
	}

	rate, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
	if err != nil {
		h.send(s, m.ChannelID, "The spawn rate must be a number between 0 and 100.")
		return
	}
	cooldown, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		h.send(s, m.ChannelID, "The cooldown must be a number of minutes.")
		return
	}

	if err := h.provider.SpawnService.Configure(ctx, m.GuildID, m.ChannelID, rate, cooldown); err != nil {
		h.send(s, m.ChannelID, renderError(err))
		return
	}
	h.sendf(s, m.ChannelID,
		"Wild pokemon will now appear in this channel at a %g%% chance per message, at most once every %g minutes.",
		rate, cooldown)
}

func (h *Handler) canManageGuild(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if h.ownerID != "" && m.Author.ID == h.ownerID {
		return true
	}
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		h.logger.Error().Str("user_id", m.Author.ID).Err(err).Msg("permission lookup failed")
		return false
	}
	return perms&discordgo.PermissionManageServer != 0
}

func (h *Handler) announceSpawn(s *discordgo.Session, channelID string, spawned *spawn.Spawned) {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("A wild %s appeared!", spawned.DisplayName()),
		Description: fmt.Sprintf("Type `%scatch %s` to catch it!", h.prefix, spawned.Name),
	}
	if spawned.SpriteURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: spawned.SpriteURL}
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		h.logger.Error().Str("channel_id", channelID).Err(err).Msg("failed to announce spawn")
	}
}

// parseMentionAndTag pulls the mentioned user and the first non-mention
// argument out of a command line
func parseMentionAndTag(m *discordgo.MessageCreate, args []string) (string, string) {
	if len(m.Mentions) == 0 {
		return "", ""
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "<@") {
			continue
		}
		return m.Mentions[0].ID, arg
	}
	return m.Mentions[0].ID, ""
}
