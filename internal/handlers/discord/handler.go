package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/services"
)

// Handler routes Discord messages to the game services
type Handler struct {
	provider *services.Provider
	prefix   string
	ownerID  string
	logger   zerolog.Logger
}

// HandlerConfig holds configuration for the handler
type HandlerConfig struct {
	ServiceProvider *services.Provider // Required
	CommandPrefix   string             // Optional, defaults to "$"
	OwnerID         string             // Optional, unlocks the manual spawn command
	Logger          *zerolog.Logger    // Optional, discards when nil
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg.ServiceProvider == nil {
		panic("service provider is required")
	}

	prefix := cfg.CommandPrefix
	if prefix == "" {
		prefix = "$"
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Handler{
		provider: cfg.ServiceProvider,
		prefix:   prefix,
		ownerID:  cfg.OwnerID,
		logger:   logger,
	}
}

// HandleMessageCreate is the discordgo MessageCreate handler
func (h *Handler) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx := context.Background()
	content := strings.TrimSpace(m.Content)

	if strings.HasPrefix(content, h.prefix) {
		h.dispatch(ctx, s, m, strings.TrimPrefix(content, h.prefix))
		return
	}

	// A reply might answer an open trade offer
	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		if err := h.provider.TradeService.Reply(ctx, m.MessageReference.MessageID, m.Author.ID, content); err != nil && !apperr.IsNotFound(err) {
			h.send(s, m.ChannelID, renderError(err))
		}
	}

	h.grantExperience(ctx, s, m)
	h.rollSpawn(ctx, s, m)
}

// dispatch routes one prefixed command; unknown commands are ignored
func (h *Handler) dispatch(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "catch":
		h.handleCatch(ctx, s, m, args)
	case "free":
		h.handleFree(ctx, s, m, args)
	case "pokedex":
		h.handlePokedex(ctx, s, m)
	case "party":
		h.handleParty(ctx, s, m, args)
	case "trade":
		h.handleTrade(ctx, s, m, args)
	case "evolve":
		h.handleEvolve(ctx, s, m, args)
	case "levelup":
		h.handleLevelUp(ctx, s, m)
	case "battle":
		h.handleBattle(s, m)
	case "spawn":
		h.handleSpawn(ctx, s, m)
	case "setpokemonspawn":
		h.handleConfigureSpawn(ctx, s, m, args)
	}
}

// grantExperience ticks the author's party and announces milestones
func (h *Handler) grantExperience(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	result, err := h.provider.ProgressionService.HandleMessage(ctx, m.Author.ID)
	if err != nil {
		h.logger.Error().Str("user_id", m.Author.ID).Err(err).Msg("experience tick failed")
		return
	}

	for _, creature := range result.Milestones {
		h.sendf(s, m.ChannelID, "%s reached level %d!", creature.DisplayName(), creature.Level)
	}
	for _, creature := range result.EvolutionReady {
		h.sendf(s, m.ChannelID, "%s is ready to evolve! Use `%sevolve %s`.",
			creature.DisplayName(), h.prefix, creature.Tag)
	}
}

// rollSpawn draws for a wild spawn on guild chatter
func (h *Handler) rollSpawn(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}

	spawned, err := h.provider.SpawnService.HandleMessage(ctx, m.GuildID, m.ChannelID)
	if err != nil {
		h.logger.Error().Str("guild_id", m.GuildID).Err(err).Msg("spawn roll failed")
		return
	}
	if spawned != nil {
		h.announceSpawn(s, m.ChannelID, spawned)
	}
}

// send delivers content in Discord-sized chunks
func (h *Handler) send(s *discordgo.Session, channelID, content string) {
	for _, chunk := range chunkMessage(content) {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			h.logger.Error().Str("channel_id", channelID).Err(err).Msg("failed to send message")
			return
		}
	}
}

func (h *Handler) sendf(s *discordgo.Session, channelID, format string, args ...any) {
	h.send(s, channelID, fmt.Sprintf(format, args...))
}

// renderError turns a service error into a chat-friendly line
func renderError(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong. Try again in a bit."
}
