package spawn

//go:generate mockgen -destination=mock/mock_service.go -package=mockspawn -source=service.go

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/treacherygg/pokebot/internal/clients/pokeapi"
	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/guilds"
	"github.com/treacherygg/pokebot/internal/rng"
	"github.com/treacherygg/pokebot/internal/tag"
)

// TimeProvider abstracts the clock for cooldown checks
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider is the wall clock
type RealTimeProvider struct{}

func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Spawned is an active wild creature waiting to be caught.
type Spawned struct {
	SpeciesID int
	Name      string
	SpriteURL string
}

// DisplayName returns the spawned species name for chat
func (s *Spawned) DisplayName() string {
	return entities.Capitalize(s.Name)
}

// Service defines the spawn service interface
type Service interface {
	// Configure sets a guild's spawn channel, rate (percent) and
	// cooldown (minutes)
	Configure(ctx context.Context, guildID, channelID string, ratePercent, cooldownMinutes float64) error

	// HandleMessage rolls for a random spawn on guild chatter; nil
	// means nothing spawned
	HandleMessage(ctx context.Context, guildID, channelID string) (*Spawned, error)

	// Spawn forces a wild creature to appear; force bypasses the
	// cooldown
	Spawn(ctx context.Context, guildID string, force bool) (*Spawned, error)

	// Active returns the guild's current uncaught spawn, if any
	Active(guildID string) *Spawned

	// Catch matches a guess against the active spawn and stores the
	// catch; exactly one concurrent guess can win
	Catch(ctx context.Context, guildID, trainerID, guess string) (*entities.Creature, error)
}

type guildState struct {
	lastSpawn time.Time
	active    *Spawned
}

// service implements the Service interface
type service struct {
	guildRepo    guilds.Repository
	creatureRepo creatures.Repository
	catalog      pokeapi.Client
	tagGen       tag.Generator
	random       rng.Source
	clock        TimeProvider
	logger       zerolog.Logger

	mu     sync.Mutex
	states map[string]*guildState
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	GuildRepo    guilds.Repository    // Required
	CreatureRepo creatures.Repository // Required
	Catalog      pokeapi.Client       // Required
	TagGenerator tag.Generator        // Optional, defaults to UUID-based tags
	Random       rng.Source           // Optional, defaults to a seeded source
	Time         TimeProvider         // Optional, defaults to the wall clock
	Logger       *zerolog.Logger      // Optional, discards when nil
}

// NewService creates a new spawn service
func NewService(cfg *ServiceConfig) Service {
	if cfg.GuildRepo == nil {
		panic("guild repository is required")
	}
	if cfg.CreatureRepo == nil {
		panic("creature repository is required")
	}
	if cfg.Catalog == nil {
		panic("catalog client is required")
	}

	tagGen := cfg.TagGenerator
	if tagGen == nil {
		tagGen = tag.NewUUIDGenerator()
	}
	random := cfg.Random
	if random == nil {
		random = rng.NewRandomSource()
	}
	clock := cfg.Time
	if clock == nil {
		clock = &RealTimeProvider{}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &service{
		guildRepo:    cfg.GuildRepo,
		creatureRepo: cfg.CreatureRepo,
		catalog:      cfg.Catalog,
		tagGen:       tagGen,
		random:       random,
		clock:        clock,
		logger:       logger,
		states:       make(map[string]*guildState),
	}
}

// Configure sets a guild's spawn channel, rate and cooldown
func (s *service) Configure(ctx context.Context, guildID, channelID string, ratePercent, cooldownMinutes float64) error {
	if guildID == "" {
		return apperr.InvalidArgument("guild ID is required")
	}
	if channelID == "" {
		return apperr.InvalidArgument("channel ID is required")
	}
	if ratePercent < 0 || ratePercent > 100 {
		return apperr.Validationf("spawn rate must be between 0 and 100, got %v", ratePercent)
	}
	if cooldownMinutes < 0 {
		return apperr.Validationf("cooldown cannot be negative, got %v", cooldownMinutes)
	}

	return s.guildRepo.Set(ctx, guildID, &guilds.Settings{
		SpawnChannelID:  channelID,
		SpawnRate:       ratePercent / 100,
		CooldownMinutes: cooldownMinutes,
	})
}

// HandleMessage rolls for a random spawn on guild chatter
func (s *service) HandleMessage(ctx context.Context, guildID, channelID string) (*Spawned, error) {
	if guildID == "" || channelID == "" {
		return nil, nil
	}

	settings, err := s.guildRepo.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if settings.SpawnChannelID != channelID || settings.SpawnRate <= 0 {
		return nil, nil
	}
	if s.random.Float64() >= settings.SpawnRate {
		return nil, nil
	}

	return s.spawn(ctx, guildID, settings, false)
}

// Spawn forces a wild creature to appear
func (s *service) Spawn(ctx context.Context, guildID string, force bool) (*Spawned, error) {
	if guildID == "" {
		return nil, apperr.InvalidArgument("guild ID is required")
	}

	settings, err := s.guildRepo.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	return s.spawn(ctx, guildID, settings, force)
}

func (s *service) spawn(ctx context.Context, guildID string, settings *guilds.Settings, force bool) (*Spawned, error) {
	now := s.clock.Now()

	s.mu.Lock()
	state := s.states[guildID]
	if state == nil {
		state = &guildState{}
		s.states[guildID] = state
	}
	cooldown := time.Duration(settings.CooldownMinutes * float64(time.Minute))
	if !force && !state.lastSpawn.IsZero() && now.Sub(state.lastSpawn) < cooldown {
		s.mu.Unlock()
		return nil, nil
	}
	// Claim the window before the catalog call so concurrent messages
	// cannot double-spawn.
	previous := state.lastSpawn
	state.lastSpawn = now
	s.mu.Unlock()

	speciesID := 1 + s.random.Intn(s.catalog.SpeciesCount())
	species, err := s.catalog.GetSpecies(ctx, strconv.Itoa(speciesID))
	if err != nil {
		// Release the window so a transient catalog failure does not
		// block spawns for the whole cooldown.
		s.mu.Lock()
		if state.lastSpawn.Equal(now) {
			state.lastSpawn = previous
		}
		s.mu.Unlock()
		s.logger.Warn().Int("species_id", speciesID).Err(err).Msg("spawn lookup failed")
		return nil, apperr.Unavailable("the tall grass rustled, but nothing came out")
	}

	spawned := &Spawned{
		SpeciesID: species.ID,
		Name:      species.Name,
		SpriteURL: species.SpriteURL,
	}

	s.mu.Lock()
	state.active = spawned
	s.mu.Unlock()

	s.logger.Info().Str("guild_id", guildID).Str("species", species.Name).Msg("creature spawned")
	return spawned, nil
}

// Active returns the guild's current uncaught spawn
func (s *service) Active(guildID string) *Spawned {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state := s.states[guildID]; state != nil {
		return state.active
	}
	return nil
}

// Catch matches a guess against the active spawn and stores the catch
func (s *service) Catch(ctx context.Context, guildID, trainerID, guess string) (*entities.Creature, error) {
	if guildID == "" || trainerID == "" {
		return nil, apperr.InvalidArgument("guild and trainer are required")
	}
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return nil, apperr.InvalidArgument("a name guess is required")
	}

	s.mu.Lock()
	state := s.states[guildID]
	if state == nil || state.active == nil {
		s.mu.Unlock()
		return nil, apperr.NotFound("there is nothing to catch right now")
	}
	active := state.active

	if !nameMatches(active.Name, guess) {
		s.mu.Unlock()
		return nil, apperr.Validation("that doesn't look like the wild creature")
	}

	// Claim the spawn before writing so a concurrent catch sees an
	// empty slot.
	state.active = nil
	s.mu.Unlock()

	creature := &entities.Creature{
		OwnerID:   trainerID,
		SpeciesID: active.SpeciesID,
		Name:      active.Name,
		Level:     1,
		Tag:       s.tagGen.New(),
	}
	if err := s.creatureRepo.Create(ctx, creature); err != nil {
		// Put the spawn back so someone else can still catch it
		s.mu.Lock()
		if state.active == nil {
			state.active = active
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to store catch: %w", err)
	}

	return creature, nil
}

// nameMatches compares a guess against the API species name, tolerant
// of substrings in either direction.
func nameMatches(speciesName, guess string) bool {
	name := strings.ToLower(speciesName)
	normalized := pokeapi.NormalizeName(guess)
	return strings.Contains(name, normalized) || strings.Contains(normalized, name)
}
