package collection

//go:generate mockgen -destination=mock/mock_service.go -package=mockcollection -source=service.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/parties"
	"github.com/treacherygg/pokebot/internal/tag"
)

// Entry is one pokedex row with its experience progress
type Entry struct {
	Creature    *entities.Creature
	RequiredExp int
}

// Progress renders the exp fraction the way the bot prints it
func (e *Entry) Progress() string {
	return fmt.Sprintf("%d/%d", e.Creature.Experience, e.RequiredExp)
}

// Service defines the collection service interface
type Service interface {
	// List retrieves a trainer's pokedex ordered by species id
	List(ctx context.Context, trainerID string) ([]*Entry, error)

	// Free releases an owned creature; creatures in the active party
	// cannot be freed
	Free(ctx context.Context, trainerID, creatureTag string) (*entities.Creature, error)

	// GetParty retrieves a trainer's active party
	GetParty(ctx context.Context, trainerID string) (*entities.Party, error)

	// SetParty assigns a trainer's party slots; a "-" entry preserves
	// the slot's previous occupant and the update is all-or-nothing
	SetParty(ctx context.Context, trainerID string, tags []string) (*entities.Party, error)
}

// service implements the Service interface
type service struct {
	creatureRepo creatures.Repository
	partyRepo    parties.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	CreatureRepo creatures.Repository // Required
	PartyRepo    parties.Repository   // Required
}

// NewService creates a new collection service
func NewService(cfg *ServiceConfig) Service {
	if cfg.CreatureRepo == nil {
		panic("creature repository is required")
	}
	if cfg.PartyRepo == nil {
		panic("party repository is required")
	}

	return &service{
		creatureRepo: cfg.CreatureRepo,
		partyRepo:    cfg.PartyRepo,
	}
}

// List retrieves a trainer's pokedex ordered by species id
func (s *service) List(ctx context.Context, trainerID string) ([]*Entry, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}

	owned, err := s.creatureRepo.ListByOwner(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatures: %w", err)
	}

	entries := make([]*Entry, 0, len(owned))
	for _, creature := range owned {
		entries = append(entries, &Entry{
			Creature:    creature,
			RequiredExp: entities.RequiredExperience(creature.Level),
		})
	}

	return entries, nil
}

// Free releases an owned creature
func (s *service) Free(ctx context.Context, trainerID, creatureTag string) (*entities.Creature, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}
	if creatureTag == "" {
		return nil, apperr.InvalidArgument("tag is required")
	}

	creature, err := s.creatureRepo.GetByTag(ctx, trainerID, creatureTag)
	if err != nil {
		return nil, err
	}

	party, err := s.partyRepo.Get(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}
	if party.Contains(creature.Tag) {
		return nil, apperr.Conflictf("%s is in your party; remove it before freeing", creature.DisplayName()).
			WithMeta("tag", creature.Tag)
	}

	if err := s.creatureRepo.Delete(ctx, trainerID, creature.Tag); err != nil {
		return nil, err
	}

	return creature, nil
}

// GetParty retrieves a trainer's active party
func (s *service) GetParty(ctx context.Context, trainerID string) (*entities.Party, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}
	return s.partyRepo.Get(ctx, trainerID)
}

// SetParty assigns a trainer's party slots
func (s *service) SetParty(ctx context.Context, trainerID string, tags []string) (*entities.Party, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}
	if len(tags) != entities.PartySize {
		return nil, apperr.Validationf("a party needs exactly %d entries, got %d", entities.PartySize, len(tags))
	}

	current, err := s.partyRepo.Get(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	next := *current
	seen := make(map[string]int, entities.PartySize)
	for i, raw := range tags {
		slot := strings.TrimSpace(raw)
		if slot == entities.EmptySlot {
			continue
		}

		normalized := tag.Normalize(slot)
		if _, getErr := s.creatureRepo.GetByTag(ctx, trainerID, normalized); getErr != nil {
			if apperr.IsNotFound(getErr) {
				return nil, apperr.Validationf("you do not own a creature tagged '%s'", normalized)
			}
			return nil, getErr
		}
		if prev, dup := seen[normalized]; dup {
			return nil, apperr.Validationf("tag '%s' appears in both slot %d and slot %d", normalized, prev+1, i+1)
		}

		seen[normalized] = i
		next[i] = normalized
	}

	// Slots preserved from the old party may now collide with an
	// explicitly assigned tag.
	assigned := make(map[string]int, entities.PartySize)
	for i, slot := range next {
		if slot == entities.EmptySlot {
			continue
		}
		if prev, dup := assigned[slot]; dup {
			return nil, apperr.Validationf("tag '%s' appears in both slot %d and slot %d", slot, prev+1, i+1)
		}
		assigned[slot] = i
	}

	if err := s.partyRepo.Set(ctx, trainerID, &next); err != nil {
		return nil, fmt.Errorf("failed to set party: %w", err)
	}

	return &next, nil
}
