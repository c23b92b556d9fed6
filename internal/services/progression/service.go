package progression

//go:generate mockgen -destination=mock/mock_service.go -package=mockprogression -source=service.go

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/treacherygg/pokebot/internal/clients/pokeapi"
	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/parties"
)

// DefaultChoiceTimeout bounds how long an evolution choice may hang
// waiting for the trainer.
const DefaultChoiceTimeout = 30 * time.Second

// Chooser resolves an evolution with more than one eligible target. It
// returns the index of the chosen candidate; any error (including a
// deadline) leaves the creature untouched.
type Chooser interface {
	Choose(ctx context.Context, creature *entities.Creature, candidates []entities.Candidate) (int, error)
}

// MessageResult reports what a single chat message did to a party.
type MessageResult struct {
	// Milestones are creatures that just reached a multiple-of-10 level
	Milestones []*entities.Creature

	// EvolutionReady are creatures whose level-up made an evolution
	// newly available
	EvolutionReady []*entities.Creature
}

// EvolveReport is the per-tag outcome of an Evolve call.
type EvolveReport struct {
	Tag      string
	Creature *entities.Creature
	Evolved  bool
	From     string
	To       string
	Reason   string
}

// LevelReport is the per-creature outcome of a LevelUpToThreshold call.
type LevelReport struct {
	Creature  *entities.Creature
	FromLevel int
	ToLevel   int
	Raised    bool
	Reason    string
}

// Service defines the progression service interface
type Service interface {
	// HandleMessage grants one experience tick to every party member
	HandleMessage(ctx context.Context, trainerID string) (*MessageResult, error)

	// Evolve attempts to evolve the tagged creatures
	Evolve(ctx context.Context, trainerID string, tags []string, chooser Chooser) ([]*EvolveReport, error)

	// LevelUpToThreshold raises every owned creature to the level its
	// next evolution asks for
	LevelUpToThreshold(ctx context.Context, trainerID string) ([]*LevelReport, error)
}

// service implements the Service interface
type service struct {
	creatureRepo  creatures.Repository
	partyRepo     parties.Repository
	catalog       pokeapi.Client
	choiceTimeout time.Duration
	logger        zerolog.Logger
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	CreatureRepo  creatures.Repository // Required
	PartyRepo     parties.Repository   // Required
	Catalog       pokeapi.Client       // Required
	ChoiceTimeout time.Duration        // Optional, defaults to 30s
	Logger        *zerolog.Logger      // Optional, discards when nil
}

// NewService creates a new progression service
func NewService(cfg *ServiceConfig) Service {
	if cfg.CreatureRepo == nil {
		panic("creature repository is required")
	}
	if cfg.PartyRepo == nil {
		panic("party repository is required")
	}
	if cfg.Catalog == nil {
		panic("catalog client is required")
	}

	timeout := cfg.ChoiceTimeout
	if timeout <= 0 {
		timeout = DefaultChoiceTimeout
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &service{
		creatureRepo:  cfg.CreatureRepo,
		partyRepo:     cfg.PartyRepo,
		catalog:       cfg.Catalog,
		choiceTimeout: timeout,
		logger:        logger,
	}
}

// HandleMessage grants one experience tick to every party member
func (s *service) HandleMessage(ctx context.Context, trainerID string) (*MessageResult, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}

	party, err := s.partyRepo.Get(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	result := &MessageResult{}
	for _, creatureTag := range party.Tags() {
		creature, err := s.creatureRepo.GetByTag(ctx, trainerID, creatureTag)
		if err != nil {
			// Stale party slot, nothing to tick
			s.logger.Debug().Str("trainer_id", trainerID).Str("tag", creatureTag).
				Err(err).Msg("skipping party slot")
			continue
		}
		if creature.Level >= entities.MaxLevel {
			continue
		}

		leveled := false
		if creature.Experience+1 >= entities.RequiredExperience(creature.Level) {
			creature.Level++
			creature.Experience = 0
			leveled = true
		} else {
			creature.Experience++
		}

		if err := s.creatureRepo.Update(ctx, creature); err != nil {
			return nil, fmt.Errorf("failed to update creature: %w", err)
		}
		if !leveled {
			continue
		}

		if entities.MilestoneLevel(creature.Level) {
			result.Milestones = append(result.Milestones, creature)
		}

		// Eligibility is recomputed on every level-up; a catalog
		// failure only suppresses the report for this creature.
		eligible, err := s.eligibleCandidates(ctx, creature)
		if err != nil {
			s.logger.Debug().Str("trainer_id", trainerID).Str("tag", creatureTag).
				Err(err).Msg("eligibility check failed")
			continue
		}
		if len(eligible) > 0 {
			result.EvolutionReady = append(result.EvolutionReady, creature)
		}
	}

	return result, nil
}

// Evolve attempts to evolve the tagged creatures
func (s *service) Evolve(ctx context.Context, trainerID string, tags []string, chooser Chooser) ([]*EvolveReport, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}
	if len(tags) == 0 {
		return nil, apperr.InvalidArgument("at least one tag is required")
	}

	reports := make([]*EvolveReport, 0, len(tags))
	for _, creatureTag := range tags {
		reports = append(reports, s.evolveOne(ctx, trainerID, creatureTag, chooser))
	}
	return reports, nil
}

func (s *service) evolveOne(ctx context.Context, trainerID, creatureTag string, chooser Chooser) *EvolveReport {
	report := &EvolveReport{Tag: creatureTag}

	creature, err := s.creatureRepo.GetByTag(ctx, trainerID, creatureTag)
	if err != nil {
		report.Reason = fmt.Sprintf("no creature tagged '%s'", creatureTag)
		return report
	}
	report.Creature = creature
	report.From = creature.Name

	eligible, err := s.eligibleCandidates(ctx, creature)
	if err != nil {
		s.logger.Warn().Str("trainer_id", trainerID).Str("tag", creatureTag).
			Err(err).Msg("catalog lookup failed, skipping")
		report.Reason = fmt.Sprintf("%s could not be checked right now", creature.DisplayName())
		return report
	}
	if len(eligible) == 0 {
		report.Reason = fmt.Sprintf("%s is not eligible to evolve", creature.DisplayName())
		return report
	}

	chosen := eligible[0]
	if len(eligible) > 1 {
		if chooser == nil {
			report.Reason = fmt.Sprintf("%s has multiple evolutions and no choice was made", creature.DisplayName())
			return report
		}
		chooseCtx, cancel := context.WithTimeout(ctx, s.choiceTimeout)
		idx, chooseErr := chooser.Choose(chooseCtx, creature, eligible)
		cancel()
		if chooseErr != nil || idx < 0 || idx >= len(eligible) {
			report.Reason = fmt.Sprintf("no evolution chosen for %s", creature.DisplayName())
			return report
		}
		chosen = eligible[idx]
	}

	creature.SpeciesID = chosen.SpeciesID
	creature.Name = chosen.SpeciesName
	if err := s.creatureRepo.Update(ctx, creature); err != nil {
		report.Reason = fmt.Sprintf("failed to save %s", creature.DisplayName())
		return report
	}

	report.Evolved = true
	report.To = chosen.SpeciesName
	return report
}

// LevelUpToThreshold raises every owned creature to the level its next
// evolution asks for
func (s *service) LevelUpToThreshold(ctx context.Context, trainerID string) ([]*LevelReport, error) {
	if trainerID == "" {
		return nil, apperr.InvalidArgument("trainer ID is required")
	}

	owned, err := s.creatureRepo.ListByOwner(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatures: %w", err)
	}

	reports := make([]*LevelReport, 0, len(owned))
	for _, creature := range owned {
		report := &LevelReport{Creature: creature, FromLevel: creature.Level, ToLevel: creature.Level}
		reports = append(reports, report)

		chain, err := s.catalog.GetEvolutionChain(ctx, creature.SpeciesID)
		if err != nil {
			s.logger.Warn().Str("trainer_id", trainerID).Str("tag", creature.Tag).
				Err(err).Msg("catalog lookup failed, skipping")
			report.Reason = fmt.Sprintf("%s could not be checked right now", creature.DisplayName())
			continue
		}

		threshold, ok := chain.NextThreshold(creature.Name)
		if !ok {
			report.Reason = fmt.Sprintf("%s has no further evolution", creature.DisplayName())
			continue
		}
		if creature.Level >= threshold {
			report.Reason = fmt.Sprintf("%s is already at level %d", creature.DisplayName(), creature.Level)
			continue
		}

		creature.Level = threshold
		creature.Experience = 0
		if err := s.creatureRepo.Update(ctx, creature); err != nil {
			report.Reason = fmt.Sprintf("failed to save %s", creature.DisplayName())
			continue
		}
		report.ToLevel = threshold
		report.Raised = true
	}

	return reports, nil
}

// eligibleCandidates walks the creature's evolution chain and drops the
// creature's current form from the eligible set.
func (s *service) eligibleCandidates(ctx context.Context, creature *entities.Creature) ([]entities.Candidate, error) {
	chain, err := s.catalog.GetEvolutionChain(ctx, creature.SpeciesID)
	if err != nil {
		return nil, err
	}

	var eligible []entities.Candidate
	for _, cand := range chain.EligibleCandidates(creature.Level) {
		if cand.SpeciesID == creature.SpeciesID {
			continue
		}
		eligible = append(eligible, cand)
	}
	return eligible, nil
}
