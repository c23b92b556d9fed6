package battle

//go:generate mockgen -destination=mock/mock_service.go -package=mockbattle -source=service.go

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/treacherygg/pokebot/internal/clients/pokeapi"
	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/parties"
	"github.com/treacherygg/pokebot/internal/rng"
)

// DefaultTurnDelay paces the fight so chat can keep up.
const DefaultTurnDelay = 1500 * time.Millisecond

// maxTurns caps a fight that cannot land damage (mutual immunity);
// hitting the cap resolves as a tie.
const maxTurns = 1000

// supportMoves never deal damage and are excluded from battle pools.
var supportMoves = map[string]struct{}{
	"after-you":     {},
	"quash":         {},
	"helping-hand":  {},
	"ally-switch":   {},
	"follow-me":     {},
	"rage-powder":   {},
	"aromatic-mist": {},
	"hold-hands":    {},
	"spotlight":     {},
}

// TurnEvent describes one attack.
type TurnEvent struct {
	Turn         int
	AttackerID   string
	Attacker     string
	Defender     string
	Move         string
	Damage       float64
	Multiplier   float64
	DefenderHP   int
	UsedFallback bool
}

// FaintEvent marks a combatant dropping to zero HP.
type FaintEvent struct {
	OwnerID string
	Name    string
}

// SwitchEvent marks the next combatant stepping in.
type SwitchEvent struct {
	OwnerID string
	Name    string
	HP      int
}

// Result is the outcome of a finished battle.
type Result struct {
	WinnerID string
	LoserID  string
	Tie      bool
	Turns    int
	Defeated []string
	FinalHP  map[string]int
}

// Reporter receives battle events as they happen. All methods are called
// from the battle goroutine; implementations must not block for long.
type Reporter interface {
	TurnPlayed(ev *TurnEvent)
	CreatureFainted(ev *FaintEvent)
	SwitchedIn(ev *SwitchEvent)
	BattleResolved(result *Result)
}

// Service defines the battle service interface
type Service interface {
	// Start runs a battle between two trainers to completion. It
	// blocks until the battle resolves or the context is cancelled.
	Start(ctx context.Context, initiatorID, opponentID string, reporter Reporter) (*Result, error)

	// InBattle reports whether a trainer is currently locked in a fight
	InBattle(trainerID string) bool
}

// combatant is one creature's battle state.
type combatant struct {
	creature *entities.Creature
	species  *entities.Species
	hp       int
	maxHP    int
}

func (c *combatant) name() string {
	return c.creature.DisplayName()
}

// service implements the Service interface
type service struct {
	creatureRepo creatures.Repository
	partyRepo    parties.Repository
	catalog      pokeapi.Client
	random       rng.Source
	turnDelay    time.Duration
	logger       zerolog.Logger

	registry *registry
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	CreatureRepo creatures.Repository // Required
	PartyRepo    parties.Repository   // Required
	Catalog      pokeapi.Client       // Required
	Random       rng.Source           // Optional, defaults to a seeded source
	TurnDelay    *time.Duration       // Optional, defaults to 1.5s
	Logger       *zerolog.Logger      // Optional, discards when nil
}

// NewService creates a new battle service
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

	random := cfg.Random
	if random == nil {
		random = rng.NewRandomSource()
	}

	delay := DefaultTurnDelay
	if cfg.TurnDelay != nil {
		delay = *cfg.TurnDelay
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &service{
		creatureRepo: cfg.CreatureRepo,
		partyRepo:    cfg.PartyRepo,
		catalog:      cfg.Catalog,
		random:       random,
		turnDelay:    delay,
		logger:       logger,
		registry:     newRegistry(),
	}
}

// InBattle reports whether a trainer is currently locked in a fight
func (s *service) InBattle(trainerID string) bool {
	return s.registry.locked(trainerID)
}

// Start runs a battle between two trainers to completion
func (s *service) Start(ctx context.Context, initiatorID, opponentID string, reporter Reporter) (*Result, error) {
	if initiatorID == "" || opponentID == "" {
		return nil, apperr.InvalidArgument("both trainers are required")
	}
	if initiatorID == opponentID {
		return nil, apperr.InvalidArgument("you cannot battle yourself")
	}

	if err := s.registry.claim(initiatorID, opponentID); err != nil {
		return nil, err
	}
	defer s.registry.release(initiatorID, opponentID)

	sideA, err := s.loadSide(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	sideB, err := s.loadSide(ctx, opponentID)
	if err != nil {
		return nil, err
	}

	if err := s.prepare(ctx, append(append([]*combatant{}, sideA...), sideB...)); err != nil {
		return nil, err
	}

	if reporter != nil {
		reporter.SwitchedIn(&SwitchEvent{OwnerID: initiatorID, Name: sideA[0].name(), HP: sideA[0].hp})
		reporter.SwitchedIn(&SwitchEvent{OwnerID: opponentID, Name: sideB[0].name(), HP: sideB[0].hp})
	}

	return s.run(ctx, initiatorID, opponentID, sideA, sideB, reporter)
}

// loadSide resolves a trainer's party tags into battle-ready combatants
func (s *service) loadSide(ctx context.Context, trainerID string) ([]*combatant, error) {
	party, err := s.partyRepo.Get(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	var side []*combatant
	for _, creatureTag := range party.Tags() {
		creature, err := s.creatureRepo.GetByTag(ctx, trainerID, creatureTag)
		if err != nil {
			s.logger.Debug().Str("trainer_id", trainerID).Str("tag", creatureTag).
				Err(err).Msg("skipping party slot")
			continue
		}
		side = append(side, &combatant{creature: creature})
	}

	if len(side) == 0 {
		return nil, apperr.Conflictf("<@%s> has no usable party", trainerID)
	}
	return side, nil
}

// prepare fetches species data and precomputes hit points for every
// combatant concurrently. A catalog failure falls back to the stock
// base HP rather than blocking the fight.
func (s *service) prepare(ctx context.Context, all []*combatant) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range all {
		c := c
		g.Go(func() error {
			baseHP := entities.FallbackBaseHP
			species, err := s.catalog.GetSpecies(gctx, strconv.Itoa(c.creature.SpeciesID))
			if err != nil {
				s.logger.Warn().Str("name", c.creature.Name).Err(err).
					Msg("species lookup failed, using fallback HP")
			} else {
				c.species = species
				baseHP = species.BaseHP
			}
			c.maxHP = entities.MaxHitPoints(baseHP, c.creature.Level)
			c.hp = c.maxHP
			return nil
		})
	}
	return g.Wait()
}

// run drives the alternating turn loop until one side is out
func (s *service) run(ctx context.Context, idA, idB string, sideA, sideB []*combatant, reporter Reporter) (*Result, error) {
	result := &Result{FinalHP: make(map[string]int)}
	moveCache := make(map[string]*entities.Move)
	typeCache := make(map[string]*entities.TypeRelations)

	for {
		result.Turns++

		done, err := s.attack(ctx, result, idA, idB, &sideA, &sideB, moveCache, typeCache, reporter)
		if err != nil {
			return nil, err
		}
		if !done {
			done, err = s.attack(ctx, result, idB, idA, &sideB, &sideA, moveCache, typeCache, reporter)
			if err != nil {
				return nil, err
			}
		}
		if done {
			break
		}
		if result.Turns >= maxTurns {
			result.Tie = true
			break
		}

		if s.turnDelay > 0 {
			select {
			case <-time.After(s.turnDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	for _, c := range sideA {
		result.FinalHP[hpKey(idA, c.creature.Tag)] = c.hp
	}
	for _, c := range sideB {
		result.FinalHP[hpKey(idB, c.creature.Tag)] = c.hp
	}

	if reporter != nil {
		reporter.BattleResolved(result)
	}
	return result, nil
}

// attack plays one side's move and reports whether the battle resolved
func (s *service) attack(
	ctx context.Context,
	result *Result,
	attackerID, defenderID string,
	attackers, defenders *[]*combatant,
	moveCache map[string]*entities.Move,
	typeCache map[string]*entities.TypeRelations,
	reporter Reporter,
) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	attacker := (*attackers)[0]
	defender := (*defenders)[0]

	move := s.pickMove(ctx, attacker, moveCache)

	multiplier := 1.0
	power := 0
	moveName := "a desperate tackle"
	usedFallback := true
	if move != nil {
		power = move.Power
		moveName = move.Name
		usedFallback = false
		multiplier = s.multiplier(ctx, move, defender, typeCache)
	}

	damage := entities.Damage(power, multiplier)
	defender.hp -= int(damage)
	if defender.hp < 0 {
		defender.hp = 0
	}

	if reporter != nil {
		reporter.TurnPlayed(&TurnEvent{
			Turn:         result.Turns,
			AttackerID:   attackerID,
			Attacker:     attacker.name(),
			Defender:     defender.name(),
			Move:         moveName,
			Damage:       damage,
			Multiplier:   multiplier,
			DefenderHP:   defender.hp,
			UsedFallback: usedFallback,
		})
	}

	if defender.hp > 0 {
		return false, nil
	}

	// Faint: record the defeat and pop the queue
	result.Defeated = append(result.Defeated, defender.name())
	result.FinalHP[hpKey(defenderID, defender.creature.Tag)] = 0
	*defenders = (*defenders)[1:]
	if reporter != nil {
		reporter.CreatureFainted(&FaintEvent{OwnerID: defenderID, Name: defender.name()})
	}

	if len(*defenders) == 0 {
		result.WinnerID = attackerID
		result.LoserID = defenderID
		return true, nil
	}

	next := (*defenders)[0]
	if reporter != nil {
		reporter.SwitchedIn(&SwitchEvent{OwnerID: defenderID, Name: next.name(), HP: next.hp})
	}
	return false, nil
}

// pickMove draws a random damaging move the attacker has learned at its
// level. A nil return is the no-move sentinel.
func (s *service) pickMove(ctx context.Context, attacker *combatant, moveCache map[string]*entities.Move) *entities.Move {
	if attacker.species == nil {
		return nil
	}

	var pool []*entities.Move
	for _, ref := range attacker.species.Moves {
		if ref.Method != entities.LearnMethodLevelUp || ref.LearnedAt > attacker.creature.Level {
			continue
		}
		if _, banned := supportMoves[ref.Name]; banned {
			continue
		}

		move, cached := moveCache[ref.Name]
		if !cached {
			var err error
			move, err = s.catalog.GetMove(ctx, ref.URL)
			if err != nil {
				s.logger.Debug().Str("move", ref.Name).Err(err).Msg("move lookup failed, skipping")
				continue
			}
			moveCache[ref.Name] = move
		}
		if move.Power > 0 {
			pool = append(pool, move)
		}
	}

	if len(pool) == 0 {
		return nil
	}
	return pool[s.random.Intn(len(pool))]
}

// multiplier resolves type effectiveness for a move against the
// defender. Lookup failures fall back to neutral damage.
func (s *service) multiplier(ctx context.Context, move *entities.Move, defender *combatant, typeCache map[string]*entities.TypeRelations) float64 {
	if move.Type == "" || defender.species == nil {
		return 1.0
	}

	relations, cached := typeCache[move.Type]
	if !cached {
		var err error
		relations, err = s.catalog.GetType(ctx, move.Type)
		if err != nil {
			s.logger.Debug().Str("type", move.Type).Err(err).Msg("type lookup failed, neutral damage")
			return 1.0
		}
		typeCache[move.Type] = relations
	}

	return entities.DamageMultiplier(relations, defender.species.Types)
}

func hpKey(trainerID, creatureTag string) string {
	return trainerID + ":" + creatureTag
}
