package creatures

import (
	"context"
	"sort"
	"sync"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/tag"
)

// InMemoryRepository is an in-memory implementation of the creature
// repository. Useful for testing and running without Redis.
type InMemoryRepository struct {
	mu sync.RWMutex
	// owner id -> tag -> row
	rows map[string]map[string]*entities.Creature
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: make(map[string]map[string]*entities.Creature),
	}
}

// Create stores a newly caught creature
func (r *InMemoryRepository) Create(ctx context.Context, creature *entities.Creature) error {
	if creature == nil {
		return apperr.InvalidArgument("creature cannot be nil")
	}
	if creature.OwnerID == "" {
		return apperr.InvalidArgument("creature owner ID is required")
	}
	if creature.Tag == "" {
		return apperr.InvalidArgument("creature tag is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := tag.Normalize(creature.Tag)
	owned := r.rows[creature.OwnerID]
	if owned == nil {
		owned = make(map[string]*entities.Creature)
		r.rows[creature.OwnerID] = owned
	}
	if _, exists := owned[t]; exists {
		return apperr.Conflictf("creature with tag '%s' already exists", t).
			WithMeta("owner_id", creature.OwnerID)
	}

	copied := *creature
	copied.Tag = t
	owned[t] = &copied
	return nil
}

// GetByTag retrieves a creature by owner and tag
func (r *InMemoryRepository) GetByTag(ctx context.Context, ownerID, t string) (*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if t == "" {
		return nil, apperr.InvalidArgument("tag is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	creature, exists := r.rows[ownerID][tag.Normalize(t)]
	if !exists {
		return nil, apperr.NotFoundf("no creature with tag '%s'", tag.Normalize(t)).
			WithMeta("owner_id", ownerID)
	}

	copied := *creature
	return &copied, nil
}

// ListByOwner retrieves all of a trainer's creatures ordered by species id
func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Creature, 0, len(r.rows[ownerID]))
	for _, creature := range r.rows[ownerID] {
		copied := *creature
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SpeciesID != result[j].SpeciesID {
			return result[i].SpeciesID < result[j].SpeciesID
		}
		return result[i].Tag < result[j].Tag
	})

	return result, nil
}

// Update rewrites an existing creature row
func (r *InMemoryRepository) Update(ctx context.Context, creature *entities.Creature) error {
	if creature == nil {
		return apperr.InvalidArgument("creature cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := tag.Normalize(creature.Tag)
	if _, exists := r.rows[creature.OwnerID][t]; !exists {
		return apperr.NotFoundf("no creature with tag '%s'", t).
			WithMeta("owner_id", creature.OwnerID)
	}

	copied := *creature
	copied.Tag = t
	r.rows[creature.OwnerID][t] = &copied
	return nil
}

// Delete removes a creature row
func (r *InMemoryRepository) Delete(ctx context.Context, ownerID, t string) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}
	if t == "" {
		return apperr.InvalidArgument("tag is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	norm := tag.Normalize(t)
	if _, exists := r.rows[ownerID][norm]; !exists {
		return apperr.NotFoundf("no creature with tag '%s'", norm).
			WithMeta("owner_id", ownerID)
	}

	delete(r.rows[ownerID], norm)
	return nil
}

// SwapOwners exchanges ownership of two rows under one lock
func (r *InMemoryRepository) SwapOwners(ctx context.Context, first, second Ref) error {
	if first.OwnerID == second.OwnerID {
		return apperr.InvalidArgument("cannot swap a creature with its own owner")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	firstTag := tag.Normalize(first.Tag)
	secondTag := tag.Normalize(second.Tag)

	a, exists := r.rows[first.OwnerID][firstTag]
	if !exists {
		return apperr.NotFoundf("no creature with tag '%s'", firstTag).
			WithMeta("owner_id", first.OwnerID)
	}
	b, exists := r.rows[second.OwnerID][secondTag]
	if !exists {
		return apperr.NotFoundf("no creature with tag '%s'", secondTag).
			WithMeta("owner_id", second.OwnerID)
	}

	if firstTag != secondTag {
		if _, taken := r.rows[second.OwnerID][firstTag]; taken {
			return apperr.Conflictf("tag '%s' is already taken by the receiving trainer", firstTag)
		}
		if _, taken := r.rows[first.OwnerID][secondTag]; taken {
			return apperr.Conflictf("tag '%s' is already taken by the receiving trainer", secondTag)
		}
	}

	delete(r.rows[first.OwnerID], firstTag)
	delete(r.rows[second.OwnerID], secondTag)

	a.OwnerID, b.OwnerID = second.OwnerID, first.OwnerID
	if r.rows[second.OwnerID] == nil {
		r.rows[second.OwnerID] = make(map[string]*entities.Creature)
	}
	if r.rows[first.OwnerID] == nil {
		r.rows[first.OwnerID] = make(map[string]*entities.Creature)
	}
	r.rows[second.OwnerID][firstTag] = a
	r.rows[first.OwnerID][secondTag] = b
	return nil
}
