package parties

import (
	"context"
	"sync"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the party
// repository. Useful for testing and running without Redis.
type InMemoryRepository struct {
	mu      sync.RWMutex
	parties map[string]entities.Party
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		parties: make(map[string]entities.Party),
	}
}

// Get retrieves a trainer's party
func (r *InMemoryRepository) Get(ctx context.Context, ownerID string) (*entities.Party, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	party, exists := r.parties[ownerID]
	if !exists {
		return entities.NewParty(), nil
	}

	copied := party
	return &copied, nil
}

// Set overwrites a trainer's party
func (r *InMemoryRepository) Set(ctx context.Context, ownerID string, party *entities.Party) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}
	if party == nil {
		return apperr.InvalidArgument("party cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.parties[ownerID] = *party
	return nil
}
