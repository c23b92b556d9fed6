package guilds

import (
	"context"
	"sync"

	apperr "github.com/treacherygg/pokebot/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the guild
// settings repository. Useful for testing and running without Redis.
type InMemoryRepository struct {
	mu       sync.RWMutex
	settings map[string]Settings
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		settings: make(map[string]Settings),
	}
}

// Get retrieves a guild's settings
func (r *InMemoryRepository) Get(ctx context.Context, guildID string) (*Settings, error) {
	if guildID == "" {
		return nil, apperr.InvalidArgument("guild ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, exists := r.settings[guildID]
	if !exists {
		return DefaultSettings(), nil
	}

	copied := settings
	return &copied, nil
}

// Set overwrites a guild's settings
func (r *InMemoryRepository) Set(ctx context.Context, guildID string, settings *Settings) error {
	if guildID == "" {
		return apperr.InvalidArgument("guild ID is required")
	}
	if settings == nil {
		return apperr.InvalidArgument("settings cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[guildID] = *settings
	return nil
}
