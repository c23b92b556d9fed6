package parties

//go:generate mockgen -destination=mock/mock_repository.go -package=mockparties -source=interface.go

import (
	"context"

	"github.com/treacherygg/pokebot/internal/entities"
)

// Repository defines the storage interface for trainer parties
type Repository interface {
	// Get retrieves a trainer's party; a trainer with no saved party
	// gets an empty one
	Get(ctx context.Context, ownerID string) (*entities.Party, error)

	// Set overwrites a trainer's party
	Set(ctx context.Context, ownerID string, party *entities.Party) error
}
