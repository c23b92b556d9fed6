package creatures

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcreatures -source=interface.go

import (
	"context"

	"github.com/treacherygg/pokebot/internal/entities"
)

// Ref identifies one owned creature row.
type Ref struct {
	OwnerID string
	Tag     string
}

// Repository defines the storage interface for pokedex rows
type Repository interface {
	// Create stores a newly caught creature; the (owner, tag) pair
	// must not exist yet
	Create(ctx context.Context, creature *entities.Creature) error

	// GetByTag retrieves a creature by owner and tag
	GetByTag(ctx context.Context, ownerID, tag string) (*entities.Creature, error)

	// ListByOwner retrieves all of a trainer's creatures ordered by
	// species id
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Creature, error)

	// Update rewrites an existing creature row
	Update(ctx context.Context, creature *entities.Creature) error

	// Delete removes a creature row
	Delete(ctx context.Context, ownerID, tag string) error

	// SwapOwners exchanges ownership of two rows as one atomic unit;
	// either both rewrites apply or neither does
	SwapOwners(ctx context.Context, first, second Ref) error
}
