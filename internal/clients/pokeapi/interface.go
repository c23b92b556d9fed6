package pokeapi

//go:generate mockgen -destination=mock/mock_client.go -package=mockpokeapi -source=interface.go

import (
	"context"

	"github.com/treacherygg/pokebot/internal/entities"
)

// Client is the read-only catalog the game core consumes. Every call may
// fail with an unavailable error; callers treat that as skip-and-report,
// never as fatal to a batch.
type Client interface {
	// GetSpecies fetches a species by numeric id or normalized name:
	// display name, base HP stat, types, move list, sprite.
	GetSpecies(ctx context.Context, idOrName string) (*entities.Species, error)

	// GetMove resolves a move reference (URL from a species move list,
	// or a bare move name) to its power and type.
	GetMove(ctx context.Context, ref string) (*entities.Move, error)

	// GetType fetches the damage relations of an attacking type.
	GetType(ctx context.Context, typeName string) (*entities.TypeRelations, error)

	// GetEvolutionChain fetches the evolution tree containing the
	// species, rooted at the line's base form.
	GetEvolutionChain(ctx context.Context, speciesID int) (*entities.EvolutionChain, error)

	// SpeciesCount returns the size of the catalog id range spawns
	// draw from.
	SpeciesCount() int
}
