package creatures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	creature := &entities.Creature{
		OwnerID:   "trainer-1",
		SpeciesID: 25,
		Name:      "pikachu",
		Level:     1,
		Tag:       "A1B2C3",
	}
	require.NoError(t, repo.Create(ctx, creature))

	got, err := repo.GetByTag(ctx, "trainer-1", "a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", got.Name)
	assert.Equal(t, "a1b2c3", got.Tag)

	// Duplicate tag for the same owner is rejected
	err = repo.Create(ctx, creature)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// Mutating the returned copy does not touch the stored row
	got.Level = 99
	again, err := repo.GetByTag(ctx, "trainer-1", "a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Level)
}

func TestInMemoryRepository_GetByTagNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByTag(context.Background(), "trainer-1", "ffffff")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestInMemoryRepository_ListByOwnerOrdering(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "trainer-1", SpeciesID: 25, Name: "pikachu", Level: 5, Tag: "zzzzzz"}))
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "trainer-1", SpeciesID: 1, Name: "bulbasaur", Level: 3, Tag: "aaaaaa"}))
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "trainer-1", SpeciesID: 1, Name: "bulbasaur", Level: 8, Tag: "cccccc"}))
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "trainer-2", SpeciesID: 4, Name: "charmander", Level: 1, Tag: "dddddd"}))

	list, err := repo.ListByOwner(ctx, "trainer-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "aaaaaa", list[0].Tag)
	assert.Equal(t, "cccccc", list[1].Tag)
	assert.Equal(t, "zzzzzz", list[2].Tag)

	empty, err := repo.ListByOwner(ctx, "trainer-3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInMemoryRepository_Update(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	creature := &entities.Creature{OwnerID: "trainer-1", SpeciesID: 25, Name: "pikachu", Level: 7, Tag: "a1b2c3", Experience: 2}
	require.NoError(t, repo.Create(ctx, creature))

	creature.Level = 8
	creature.Experience = 0
	require.NoError(t, repo.Update(ctx, creature))

	got, err := repo.GetByTag(ctx, "trainer-1", "a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Level)
	assert.Equal(t, 0, got.Experience)

	err = repo.Update(ctx, &entities.Creature{OwnerID: "trainer-1", Tag: "ffffff"})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestInMemoryRepository_CatchThenFree(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	creature := &entities.Creature{OwnerID: "trainer-1", SpeciesID: 25, Name: "pikachu", Level: 1, Tag: "a1b2c3"}
	require.NoError(t, repo.Create(ctx, creature))
	require.NoError(t, repo.Delete(ctx, "trainer-1", "a1b2c3"))

	_, err := repo.GetByTag(ctx, "trainer-1", "a1b2c3")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	err = repo.Delete(ctx, "trainer-1", "a1b2c3")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	// Freed tags can be reused
	require.NoError(t, repo.Create(ctx, creature))
}

func TestInMemoryRepository_SwapOwners(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "alice", SpeciesID: 25, Name: "pikachu", Level: 7, Tag: "aaaaaa"}))
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "bob", SpeciesID: 1, Name: "bulbasaur", Level: 3, Tag: "bbbbbb"}))

	err := repo.SwapOwners(ctx,
		Ref{OwnerID: "alice", Tag: "aaaaaa"},
		Ref{OwnerID: "bob", Tag: "bbbbbb"},
	)
	require.NoError(t, err)

	got, err := repo.GetByTag(ctx, "bob", "aaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", got.Name)
	assert.Equal(t, "bob", got.OwnerID)

	got, err = repo.GetByTag(ctx, "alice", "bbbbbb")
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", got.Name)
	assert.Equal(t, "alice", got.OwnerID)

	_, err = repo.GetByTag(ctx, "alice", "aaaaaa")
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.GetByTag(ctx, "bob", "bbbbbb")
	assert.True(t, apperr.IsNotFound(err))
}

func TestInMemoryRepository_SwapOwnersEqualTags(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "alice", SpeciesID: 25, Name: "pikachu", Level: 7, Tag: "cccccc"}))
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "bob", SpeciesID: 1, Name: "bulbasaur", Level: 3, Tag: "cccccc"}))

	err := repo.SwapOwners(ctx,
		Ref{OwnerID: "alice", Tag: "cccccc"},
		Ref{OwnerID: "bob", Tag: "cccccc"},
	)
	require.NoError(t, err)

	got, err := repo.GetByTag(ctx, "alice", "cccccc")
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", got.Name)

	got, err = repo.GetByTag(ctx, "bob", "cccccc")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", got.Name)
}

func TestInMemoryRepository_SwapOwnersRollsNothingOnFailure(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "alice", SpeciesID: 25, Name: "pikachu", Level: 7, Tag: "aaaaaa"}))
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "bob", SpeciesID: 1, Name: "bulbasaur", Level: 3, Tag: "bbbbbb"}))
	// Bob already holds alice's tag, so the swap must not apply at all
	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "bob", SpeciesID: 7, Name: "squirtle", Level: 2, Tag: "aaaaaa"}))

	err := repo.SwapOwners(ctx,
		Ref{OwnerID: "alice", Tag: "aaaaaa"},
		Ref{OwnerID: "bob", Tag: "bbbbbb"},
	)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	got, err := repo.GetByTag(ctx, "alice", "aaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
	got, err = repo.GetByTag(ctx, "bob", "bbbbbb")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.OwnerID)
}

func TestInMemoryRepository_SwapOwnersMissingRow(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Creature{OwnerID: "alice", SpeciesID: 25, Name: "pikachu", Level: 7, Tag: "aaaaaa"}))

	err := repo.SwapOwners(ctx,
		Ref{OwnerID: "alice", Tag: "aaaaaa"},
		Ref{OwnerID: "bob", Tag: "bbbbbb"},
	)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
