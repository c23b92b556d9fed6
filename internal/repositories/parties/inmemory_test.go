package parties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treacherygg/pokebot/internal/entities"
)

func TestInMemoryRepository_GetDefaultsToEmpty(t *testing.T) {
	repo := NewInMemoryRepository()

	party, err := repo.Get(context.Background(), "trainer-1")
	require.NoError(t, err)
	assert.True(t, party.IsEmpty())

	_, err = repo.Get(context.Background(), "")
	require.Error(t, err)
}

func TestInMemoryRepository_SetAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	party := entities.Party{"aaaaaa", "-", "cccccc", "-", "-", "-"}
	require.NoError(t, repo.Set(ctx, "trainer-1", &party))

	got, err := repo.Get(ctx, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, party, *got)

	// The stored party is not aliased to the caller's value
	party[0] = "zzzzzz"
	got, err = repo.Get(ctx, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", got[0])

	require.Error(t, repo.Set(ctx, "trainer-1", nil))
}
