package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/parties"
)

func newTestService(t *testing.T) (Service, creatures.Repository, parties.Repository) {
	t.Helper()
	creatureRepo := creatures.NewInMemoryRepository()
	partyRepo := parties.NewInMemoryRepository()
	svc := NewService(&ServiceConfig{
		CreatureRepo: creatureRepo,
		PartyRepo:    partyRepo,
	})
	return svc, creatureRepo, partyRepo
}

func catchTestCreature(t *testing.T, repo creatures.Repository, owner, name string, speciesID, level int, creatureTag string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entities.Creature{
		OwnerID:   owner,
		SpeciesID: speciesID,
		Name:      name,
		Level:     level,
		Tag:       creatureTag,
	}))
}

func TestList(t *testing.T) {
	svc, creatureRepo, _ := newTestService(t)
	ctx := context.Background()

	catchTestCreature(t, creatureRepo, "trainer-1", "pikachu", 25, 10, "aaaaaa")
	catchTestCreature(t, creatureRepo, "trainer-1", "bulbasaur", 1, 1, "bbbbbb")

	entries, err := svc.List(ctx, "trainer-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bulbasaur", entries[0].Creature.Name)
	assert.Equal(t, "pikachu", entries[1].Creature.Name)
	assert.Equal(t, "0/1", entries[0].Progress())
	assert.Equal(t, "0/5", entries[1].Progress())

	_, err = svc.List(ctx, "")
	require.Error(t, err)
}

func TestFree(t *testing.T) {
	svc, creatureRepo, _ := newTestService(t)
	ctx := context.Background()

	catchTestCreature(t, creatureRepo, "trainer-1", "pikachu", 25, 10, "aaaaaa")

	freed, err := svc.Free(ctx, "trainer-1", "aaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", freed.Name)

	_, err = creatureRepo.GetByTag(ctx, "trainer-1", "aaaaaa")
	assert.True(t, apperr.IsNotFound(err))

	// Freeing an unowned tag is NotFound
	_, err = svc.Free(ctx, "trainer-1", "ffffff")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestFreeRejectsPartyMember(t *testing.T) {
	svc, creatureRepo, partyRepo := newTestService(t)
	ctx := context.Background()

	catchTestCreature(t, creatureRepo, "trainer-1", "pikachu", 25, 10, "aaaaaa")
	party := entities.Party{"aaaaaa", "-", "-", "-", "-", "-"}
	require.NoError(t, partyRepo.Set(ctx, "trainer-1", &party))

	_, err := svc.Free(ctx, "trainer-1", "aaaaaa")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// The row is untouched
	_, err = creatureRepo.GetByTag(ctx, "trainer-1", "aaaaaa")
	require.NoError(t, err)
}

func TestSetParty(t *testing.T) {
	svc, creatureRepo, _ := newTestService(t)
	ctx := context.Background()

	catchTestCreature(t, creatureRepo, "trainer-1", "pikachu", 25, 10, "aaaaaa")
	catchTestCreature(t, creatureRepo, "trainer-1", "bulbasaur", 1, 1, "bbbbbb")

	party, err := svc.SetParty(ctx, "trainer-1", []string{"AAAAAA", "-", "-", "-", "-", "-"})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaaa"}, party.Tags())

	// "-" preserves the previous occupant
	party, err = svc.SetParty(ctx, "trainer-1", []string{"-", "bbbbbb", "-", "-", "-", "-"})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb"}, party.Tags())
}

func TestSetPartyAllOrNothing(t *testing.T) {
	svc, creatureRepo, _ := newTestService(t)
	ctx := context.Background()

	catchTestCreature(t, creatureRepo, "trainer-1", "pikachu", 25, 10, "aaaaaa")

	// One bad tag rejects the whole update
	_, err := svc.SetParty(ctx, "trainer-1", []string{"aaaaaa", "ffffff", "-", "-", "-", "-"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	party, err := svc.GetParty(ctx, "trainer-1")
	require.NoError(t, err)
	assert.True(t, party.IsEmpty())
}

func TestSetPartyRejectsDuplicates(t *testing.T) {
	svc, creatureRepo, _ := newTestService(t)
	ctx := context.Background()

	catchTestCreature(t, creatureRepo, "trainer-1", "pikachu", 25, 10, "aaaaaa")
	catchTestCreature(t, creatureRepo, "trainer-1", "bulbasaur", 1, 1, "bbbbbb")

	_, err := svc.SetParty(ctx, "trainer-1", []string{"aaaaaa", "aaaaaa", "-", "-", "-", "-"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// Preserved slots collide with explicit assignments too
	_, err = svc.SetParty(ctx, "trainer-1", []string{"aaaaaa", "-", "-", "-", "-", "-"})
	require.NoError(t, err)
	_, err = svc.SetParty(ctx, "trainer-1", []string{"-", "aaaaaa", "-", "-", "-", "-"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSetPartySizeValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SetParty(context.Background(), "trainer-1", []string{"aaaaaa"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
