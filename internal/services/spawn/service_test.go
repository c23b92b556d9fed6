package spawn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockpokeapi "github.com/treacherygg/pokebot/internal/clients/pokeapi/mock"
	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/guilds"
	"github.com/treacherygg/pokebot/internal/rng"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

type fixedTagGen struct {
	tags []string
	idx  int
}

func (g *fixedTagGen) New() string {
	t := g.tags[g.idx%len(g.tags)]
	g.idx++
	return t
}

type spawnEnv struct {
	svc          Service
	guildRepo    guilds.Repository
	creatureRepo creatures.Repository
	catalog      *mockpokeapi.MockClient
	clock        *fakeClock
	random       *rng.FixedSource
}

func newSpawnEnv(t *testing.T) *spawnEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	env := &spawnEnv{
		guildRepo:    guilds.NewInMemoryRepository(),
		creatureRepo: creatures.NewInMemoryRepository(),
		catalog:      mockpokeapi.NewMockClient(ctrl),
		clock:        &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		random:       &rng.FixedSource{Ints: []int{24}, Floats: []float64{0.0}},
	}
	env.svc = NewService(&ServiceConfig{
		GuildRepo:    env.guildRepo,
		CreatureRepo: env.creatureRepo,
		Catalog:      env.catalog,
		TagGenerator: &fixedTagGen{tags: []string{"a1b2c3", "d4e5f6"}},
		Random:       env.random,
		Time:         env.clock,
	})
	return env
}

func (e *spawnEnv) configure(t *testing.T, rate, cooldown float64) {
	t.Helper()
	require.NoError(t, e.svc.Configure(context.Background(), "guild-1", "channel-1", rate, cooldown))
}

func (e *spawnEnv) expectPikachu() {
	e.catalog.EXPECT().SpeciesCount().Return(151)
	e.catalog.EXPECT().GetSpecies(gomock.Any(), "25").Return(&entities.Species{
		ID:        25,
		Name:      "pikachu",
		BaseHP:    35,
		SpriteURL: "https://sprites.example/25.png",
	}, nil)
}

func TestConfigureStoresProbability(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)

	settings, err := env.guildRepo.Get(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "channel-1", settings.SpawnChannelID)
	assert.Equal(t, 0.25, settings.SpawnRate)
	assert.Equal(t, 5.0, settings.CooldownMinutes)
}

func TestConfigureValidation(t *testing.T) {
	env := newSpawnEnv(t)
	ctx := context.Background()

	require.Error(t, env.svc.Configure(ctx, "", "channel-1", 25, 5))
	require.Error(t, env.svc.Configure(ctx, "guild-1", "", 25, 5))
	require.Error(t, env.svc.Configure(ctx, "guild-1", "channel-1", 150, 5))
	require.Error(t, env.svc.Configure(ctx, "guild-1", "channel-1", 25, -1))
}

func TestHandleMessageSpawns(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	env.expectPikachu()

	spawned, err := env.svc.HandleMessage(context.Background(), "guild-1", "channel-1")
	require.NoError(t, err)
	require.NotNil(t, spawned)
	assert.Equal(t, 25, spawned.SpeciesID)
	assert.Equal(t, "Pikachu", spawned.DisplayName())
	assert.Equal(t, spawned, env.svc.Active("guild-1"))
}

func TestHandleMessageWrongChannel(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)

	spawned, err := env.svc.HandleMessage(context.Background(), "guild-1", "channel-other")
	require.NoError(t, err)
	assert.Nil(t, spawned)
}

func TestHandleMessageLosingDraw(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	env.random.Floats = []float64{0.9}

	spawned, err := env.svc.HandleMessage(context.Background(), "guild-1", "channel-1")
	require.NoError(t, err)
	assert.Nil(t, spawned)
}

func TestHandleMessageUnconfiguredGuild(t *testing.T) {
	env := newSpawnEnv(t)

	// Default settings have no channel and zero rate
	spawned, err := env.svc.HandleMessage(context.Background(), "guild-1", "channel-1")
	require.NoError(t, err)
	assert.Nil(t, spawned)
}

func TestSpawnCooldown(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	ctx := context.Background()

	env.expectPikachu()
	spawned, err := env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.NoError(t, err)
	require.NotNil(t, spawned)

	// Inside the window nothing spawns even on a winning draw
	spawned, err = env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.NoError(t, err)
	assert.Nil(t, spawned)

	// Past the window it spawns again
	env.clock.now = env.clock.now.Add(6 * time.Minute)
	env.expectPikachu()
	spawned, err = env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.NoError(t, err)
	assert.NotNil(t, spawned)
}

func TestSpawnFailedLookupReleasesCooldown(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	ctx := context.Background()

	env.catalog.EXPECT().SpeciesCount().Return(151)
	env.catalog.EXPECT().GetSpecies(gomock.Any(), "25").
		Return(nil, apperr.Unavailable("catalog down"))

	_, err := env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.Error(t, err)
	assert.True(t, apperr.IsUnavailable(err))

	// A failed lookup must not consume the window; a healthy retry one
	// minute later spawns
	env.clock.now = env.clock.now.Add(time.Minute)
	env.expectPikachu()
	spawned, err := env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.NoError(t, err)
	assert.NotNil(t, spawned)
}

func TestSpawnForceBypassesCooldown(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	ctx := context.Background()

	env.expectPikachu()
	_, err := env.svc.Spawn(ctx, "guild-1", false)
	require.NoError(t, err)

	// Cooldown blocks a plain spawn
	spawned, err := env.svc.Spawn(ctx, "guild-1", false)
	require.NoError(t, err)
	assert.Nil(t, spawned)

	// Force ignores it
	env.expectPikachu()
	spawned, err = env.svc.Spawn(ctx, "guild-1", true)
	require.NoError(t, err)
	assert.NotNil(t, spawned)
}

func TestCatch(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	ctx := context.Background()

	env.expectPikachu()
	_, err := env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.NoError(t, err)

	// Wrong guess leaves the spawn active
	_, err = env.svc.Catch(ctx, "guild-1", "trainer-1", "charmander")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.NotNil(t, env.svc.Active("guild-1"))

	// Case-insensitive match wins
	caught, err := env.svc.Catch(ctx, "guild-1", "trainer-1", "PIKACHU")
	require.NoError(t, err)
	assert.Equal(t, 25, caught.SpeciesID)
	assert.Equal(t, 1, caught.Level)
	assert.Equal(t, 0, caught.Experience)
	assert.Equal(t, "a1b2c3", caught.Tag)

	// The row landed in storage
	got, err := env.creatureRepo.GetByTag(ctx, "trainer-1", "a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", got.Name)

	// The slot cleared; a second catch finds nothing
	assert.Nil(t, env.svc.Active("guild-1"))
	_, err = env.svc.Catch(ctx, "guild-1", "trainer-2", "pikachu")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCatchSubstringMatch(t *testing.T) {
	env := newSpawnEnv(t)
	env.configure(t, 25, 5)
	ctx := context.Background()

	env.catalog.EXPECT().SpeciesCount().Return(151)
	env.catalog.EXPECT().GetSpecies(gomock.Any(), "25").Return(&entities.Species{
		ID:   29,
		Name: "nidoran-f",
	}, nil)
	_, err := env.svc.HandleMessage(ctx, "guild-1", "channel-1")
	require.NoError(t, err)

	// "nidoran" is a substring of the API name "nidoran-f"
	caught, err := env.svc.Catch(ctx, "guild-1", "trainer-1", "Nidoran")
	require.NoError(t, err)
	assert.Equal(t, "nidoran-f", caught.Name)
}

func TestCatchWithNothingActive(t *testing.T) {
	env := newSpawnEnv(t)

	_, err := env.svc.Catch(context.Background(), "guild-1", "trainer-1", "pikachu")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
