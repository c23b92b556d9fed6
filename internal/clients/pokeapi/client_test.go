package pokeapi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treacherygg/pokebot/internal/clients/pokeapi"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/entities"
)

const pokemonFixture = `{
	"id": 25,
	"name": "pikachu",
	"stats": [
		{"base_stat": 35, "stat": {"name": "hp", "url": ""}},
		{"base_stat": 55, "stat": {"name": "attack", "url": ""}}
	],
	"types": [{"slot": 1, "type": {"name": "electric", "url": ""}}],
	"moves": [
		{
			"move": {"name": "thunder-shock", "url": "%s/move/84"},
			"version_group_details": [
				{"level_learned_at": 5, "move_learn_method": {"name": "level-up", "url": ""}},
				{"level_learned_at": 1, "move_learn_method": {"name": "level-up", "url": ""}}
			]
		},
		{
			"move": {"name": "surf", "url": "%s/move/57"},
			"version_group_details": [
				{"level_learned_at": 0, "move_learn_method": {"name": "machine", "url": ""}}
			]
		}
	],
	"sprites": {"other": {"official-artwork": {"front_default": "https://img.example/25.png"}}}
}`

func newTestServer(t *testing.T) (*httptest.Server, pokeapi.Client) {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/pikachu", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, pokemonFixture, server.URL, server.URL)
	})
	mux.HandleFunc("/pokemon/25", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, pokemonFixture, server.URL, server.URL)
	})
	mux.HandleFunc("/move/84", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 84, "name": "thunder-shock", "power": 40, "type": {"name": "electric", "url": ""}}`)
	})
	mux.HandleFunc("/move/splash", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 150, "name": "splash", "power": null, "type": {"name": "normal", "url": ""}}`)
	})
	mux.HandleFunc("/type/electric", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "electric", "damage_relations": {
			"double_damage_to": [{"name": "water", "url": ""}, {"name": "flying", "url": ""}],
			"half_damage_to": [{"name": "grass", "url": ""}],
			"no_damage_to": [{"name": "ground", "url": ""}]
		}}`)
	})
	mux.HandleFunc("/pokemon-species/25", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name": "pikachu", "evolution_chain": {"url": "%s/evolution-chain/10"}}`, server.URL)
	})
	mux.HandleFunc("/evolution-chain/10", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 10, "chain": {
			"species": {"name": "pichu", "url": "https://pokeapi.co/api/v2/pokemon-species/172/"},
			"evolution_details": [],
			"evolves_to": [{
				"species": {"name": "pikachu", "url": "https://pokeapi.co/api/v2/pokemon-species/25/"},
				"evolution_details": [{"trigger": {"name": "level-up", "url": ""}, "min_level": null, "item": null}],
				"evolves_to": [{
					"species": {"name": "raichu", "url": "https://pokeapi.co/api/v2/pokemon-species/26/"},
					"evolution_details": [{"trigger": {"name": "use-item", "url": ""}, "min_level": null, "item": {"name": "thunder-stone", "url": ""}}],
					"evolves_to": []
				}]
			}]
		}}`)
	})
	mux.HandleFunc("/pokemon/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := pokeapi.New(&pokeapi.Config{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
	})
	require.NoError(t, err)
	return server, client
}

func TestGetSpecies(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	species, err := client.GetSpecies(ctx, "Pikachu")
	require.NoError(t, err)

	assert.Equal(t, 25, species.ID)
	assert.Equal(t, "pikachu", species.Name)
	assert.Equal(t, 35, species.BaseHP)
	assert.Equal(t, []string{"electric"}, species.Types)
	assert.Equal(t, "https://img.example/25.png", species.SpriteURL)

	require.Len(t, species.Moves, 2)
	assert.Equal(t, "thunder-shock", species.Moves[0].Name)
	assert.Equal(t, entities.LearnMethodLevelUp, species.Moves[0].Method)
	// The lowest level-up learn level across version groups wins.
	assert.Equal(t, 1, species.Moves[0].LearnedAt)
	assert.Equal(t, "machine", species.Moves[1].Method)
}

func TestGetMove(t *testing.T) {
	server, client := newTestServer(t)
	ctx := context.Background()

	t.Run("by url", func(t *testing.T) {
		move, err := client.GetMove(ctx, server.URL+"/move/84")
		require.NoError(t, err)
		assert.Equal(t, "thunder-shock", move.Name)
		assert.Equal(t, 40, move.Power)
		assert.Equal(t, "electric", move.Type)
	})

	t.Run("null power decodes as zero", func(t *testing.T) {
		move, err := client.GetMove(ctx, "splash")
		require.NoError(t, err)
		assert.Equal(t, 0, move.Power)
	})
}

func TestGetType(t *testing.T) {
	_, client := newTestServer(t)

	relations, err := client.GetType(context.Background(), "electric")
	require.NoError(t, err)

	assert.Equal(t, []string{"water", "flying"}, relations.DoubleDamageTo)
	assert.Equal(t, []string{"grass"}, relations.HalfDamageTo)
	assert.Equal(t, []string{"ground"}, relations.NoDamageTo)
}

func TestGetEvolutionChain(t *testing.T) {
	_, client := newTestServer(t)

	chain, err := client.GetEvolutionChain(context.Background(), 25)
	require.NoError(t, err)
	require.NotNil(t, chain.Root)

	assert.Equal(t, "pichu", chain.Root.SpeciesName)
	assert.Equal(t, 172, chain.Root.SpeciesID)

	require.Len(t, chain.Root.EvolvesTo, 1)
	pikachu := chain.Root.EvolvesTo[0]
	assert.Equal(t, "pikachu", pikachu.SpeciesName)

	require.Len(t, pikachu.EvolvesTo, 1)
	raichu := pikachu.EvolvesTo[0]
	assert.Equal(t, 26, raichu.SpeciesID)
	require.Len(t, raichu.Details, 1)
	assert.Equal(t, entities.TriggerUseItem, raichu.Details[0].Trigger)
	assert.Equal(t, "thunder-stone", raichu.Details[0].Item)
}

func TestGetSpecies_UpstreamFailure(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.GetSpecies(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, apperr.IsUnavailable(err))
}

func TestGetSpecies_NotFound(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.GetSpecies(context.Background(), "missingno")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "mr-mime", pokeapi.NormalizeName("Mr. Mime"))
	assert.Equal(t, "pikachu", pokeapi.NormalizeName("  Pikachu "))
}
