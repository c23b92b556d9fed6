package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/entities"
)

const (
	defaultBaseURL = "https://pokeapi.co/api/v2"

	// Highest species id served by the catalog.
	defaultSpeciesCount = 1025
)

type client struct {
	http         *http.Client
	baseURL      string
	speciesCount int

	// Collapses identical concurrent lookups; battles fire bursts of
	// the same move and type fetches.
	group singleflight.Group
}

// Config holds configuration for the catalog client
type Config struct {
	HTTPClient   *http.Client
	BaseURL      string
	SpeciesCount int
}

// New creates a catalog client backed by the PokeAPI REST service
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("cfg cannot be nil")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	count := cfg.SpeciesCount
	if count == 0 {
		count = defaultSpeciesCount
	}

	return &client{
		http:         httpClient,
		baseURL:      baseURL,
		speciesCount: count,
	}, nil
}

// NormalizeName converts a display name into the catalog's URL form.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	return strings.ReplaceAll(name, ".", "")
}

func (c *client) SpeciesCount() int {
	return c.speciesCount
}

func (c *client) GetSpecies(ctx context.Context, idOrName string) (*entities.Species, error) {
	if idOrName == "" {
		return nil, apperr.InvalidArgument("species id or name is required")
	}

	var dto pokemonDTO
	url := fmt.Sprintf("%s/pokemon/%s", c.baseURL, NormalizeName(idOrName))
	if err := c.getJSON(ctx, url, &dto); err != nil {
		return nil, err
	}

	return dto.toSpecies(), nil
}

func (c *client) GetMove(ctx context.Context, ref string) (*entities.Move, error) {
	if ref == "" {
		return nil, apperr.InvalidArgument("move reference is required")
	}

	url := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		url = fmt.Sprintf("%s/move/%s", c.baseURL, NormalizeName(ref))
	}

	var dto moveDTO
	if err := c.getJSON(ctx, url, &dto); err != nil {
		return nil, err
	}

	move := &entities.Move{
		Name: dto.Name,
		Type: dto.Type.Name,
	}
	if dto.Power != nil {
		move.Power = *dto.Power
	}
	return move, nil
}

func (c *client) GetType(ctx context.Context, typeName string) (*entities.TypeRelations, error) {
	if typeName == "" {
		return nil, apperr.InvalidArgument("type name is required")
	}

	var dto typeDTO
	url := fmt.Sprintf("%s/type/%s", c.baseURL, NormalizeName(typeName))
	if err := c.getJSON(ctx, url, &dto); err != nil {
		return nil, err
	}

	return &entities.TypeRelations{
		DoubleDamageTo: refNames(dto.DamageRelations.DoubleDamageTo),
		HalfDamageTo:   refNames(dto.DamageRelations.HalfDamageTo),
		NoDamageTo:     refNames(dto.DamageRelations.NoDamageTo),
	}, nil
}

func (c *client) GetEvolutionChain(ctx context.Context, speciesID int) (*entities.EvolutionChain, error) {
	if speciesID <= 0 {
		return nil, apperr.InvalidArgument("species id is required")
	}

	var species speciesDTO
	url := fmt.Sprintf("%s/pokemon-species/%d", c.baseURL, speciesID)
	if err := c.getJSON(ctx, url, &species); err != nil {
		return nil, err
	}
	if species.EvolutionChain.URL == "" {
		return nil, apperr.NotFoundf("species %d has no evolution chain", speciesID)
	}

	var chain evolutionChainDTO
	if err := c.getJSON(ctx, species.EvolutionChain.URL, &chain); err != nil {
		return nil, err
	}

	return &entities.EvolutionChain{Root: chain.Chain.toLink()}, nil
}

// getJSON fetches a URL and decodes the body, deduplicating concurrent
// identical requests.
func (c *client) getJSON(ctx context.Context, url string, out any) error {
	body, err, _ := c.group.Do(url, func() (any, error) {
		return c.doGet(ctx, url)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return apperr.WrapWithCode(err, apperr.CodeUnavailable, "failed to decode catalog response")
	}
	return nil
}

func (c *client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to build catalog request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUnavailable, "catalog request failed").
			WithMeta("url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFoundf("catalog has no resource at %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Unavailablef("catalog returned status %d", resp.StatusCode).
			WithMeta("url", url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUnavailable, "failed to read catalog response")
	}
	return body, nil
}

func refNames(refs []namedRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

// idFromURL pulls the trailing numeric id out of a catalog resource URL.
func idFromURL(url string) int {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return id
}
