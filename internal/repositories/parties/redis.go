package parties

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
)

// partyData is the serialized form of a party in Redis
type partyData struct {
	Slots [entities.PartySize]string `json:"slots"`
}

type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a new Redis-backed party repository
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &redisRepo{client: client}
}

func (r *redisRepo) key(ownerID string) string {
	return fmt.Sprintf("party:%s", ownerID)
}

// Get retrieves a trainer's party
func (r *redisRepo) Get(ctx context.Context, ownerID string) (*entities.Party, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(ownerID)).Result()
	if err == redis.Nil {
		return entities.NewParty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	var data partyData
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &data); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal party: %w", unmarshalErr)
	}

	party := entities.Party(data.Slots)
	return &party, nil
}

// Set overwrites a trainer's party
func (r *redisRepo) Set(ctx context.Context, ownerID string, party *entities.Party) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}
	if party == nil {
		return apperr.InvalidArgument("party cannot be nil")
	}

	jsonData, err := json.Marshal(partyData{Slots: *party})
	if err != nil {
		return fmt.Errorf("failed to marshal party: %w", err)
	}

	if err := r.client.Set(ctx, r.key(ownerID), string(jsonData), 0).Err(); err != nil {
		return fmt.Errorf("failed to set party: %w", err)
	}

	return nil
}
