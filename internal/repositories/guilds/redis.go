package guilds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperr "github.com/treacherygg/pokebot/internal/errors"
)

type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a new Redis-backed guild settings repository
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &redisRepo{client: client}
}

func (r *redisRepo) key(guildID string) string {
	return fmt.Sprintf("guild:%s:spawn", guildID)
}

// Get retrieves a guild's settings
func (r *redisRepo) Get(ctx context.Context, guildID string) (*Settings, error) {
	if guildID == "" {
		return nil, apperr.InvalidArgument("guild ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(guildID)).Result()
	if err == redis.Nil {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	var settings Settings
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal guild settings: %w", unmarshalErr)
	}

	return &settings, nil
}

// Set overwrites a guild's settings
func (r *redisRepo) Set(ctx context.Context, guildID string, settings *Settings) error {
	if guildID == "" {
		return apperr.InvalidArgument("guild ID is required")
	}
	if settings == nil {
		return apperr.InvalidArgument("settings cannot be nil")
	}

	jsonData, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal guild settings: %w", err)
	}

	if err := r.client.Set(ctx, r.key(guildID), string(jsonData), 0).Err(); err != nil {
		return fmt.Errorf("failed to set guild settings: %w", err)
	}

	return nil
}
