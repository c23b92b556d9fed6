package creatures

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/treacherygg/pokebot/internal/entities"
	apperr "github.com/treacherygg/pokebot/internal/errors"
	"github.com/treacherygg/pokebot/internal/tag"
)

// creatureData is the serialized form of a creature row in Redis
type creatureData struct {
	OwnerID    string    `json:"owner_id"`
	SpeciesID  int       `json:"species_id"`
	Name       string    `json:"name"`
	Level      int       `json:"level"`
	Tag        string    `json:"tag"`
	Experience int       `json:"experience"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// NewRedis creates a new Redis-backed creature repository
func NewRedis(client redis.UniversalClient, timeProvider TimeProvider) Repository {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &redisRepo{client: client, timeProvider: timeProvider}
}

// key generates the Redis key for a creature row
func (r *redisRepo) key(ownerID, t string) string {
	return fmt.Sprintf("creature:%s:%s", ownerID, tag.Normalize(t))
}

// ownerKey generates the Redis key for a trainer's tag index
func (r *redisRepo) ownerKey(ownerID string) string {
	return fmt.Sprintf("trainer:%s:creatures", ownerID)
}

// Create stores a newly caught creature
func (r *redisRepo) Create(ctx context.Context, creature *entities.Creature) error {
	if creature == nil {
		return apperr.InvalidArgument("creature cannot be nil")
	}
	if creature.OwnerID == "" {
		return apperr.InvalidArgument("creature owner ID is required")
	}
	if creature.Tag == "" {
		return apperr.InvalidArgument("creature tag is required")
	}

	key := r.key(creature.OwnerID, creature.Tag)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check creature existence: %w", err)
	}
	if exists > 0 {
		return apperr.Conflictf("creature with tag '%s' already exists", creature.Tag).
			WithMeta("owner_id", creature.OwnerID).
			WithMeta("tag", creature.Tag)
	}

	now := r.timeProvider.Now()
	jsonData, err := json.Marshal(r.toData(creature, now, now))
	if err != nil {
		return fmt.Errorf("failed to marshal creature: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, string(jsonData), 0)
	pipe.SAdd(ctx, r.ownerKey(creature.OwnerID), tag.Normalize(creature.Tag))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create creature: %w", err)
	}

	return nil
}

// GetByTag retrieves a creature by owner and tag
func (r *redisRepo) GetByTag(ctx context.Context, ownerID, t string) (*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if t == "" {
		return nil, apperr.InvalidArgument("tag is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(ownerID, t)).Result()
	if err == redis.Nil {
		return nil, apperr.NotFoundf("no creature with tag '%s'", tag.Normalize(t)).
			WithMeta("owner_id", ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creature: %w", err)
	}

	var data creatureData
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &data); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal creature: %w", unmarshalErr)
	}

	return r.fromData(&data), nil
}

// ListByOwner retrieves all of a trainer's creatures ordered by species id
func (r *redisRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	tags, err := r.client.SMembers(ctx, r.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list creature tags: %w", err)
	}

	result := make([]*entities.Creature, 0, len(tags))
	for _, t := range tags {
		creature, err := r.GetByTag(ctx, ownerID, t)
		if err != nil {
			// Skip rows that can't be loaded
			continue
		}
		result = append(result, creature)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SpeciesID != result[j].SpeciesID {
			return result[i].SpeciesID < result[j].SpeciesID
		}
		return result[i].Tag < result[j].Tag
	})

	return result, nil
}

// Update rewrites an existing creature row
func (r *redisRepo) Update(ctx context.Context, creature *entities.Creature) error {
	if creature == nil {
		return apperr.InvalidArgument("creature cannot be nil")
	}

	key := r.key(creature.OwnerID, creature.Tag)
	existingData, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return apperr.NotFoundf("no creature with tag '%s'", tag.Normalize(creature.Tag)).
			WithMeta("owner_id", creature.OwnerID)
	}
	if err != nil {
		return fmt.Errorf("failed to get existing creature: %w", err)
	}

	var existing creatureData
	if unmarshalErr := json.Unmarshal([]byte(existingData), &existing); unmarshalErr != nil {
		return fmt.Errorf("failed to unmarshal existing creature: %w", unmarshalErr)
	}

	jsonData, err := json.Marshal(r.toData(creature, existing.CreatedAt, r.timeProvider.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal creature: %w", err)
	}

	if err := r.client.Set(ctx, key, string(jsonData), 0).Err(); err != nil {
		return fmt.Errorf("failed to update creature: %w", err)
	}

	return nil
}

// Delete removes a creature row
func (r *redisRepo) Delete(ctx context.Context, ownerID, t string) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}
	if t == "" {
		return apperr.InvalidArgument("tag is required")
	}

	// Verify the row exists so a missing tag surfaces as not found
	if _, err := r.GetByTag(ctx, ownerID, t); err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(ownerID, t))
	pipe.SRem(ctx, r.ownerKey(ownerID), tag.Normalize(t))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete creature: %w", err)
	}

	return nil
}

// SwapOwners exchanges ownership of two rows as one atomic unit
func (r *redisRepo) SwapOwners(ctx context.Context, first, second Ref) error {
	if first.OwnerID == second.OwnerID {
		return apperr.InvalidArgument("cannot swap a creature with its own owner")
	}

	a, err := r.GetByTag(ctx, first.OwnerID, first.Tag)
	if err != nil {
		return err
	}
	b, err := r.GetByTag(ctx, second.OwnerID, second.Tag)
	if err != nil {
		return err
	}

	// A swapped row keeps its tag; reject if the receiving trainer
	// already holds that tag (outside of the swap itself).
	if tag.Normalize(first.Tag) != tag.Normalize(second.Tag) {
		for _, check := range []Ref{
			{OwnerID: second.OwnerID, Tag: first.Tag},
			{OwnerID: first.OwnerID, Tag: second.Tag},
		} {
			exists, existsErr := r.client.Exists(ctx, r.key(check.OwnerID, check.Tag)).Result()
			if existsErr != nil {
				return fmt.Errorf("failed to check tag collision: %w", existsErr)
			}
			if exists > 0 {
				return apperr.Conflictf("tag '%s' is already taken by the receiving trainer", tag.Normalize(check.Tag))
			}
		}
	}

	now := r.timeProvider.Now()
	a.OwnerID, b.OwnerID = second.OwnerID, first.OwnerID

	aData, err := json.Marshal(r.toData(a, now, now))
	if err != nil {
		return fmt.Errorf("failed to marshal creature: %w", err)
	}
	bData, err := json.Marshal(r.toData(b, now, now))
	if err != nil {
		return fmt.Errorf("failed to marshal creature: %w", err)
	}

	// Both rewrites ride one MULTI/EXEC so a half-applied trade can
	// never be observed.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(a.OwnerID, a.Tag), string(aData), 0)
	pipe.Set(ctx, r.key(b.OwnerID, b.Tag), string(bData), 0)
	if tag.Normalize(first.Tag) != tag.Normalize(second.Tag) {
		// With equal tags the old keys are the ones just rewritten.
		pipe.Del(ctx, r.key(first.OwnerID, first.Tag))
		pipe.Del(ctx, r.key(second.OwnerID, second.Tag))
	}
	pipe.SRem(ctx, r.ownerKey(first.OwnerID), tag.Normalize(first.Tag))
	pipe.SRem(ctx, r.ownerKey(second.OwnerID), tag.Normalize(second.Tag))
	pipe.SAdd(ctx, r.ownerKey(first.OwnerID), tag.Normalize(second.Tag))
	pipe.SAdd(ctx, r.ownerKey(second.OwnerID), tag.Normalize(first.Tag))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to swap creature owners: %w", err)
	}

	return nil
}

func (r *redisRepo) toData(creature *entities.Creature, createdAt, updatedAt time.Time) *creatureData {
	return &creatureData{
		OwnerID:    creature.OwnerID,
		SpeciesID:  creature.SpeciesID,
		Name:       creature.Name,
		Level:      creature.Level,
		Tag:        tag.Normalize(creature.Tag),
		Experience: creature.Experience,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

func (r *redisRepo) fromData(data *creatureData) *entities.Creature {
	return &entities.Creature{
		OwnerID:    data.OwnerID,
		SpeciesID:  data.SpeciesID,
		Name:       data.Name,
		Level:      data.Level,
		Tag:        data.Tag,
		Experience: data.Experience,
	}
}
