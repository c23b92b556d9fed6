package guilds

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedis(s.mockClient)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	settings := &Settings{
		SpawnChannelID:  "channel-1",
		SpawnRate:       0.25,
		CooldownMinutes: 5,
	}
	jsonData, err := json.Marshal(settings)
	s.Require().NoError(err)

	// Happy path
	s.mock.ExpectGet("guild:guild-1:spawn").SetVal(string(jsonData))

	got, err := s.repo.Get(ctx, "guild-1")
	s.NoError(err)
	s.Equal(settings, got)

	// Unconfigured guild gets defaults
	s.mock.ExpectGet("guild:guild-2:spawn").RedisNil()

	got, err = s.repo.Get(ctx, "guild-2")
	s.NoError(err)
	s.Equal("", got.SpawnChannelID)
	s.Equal(0.0, got.SpawnRate)
	s.Equal(float64(DefaultCooldownMinutes), got.CooldownMinutes)

	// Dependency error
	s.mock.ExpectGet("guild:guild-1:spawn").SetErr(errors.New("redis error"))

	_, err = s.repo.Get(ctx, "guild-1")
	s.Error(err)

	// Input validation
	_, err = s.repo.Get(ctx, "")
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestSet() {
	ctx := context.Background()
	settings := &Settings{
		SpawnChannelID:  "channel-1",
		SpawnRate:       0.25,
		CooldownMinutes: 5,
	}
	jsonData, err := json.Marshal(settings)
	s.Require().NoError(err)

	// Happy path
	s.mock.ExpectSet("guild:guild-1:spawn", string(jsonData), 0).SetVal("OK")

	err = s.repo.Set(ctx, "guild-1", settings)
	s.NoError(err)

	// Dependency error
	s.mock.ExpectSet("guild:guild-1:spawn", string(jsonData), 0).SetErr(errors.New("redis error"))

	err = s.repo.Set(ctx, "guild-1", settings)
	s.Error(err)

	// Input validation
	s.Error(s.repo.Set(ctx, "", settings))
	s.Error(s.repo.Set(ctx, "guild-1", nil))
}
