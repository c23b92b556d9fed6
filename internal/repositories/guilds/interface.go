package guilds

//go:generate mockgen -destination=mock/mock_repository.go -package=mockguilds -source=interface.go

import "context"

// DefaultCooldownMinutes is the spawn cooldown applied when a guild has
// never been configured.
const DefaultCooldownMinutes = 15

// Settings holds per-guild spawn configuration. A zero SpawnRate
// disables random spawns entirely.
type Settings struct {
	SpawnChannelID  string  `json:"spawn_channel_id"`
	SpawnRate       float64 `json:"spawn_rate"`
	CooldownMinutes float64 `json:"cooldown_minutes"`
}

// DefaultSettings returns the settings for an unconfigured guild
func DefaultSettings() *Settings {
	return &Settings{
		CooldownMinutes: DefaultCooldownMinutes,
	}
}

// Repository defines the storage interface for guild spawn settings
type Repository interface {
	// Get retrieves a guild's settings; an unconfigured guild gets
	// the defaults
	Get(ctx context.Context, guildID string) (*Settings, error)

	// Set overwrites a guild's settings
	Set(ctx context.Context, guildID string, settings *Settings) error
}
