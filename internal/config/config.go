package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Redis   RedisConfig
	PokeAPI PokeAPIConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token         string
	AppID         string
	GuildID       string // Optional: for guild-specific commands
	OwnerID       string // Optional: unlocks owner-only commands
	CommandPrefix string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PokeAPIConfig holds catalog API configuration
type PokeAPIConfig struct {
	BaseURL      string
	SpeciesCount int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:         os.Getenv("DISCORD_TOKEN"),
			AppID:         os.Getenv("DISCORD_APP_ID"),
			GuildID:       os.Getenv("DISCORD_GUILD_ID"),
			OwnerID:       os.Getenv("DISCORD_OWNER_ID"),
			CommandPrefix: getEnvOrDefault("COMMAND_PREFIX", "$"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		PokeAPI: PokeAPIConfig{
			BaseURL:      getEnvOrDefault("POKEAPI_BASE_URL", "https://pokeapi.co/api/v2"),
			SpeciesCount: getEnvAsIntOrDefault("POKEAPI_SPECIES_COUNT", 0),
		},
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
