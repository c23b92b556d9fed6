package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/treacherygg/pokebot/internal/clients/pokeapi"
	"github.com/treacherygg/pokebot/internal/config"
	"github.com/treacherygg/pokebot/internal/handlers/discord"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/guilds"
	"github.com/treacherygg/pokebot/internal/repositories/parties"
	"github.com/treacherygg/pokebot/internal/services"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found")
	} else {
		logger.Info().Msg("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	// Create the PokeAPI catalog client
	catalog, err := pokeapi.New(&pokeapi.Config{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL:      cfg.PokeAPI.BaseURL,
		SpeciesCount: cfg.PokeAPI.SpeciesCount,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create PokeAPI client")
	}

	// Create service provider config
	providerConfig := &services.ProviderConfig{
		Catalog: catalog,
		Logger:  &logger,
	}

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	// Try to connect to Redis if URL is provided
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		logger.Info().Str("url", redisURL).Msg("Connecting to Redis")

		opts, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			logger.Warn().Err(parseErr).Msg("Failed to parse Redis URL, falling back to in-memory repositories")
		} else {
			redisClient = redis.NewClient(opts)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

			if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
				cancel()
				logger.Warn().Err(pingErr).Msg("Failed to connect to Redis, falling back to in-memory repositories")
				redisClient = nil
			} else {
				defer cancel()
				logger.Info().Msg("Successfully connected to Redis")

				providerConfig.CreatureRepository = creatures.NewRedis(redisClient, nil)
				providerConfig.PartyRepository = parties.NewRedis(redisClient)
				providerConfig.GuildRepository = guilds.NewRedis(redisClient)

				logger.Info().Msg("Using Redis for persistence")
			}
		}
	} else {
		logger.Info().Msg("No REDIS_URL found, using in-memory repositories")
	}

	// Create service provider
	serviceProvider := services.NewProvider(providerConfig)

	// Create Discord handler
	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
		CommandPrefix:   cfg.Discord.CommandPrefix,
		OwnerID:         cfg.Discord.OwnerID,
		Logger:          &logger,
	})

	// Register message handler
	dg.AddHandler(handler.HandleMessageCreate)

	// Open connection to Discord
	if err := dg.Open(); err != nil {
		logger.Error().Err(err).Msg("Failed to open Discord connection")
		return
	}
	defer func() {
		if clientErr := dg.Close(); clientErr != nil {
			logger.Error().Err(clientErr).Msg("Failed to close Discord connection")
		}
	}()

	logger.Info().Str("prefix", cfg.Discord.CommandPrefix).Msg("Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info().Msg("Shutting down...")

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis connection")
		}
	}
}
