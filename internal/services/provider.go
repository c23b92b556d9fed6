package services

import (
	"github.com/rs/zerolog"

	"github.com/treacherygg/pokebot/internal/clients/pokeapi"
	"github.com/treacherygg/pokebot/internal/repositories/creatures"
	"github.com/treacherygg/pokebot/internal/repositories/guilds"
	"github.com/treacherygg/pokebot/internal/repositories/parties"
	battleService "github.com/treacherygg/pokebot/internal/services/battle"
	collectionService "github.com/treacherygg/pokebot/internal/services/collection"
	progressionService "github.com/treacherygg/pokebot/internal/services/progression"
	spawnService "github.com/treacherygg/pokebot/internal/services/spawn"
	tradeService "github.com/treacherygg/pokebot/internal/services/trade"
)

// Provider holds all service instances
type Provider struct {
	CollectionService  collectionService.Service
	ProgressionService progressionService.Service
	TradeService       tradeService.Service
	BattleService      battleService.Service
	SpawnService       spawnService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Catalog            pokeapi.Client
	CreatureRepository creatures.Repository
	PartyRepository    parties.Repository
	GuildRepository    guilds.Repository
	Logger             *zerolog.Logger
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	creatureRepo := cfg.CreatureRepository
	if creatureRepo == nil {
		creatureRepo = creatures.NewInMemoryRepository()
	}

	partyRepo := cfg.PartyRepository
	if partyRepo == nil {
		partyRepo = parties.NewInMemoryRepository()
	}

	guildRepo := cfg.GuildRepository
	if guildRepo == nil {
		guildRepo = guilds.NewInMemoryRepository()
	}

	collection := collectionService.NewService(&collectionService.ServiceConfig{
		CreatureRepo: creatureRepo,
		PartyRepo:    partyRepo,
	})

	progression := progressionService.NewService(&progressionService.ServiceConfig{
		CreatureRepo: creatureRepo,
		PartyRepo:    partyRepo,
		Catalog:      cfg.Catalog,
		Logger:       cfg.Logger,
	})

	trade := tradeService.NewService(&tradeService.ServiceConfig{
		CreatureRepo: creatureRepo,
		Logger:       cfg.Logger,
	})

	battle := battleService.NewService(&battleService.ServiceConfig{
		CreatureRepo: creatureRepo,
		PartyRepo:    partyRepo,
		Catalog:      cfg.Catalog,
		Logger:       cfg.Logger,
	})

	spawn := spawnService.NewService(&spawnService.ServiceConfig{
		GuildRepo:    guildRepo,
		CreatureRepo: creatureRepo,
		Catalog:      cfg.Catalog,
		Logger:       cfg.Logger,
	})

	return &Provider{
		CollectionService:  collection,
		ProgressionService: progression,
		TradeService:       trade,
		BattleService:      battle,
		SpawnService:       spawn,
	}
}
