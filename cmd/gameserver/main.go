// Package main provides the game server binary: the JSON battle API over
// PostgreSQL-backed sessions.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/fennwald/emberquest/internal/api"
	"github.com/fennwald/emberquest/internal/config"
	"github.com/fennwald/emberquest/internal/game/battle"
	"github.com/fennwald/emberquest/internal/game/combat"
	"github.com/fennwald/emberquest/internal/game/dice"
	"github.com/fennwald/emberquest/internal/game/encounter"
	"github.com/fennwald/emberquest/internal/game/item"
	"github.com/fennwald/emberquest/internal/observability"
	"github.com/fennwald/emberquest/internal/server"
	"github.com/fennwald/emberquest/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Game.LogDiceRolls {
		src = dice.NewLoggedSource(src, logger)
	}

	// Load content
	contentStart := time.Now()
	monsters, err := encounter.LoadMonsters(cfg.Game.MonstersDir, logger)
	if err != nil {
		logger.Fatal("loading monsters", zap.Error(err))
	}
	spawns, err := encounter.LoadSpawns(cfg.Game.SpawnsDir)
	if err != nil {
		logger.Fatal("loading spawns", zap.Error(err))
	}
	table := encounter.NewTable(spawns)
	table.Validate(monsters, logger)

	items, err := item.LoadItems(cfg.Game.ItemsDir)
	if err != nil {
		logger.Fatal("loading items", zap.Error(err))
	}
	registry, err := item.NewRegistry(items)
	if err != nil {
		logger.Fatal("building item registry", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("monsters", len(monsters)),
		zap.Int("spawn_entries", len(spawns)),
		zap.Int("locations", table.Locations()),
		zap.Int("items", registry.Len()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect storage
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	characters := postgres.NewCharacterRepository(pool.DB())
	battles := postgres.NewBattleRepository(pool.DB())
	history := postgres.NewHistoryRepository(pool.DB())

	// Wire the battle loop
	profiles := battle.NewProfileManager(characters, registry)
	finisher := battle.NewRewardFinisher(characters, history, src, logger)
	service := battle.NewService(
		battles,
		profiles,
		encounter.NewSelector(table, monsters, src),
		combat.NewResolver(src),
		finisher,
		src,
		logger,
	)

	handler := api.NewHandler(service, characters, profiles, pool, cfg.Game.DefaultLocation, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("http", server.NewHTTPService(cfg.HTTP, handler.Router(), logger))
	healthQuit := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-healthQuit:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(healthQuit)
			pool.Close()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
