package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/guildwar/internal/config"
	"github.com/udisondev/guildwar/internal/db"
	"github.com/udisondev/guildwar/internal/guild"
)

const ConfigPath = "config/guildserver.yaml"

// How often due outpost production ticks are looked for.
const sweepCheckInterval = time.Minute

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("GUILDWAR_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("guildwar server starting", "log_level", cfg.LogLevel)

	// Connect to database
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	// Run migrations
	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	repo := db.NewGuildRepository(database.Pool())
	registry := guild.NewRegistry(repo, guild.NopBuilder{}, guild.DefaultPerkTable(), guildConfig(cfg))
	if err := registry.Load(ctx); err != nil {
		return fmt.Errorf("loading guild registry: %w", err)
	}

	sweeper := guild.NewSweeper(registry, sweepCheckInterval, cfg.UpkeepInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting guild sweeper",
			"check_interval", sweepCheckInterval,
			"upkeep_interval", cfg.UpkeepInterval)
		if err := sweeper.Run(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("guild sweeper: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// guildConfig maps the YAML server config onto the domain economy tuning.
func guildConfig(cfg config.Server) guild.Config {
	return guild.Config{
		UpkeepXPPerChunk: cfg.UpkeepXPPerChunk,
		Siphon: guild.OutpostSettings{
			CreationCostXP: cfg.Siphon.CreationCostXP,
			ProductionXP:   cfg.Siphon.ProductionXP,
			Interval:       cfg.Siphon.Interval,
		},
		Barracks: guild.OutpostSettings{
			CreationCostXP: cfg.Barracks.CreationCostXP,
			ProductionXP:   cfg.Barracks.ProductionXP,
			Interval:       cfg.Barracks.Interval,
		},
		Silo: guild.SiloSettings{
			CreationCostXP: cfg.Silo.CreationCostXP,
			Interval:       cfg.Silo.Interval,
			ChancePercent:  cfg.Silo.ChancePercent,
			Resources:      siloResources(cfg.Silo),
		},
	}
}

func siloResources(cfg config.SiloConfig) []guild.ResourceRange {
	ranges := cfg.ResourceRanges()
	result := make([]guild.ResourceRange, 0, len(ranges))
	for _, r := range ranges {
		result = append(result, guild.ResourceRange{Kind: r.Kind, Min: r.Min, Max: r.Max})
	}
	return result
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
