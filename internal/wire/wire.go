// Package wire builds the galaxy services shared by the HTTP server and galaxyctl.
package wire

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/link"
	"galaxy-server/internal/sector"
	"galaxy-server/internal/shared/cache"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/redis"
	"galaxy-server/internal/system"
)

type App struct {
	Config  *config.Config
	DB      *database.DB
	Redis   *redis.Client
	Cache   cache.Cache
	Galaxy  *galaxy.Service
	Sectors *sector.Service
	Systems *system.Service
}

// Open connects to the configured stores and builds every service. The
// schema is migrated only when migrate is set.
func Open(cfg *config.Config, migrate bool) (*App, error) {
	logger := slog.With("component", "wire", "operation", "open")

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrate {
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	redisClient, err := redis.Open(cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
		redisClient = nil
	}

	app := Build(cfg, db, cache.New(cfg.Cache, redisClient), nil)
	app.Redis = redisClient
	return app, nil
}

// Build wires services over an open database. A nil rng seeds from the runtime.
func Build(cfg *config.Config, db *database.DB, c cache.Cache, rng *rand.Rand) *App {
	logger := slog.Default()

	objects := galaxyobject.NewRepository(db, logger)
	links := link.NewRepository(db, logger)

	namerRng, linkRng := splitRand(rng)

	namer := system.NewNamer(cfg.Generation.StarNames, namerRng)
	systems := system.NewService(system.NewRepository(db, logger), objects, namer, logger)

	sectors := sector.NewService(
		db,
		sector.NewRepository(db, logger),
		objects,
		links,
		systems,
		link.NewGenerator(linkRng),
		cfg.Generation,
		logger,
	)

	galaxies := galaxy.NewService(galaxy.NewRepository(db, logger), sectors, c, logger)

	return &App{
		Config:  cfg,
		DB:      db,
		Cache:   c,
		Galaxy:  galaxies,
		Sectors: sectors,
		Systems: systems,
	}
}

// splitRand derives a second source from rng so the namer and the link
// generator never share one. Both stay nil when rng is nil.
func splitRand(rng *rand.Rand) (*rand.Rand, *rand.Rand) {
	if rng == nil {
		return nil, nil
	}
	return rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())), rng
}

func (a *App) Close() error {
	var firstErr error
	if err := a.Cache.Close(); err != nil {
		firstErr = err
	}
	if err := a.Redis.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
