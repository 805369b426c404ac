package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmarchant/tudu"
	fiberadapter "github.com/rmarchant/tudu/adapters/fiber"
	"github.com/rmarchant/tudu/adapters/memory"
	mongoadapter "github.com/rmarchant/tudu/adapters/mongo"
	pgxadapter "github.com/rmarchant/tudu/adapters/pgx"
	"github.com/rmarchant/tudu/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer cleanup()

	t, err := tudu.New(tudu.Config{
		Secret:         cfg.Secret,
		Database:       db,
		PasswordHasher: pickHasher(cfg),
	})
	if err != nil {
		log.Fatalf("could not create tudu instance: %v", err)
	}

	app := fiber.New()
	app.Use(logger.New())

	if err := fiberadapter.New(app).RegisterRoutes(t); err != nil {
		log.Fatalf("could not register routes: %v", err)
	}

	log.Printf("listening on %s (store=%s)", cfg.Addr, cfg.Store)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("app.Listen: %v", err)
	}
}

func openStore(cfg *config.Config) (tudu.StorageAdapter, func(), error) {
	switch cfg.Store {
	case config.StoreMongo:
		return mongoadapter.Connect(cfg.MongoURI, cfg.MongoDB)

	case config.StorePostgres:
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		return pgxadapter.New(pool), pool.Close, nil

	case config.StoreMemory:
		return memory.New(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func pickHasher(cfg *config.Config) tudu.PasswordHandler {
	if cfg.Hasher == config.HasherArgon2 {
		return tudu.NewArgon2()
	}
	// tudu.New falls back to bcrypt when no hasher is provided
	return nil
}
