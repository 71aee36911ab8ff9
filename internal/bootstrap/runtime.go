// Package bootstrap wires the storage dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"crafthub/internal/cache"
	"crafthub/internal/config"
	"crafthub/internal/database"
	"crafthub/internal/middleware"
	"crafthub/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCategories inserts any missing default craft categories.
	SeedCategories bool
}

// InitRuntime connects to the database (applying the schema) and Redis.
// Redis is optional; the returned client is nil when it is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if opts.SeedCategories {
		categories, err := seed.EnsureCategories(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		middleware.Logger.InfoContext(ctx, "craft categories ensured", slog.Int("count", len(categories)))
	}

	return db, rdb, nil
}

// Close releases what InitRuntime opened.
func Close(db *gorm.DB, rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
