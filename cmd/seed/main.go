// Command seed fills the database with demo crafters, posts and
// interactions.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"crafthub/internal/cache"
	"crafthub/internal/config"
	"crafthub/internal/database"
	"crafthub/internal/middleware"
	"crafthub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "number of users to create")
	postsPerUser := flag.Int("posts-per-user", 4, "posts to create for each user")
	maxDays := flag.Int("max-days", 90, "spread post timestamps over this many days")
	randSeed := flag.Int64("rand-seed", 0, "seed for reproducible data (0 is random)")
	shouldClean := flag.Bool("clean", true, "delete existing users and posts first")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "store the demo password unhashed")
	dryRun := flag.Bool("dry-run", false, "build the data without writing it")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal(err)
	}
	if cfg.IsProduction() {
		fatal(errRefuseProduction)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fatal(err)
	}

	sum, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:     *numUsers,
		PostsPerUser: *postsPerUser,
		MaxDays:      *maxDays,
		RandSeed:     *randSeed,
		ShouldClean:  *shouldClean,
		SkipBcrypt:   *skipBcrypt,
		DryRun:       *dryRun,
	})
	if err != nil {
		fatal(err)
	}

	// Cached profiles and posts no longer match the tables.
	cache.InitRedis(cfg.RedisURL)
	if rdb := cache.GetClient(); rdb != nil && !*dryRun {
		if err := rdb.FlushDB(context.Background()).Err(); err != nil {
			middleware.Logger.Warn("failed to flush cache", slog.String("error", err.Error()))
		}
		_ = rdb.Close()
	}

	middleware.Logger.Info("database seeded",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.String("password", seed.DemoPassword),
	)
}

var errRefuseProduction = errors.New("refusing to seed a production database")

func fatal(err error) {
	middleware.Logger.Error("seed failed", slog.String("error", err.Error()))
	os.Exit(1)
}
