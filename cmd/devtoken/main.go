// Command devtoken mints an access token for local development, signed with
// the configured JWT_SECRET the same way the auth service signs them.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crafthub/internal/config"
	"crafthub/internal/middleware"
)

func main() {
	userID := flag.Uint("user", 0, "user ID to put in the subject claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == 0 {
		fmt.Fprintln(os.Stderr, "usage: devtoken -user <id> [-ttl 24h]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal(err)
	}
	if cfg.IsProduction() {
		fatal(fmt.Errorf("refusing to mint tokens in %q", cfg.Env))
	}

	token, jti, err := middleware.IssueToken(cfg.JWTSecret, *userID, *ttl)
	if err != nil {
		fatal(err)
	}
	middleware.Logger.Info("token issued", slog.Uint64("user_id", uint64(*userID)), slog.String("jti", jti))
	fmt.Println(token)
}

func fatal(err error) {
	middleware.Logger.Error("devtoken failed", slog.String("error", err.Error()))
	os.Exit(1)
}
