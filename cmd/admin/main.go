// Command admin provides operator utilities for crafthub.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"crafthub/internal/bootstrap"
	"crafthub/internal/config"
	"crafthub/internal/middleware"
	"crafthub/internal/notifications"
	"crafthub/internal/repository"
	"crafthub/internal/service"

	"gorm.io/gorm"
)

const usageText = `Usage:
  admin verify-user [-off] <username>        grant or revoke the verified-crafter badge
  admin feature-post [-off] <post_id>        mark or unmark a post as featured
  admin create-category <name> [description] add a craft category
  admin delete-category <category_id>        remove a craft category
  admin watch-events                         print realtime events until interrupted`

var errUsage = errors.New(usageText)

type admin struct {
	users    *service.UserService
	posts    *service.PostService
	queries  *service.QueryService
	notifier *notifications.Notifier
	out      io.Writer
}

func newAdmin(db *gorm.DB, notifier *notifications.Notifier, out io.Writer) *admin {
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	return &admin{
		users:    service.NewUserService(repository.NewUserRepository(db)),
		posts:    service.NewPostService(postRepo, categoryRepo),
		queries:  service.NewQueryService(postRepo, categoryRepo),
		notifier: notifier,
		out:      out,
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		fatal(err)
	}
	defer bootstrap.Close(db, rdb)

	if err := newAdmin(db, notifications.NewNotifier(rdb), os.Stdout).run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usageText)
			os.Exit(2)
		}
		fatal(err)
	}
}

func fatal(err error) {
	middleware.Logger.Error("admin command failed", slog.String("error", err.Error()))
	os.Exit(1)
}

func (a *admin) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	off := fs.Bool("off", false, "revoke instead of grant")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	rest := fs.Args()

	switch args[0] {
	case "verify-user":
		if len(rest) != 1 {
			return errUsage
		}
		user, err := a.users.SetVerified(ctx, rest[0], !*off)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (ID: %d) verified=%t\n", user.Username, user.ID, user.IsVerifiedCrafter)

	case "feature-post":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.posts.SetFeatured(ctx, id, !*off); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "post %d featured=%t\n", id, !*off)

	case "create-category":
		if len(rest) < 1 || len(rest) > 2 {
			return errUsage
		}
		description := ""
		if len(rest) == 2 {
			description = rest[1]
		}
		category, err := a.queries.CreateCategory(ctx, rest[0], description)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created category %q (ID: %d)\n", category.Name, category.ID)

	case "delete-category":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.queries.DeleteCategory(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted category %d\n", id)

	case "watch-events":
		return a.watchEvents(ctx)

	default:
		return errUsage
	}
	return nil
}

func (a *admin) watchEvents(ctx context.Context) error {
	if !a.notifier.Enabled() {
		return errors.New("watch-events needs REDIS_URL")
	}
	err := a.notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		target := "broadcast"
		if id, ok := notifications.UserFromChannel(channel); ok {
			target = "user " + strconv.FormatUint(uint64(id), 10)
		}
		fmt.Fprintf(a.out, "[%s] %s\n", target, payload)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func parseID(args []string) (uint, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return uint(id), nil
}
