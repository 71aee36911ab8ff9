package seed

import (
	"context"
	"fmt"
	"log/slog"

	"crafthub/internal/middleware"
	"crafthub/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers     int
	PostsPerUser int
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// RandSeed makes runs reproducible; zero is random.
	RandSeed    int64
	ShouldClean bool
	SkipBcrypt  bool
	// DryRun builds everything without touching the database.
	DryRun bool
}

// Summary counts what a run created.
type Summary struct {
	Categories int
	Users      int
	Posts      int
	Follows    int
	Likes      int
	Comments   int
	Shares     int
}

func (o Options) withDefaults() Options {
	if o.NumUsers <= 0 {
		o.NumUsers = 20
	}
	if o.PostsPerUser <= 0 {
		o.PostsPerUser = 3
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	return o
}

// Seed fills db with a connected community of crafters.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	log := middleware.Logger.With(slog.Bool("dry_run", opts.DryRun))

	if opts.ShouldClean && !opts.DryRun {
		log.InfoContext(ctx, "clearing existing data")
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	sum := &Summary{}

	categories, err := f.EnsureCategories(ctx)
	if err != nil {
		return nil, err
	}
	sum.Categories = len(categories)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.InfoContext(ctx, "users created", slog.Int("count", sum.Users))

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			var category *models.CraftCategory
			if len(categories) > 0 && f.faker.Number(1, 5) > 1 {
				category = &categories[f.faker.Number(0, len(categories)-1)]
			}
			p, err := f.CreatePost(ctx, u, category)
			if err != nil {
				return nil, fmt.Errorf("create post for %s: %w", u.Username, err)
			}
			posts = append(posts, p)
		}
	}
	sum.Posts = len(posts)
	log.InfoContext(ctx, "posts created", slog.Int("count", sum.Posts))

	// Everyone follows a handful of others; duplicate picks are ignored.
	for _, u := range users {
		for i := 0; i < min(5, len(users)-1); i++ {
			other := users[f.faker.Number(0, len(users)-1)]
			if other.ID == u.ID {
				continue
			}
			if err := f.CreateFollow(ctx, u, other); err != nil {
				return nil, fmt.Errorf("create follow: %w", err)
			}
		}
	}

	for _, p := range posts {
		for _, u := range users {
			if u.ID == p.UserID {
				continue
			}
			switch roll := f.faker.Number(1, 100); {
			case roll <= 30:
				if err := f.CreateLike(ctx, u, p); err != nil {
					return nil, fmt.Errorf("create like: %w", err)
				}
				if roll <= 5 {
					if err := f.CreateShare(ctx, u, p); err != nil {
						return nil, fmt.Errorf("create share: %w", err)
					}
				}
			case roll <= 40:
				if _, err := f.CreateComment(ctx, u, p); err != nil {
					return nil, fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
		}
	}

	if !opts.DryRun {
		if err := countEdges(ctx, db, sum); err != nil {
			return nil, err
		}
	}
	log.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("follows", sum.Follows),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
		slog.Int("shares", sum.Shares),
	)
	return sum, nil
}

// countEdges reads back the insert-or-ignore tables, since skipped
// duplicates are not reported as errors.
func countEdges(ctx context.Context, db *gorm.DB, sum *Summary) error {
	for _, c := range []struct {
		model any
		dst   *int
	}{
		{&models.Follow{}, &sum.Follows},
		{&models.Like{}, &sum.Likes},
		{&models.Share{}, &sum.Shares},
	} {
		var n int64
		if err := db.WithContext(ctx).Model(c.model).Count(&n).Error; err != nil {
			return err
		}
		*c.dst = int(n)
	}
	return nil
}

// clearData deletes children before parents. Categories are kept.
func clearData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Like{}, &models.Share{}, &models.Comment{}, &models.PostImage{},
			&models.Post{}, &models.Follow{}, &models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
