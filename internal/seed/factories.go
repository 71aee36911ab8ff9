// Package seed creates demo and test data. Intended for development and
// tests only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crafthub/internal/middleware"
	"crafthub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the credential every seeded account is created with.
const DemoPassword = "password123"

// Factory builds domain entities and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter for DryRun
	nextID uint
	// hashed once; bcrypt is slow on purpose
	passwordHash string
}

// NewFactory creates a Factory. A zero opts.RandSeed picks a random seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(opts.RandSeed),
		nextID: 1000,
	}
}

func (f *Factory) pick(list []string) string {
	return list[f.faker.Number(0, len(list)-1)]
}

func (f *Factory) password() (string, error) {
	if f.opts.SkipBcrypt {
		return DemoPassword, nil
	}
	if f.passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash demo password: %w", err)
		}
		f.passwordHash = string(hash)
	}
	return f.passwordHash, nil
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

func (f *Factory) persist(ctx context.Context, kind string, v any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		middleware.Logger.DebugContext(ctx, "dry-run create", slog.String("kind", kind), slog.Uint64("id", uint64(*id)))
		return nil
	}
	return f.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

// BuildUser returns an unsaved crafter profile.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.faker.Number(10, 9999)))
	specialty := DefaultCategories[f.faker.Number(0, len(DefaultCategories)-1)].Name

	hash, err := f.password()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:            username,
		Email:               username + "@example.com",
		Password:            hash,
		FirstName:           first,
		LastName:            last,
		Avatar:              fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Bio:                 fmt.Sprintf("%s enthusiast from %s. %s", specialty, f.faker.City(), f.faker.Sentence(8)),
		CraftSpecialization: specialty,
		Location:            f.faker.City(),
		IsVerifiedCrafter:   f.faker.Number(1, 10) == 1,
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.persist(ctx, "user", user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author in category (may be nil) with
// up to four images.
func (f *Factory) BuildPost(author *models.User, category *models.CraftCategory, overrides ...func(*models.Post)) *models.Post {
	words := vocab["Woodworking"]
	if category != nil {
		if v, ok := vocab[category.Name]; ok {
			words = v
		}
	}
	item := f.pick(words.items)
	at := f.createdAt()

	post := &models.Post{
		UserID:         author.ID,
		Title:          fmt.Sprintf("%s %s", f.pick(titlePrefixes), item),
		Content:        fmt.Sprintf("Made a %s. %s", item, f.faker.Paragraph(1, 3, 10, " ")),
		MaterialsUsed:  strings.Join([]string{f.pick(words.materials), f.pick(words.materials)}, ", "),
		TimeToComplete: f.pick(words.durations),
		IsForSale:      f.faker.Bool(),
		IsFeatured:     f.faker.Number(1, 8) == 1,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if category != nil {
		id := category.ID
		post.CraftCategoryID = &id
	}
	if post.IsForSale {
		post.PriceRange = f.pick(priceRanges)
	}
	for i := 0; i < f.faker.Number(0, 4); i++ {
		post.Images = append(post.Images, models.PostImage{
			ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
			AltText:   fmt.Sprintf("%s, view %d", item, i+1),
			Order:     i,
			CreatedAt: at,
		})
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post together with its images.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, category *models.CraftCategory, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, category, overrides...)
	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		return post, nil
	}
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		for i := range post.Images {
			post.Images[i].PostID = post.ID
		}
		if len(post.Images) == 0 {
			return nil
		}
		return tx.Create(&post.Images).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:    user.ID,
		PostID:    post.ID,
		Content:   f.faker.Sentence(f.faker.Number(3, 14)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 72)) * time.Hour),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.persist(ctx, "comment", comment, &comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

// insertOnce inserts row unless the unique pair already exists.
func (f *Factory) insertOnce(ctx context.Context, row any) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (f *Factory) CreateLike(ctx context.Context, user *models.User, post *models.Post) error {
	return f.insertOnce(ctx, &models.Like{UserID: user.ID, PostID: post.ID})
}

func (f *Factory) CreateShare(ctx context.Context, user *models.User, post *models.Post) error {
	return f.insertOnce(ctx, &models.Share{UserID: user.ID, PostID: post.ID})
}

// CreateFollow adds follower -> following. Self edges are skipped.
func (f *Factory) CreateFollow(ctx context.Context, follower, following *models.User) error {
	if follower.ID == following.ID {
		return nil
	}
	return f.insertOnce(ctx, &models.Follow{FollowerID: follower.ID, FollowingID: following.ID})
}

// EnsureCategories inserts any missing default categories and returns the
// full catalog.
func (f *Factory) EnsureCategories(ctx context.Context) ([]models.CraftCategory, error) {
	if f.opts.DryRun {
		out := make([]models.CraftCategory, 0, len(DefaultCategories))
		for _, c := range DefaultCategories {
			f.nextID++
			out = append(out, models.CraftCategory{ID: f.nextID, Name: c.Name, Description: c.Description})
		}
		return out, nil
	}
	return EnsureCategories(ctx, f.db)
}

// EnsureCategories inserts any missing default categories by name and
// returns every category.
func EnsureCategories(ctx context.Context, db *gorm.DB) ([]models.CraftCategory, error) {
	rows := make([]models.CraftCategory, 0, len(DefaultCategories))
	for _, c := range DefaultCategories {
		rows = append(rows, models.CraftCategory{Name: c.Name, Description: c.Description})
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("ensure categories: %w", err)
	}

	var all []models.CraftCategory
	if err := db.WithContext(ctx).Order("id").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}
