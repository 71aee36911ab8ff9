package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"crafthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{
		UserID:  1,
		Title:   "Test Post",
		Content: "Content long enough",
		Images: []models.PostImage{
			{ImageURL: "https://img.example.com/a.jpg", Order: 0},
			{ImageURL: "https://img.example.com/b.jpg", Order: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "post_images"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), post))
	assert.Equal(t, uint(7), post.ID)
	require.Len(t, post.Images, 2)
	assert.Equal(t, uint(7), post.Images[1].PostID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreateRollsBackOnImageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{
		UserID:  1,
		Title:   "Test Post",
		Content: "Content long enough",
		Images:  []models.PostImage{{ImageURL: "https://img.example.com/a.jpg"}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "post_images"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), post)
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByIDDetails(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "weaver")
	fan := createUser(t, db, "fan")
	cat := createCategory(t, db, "Weaving")
	post := createPost(t, db, author, "Tapestry", time.Now(), func(p *models.Post) {
		p.CraftCategoryID = &cat.ID
		p.Images = []models.PostImage{
			{ImageURL: "https://img.example.com/2.jpg", Order: 2},
			{ImageURL: "https://img.example.com/0.jpg", Order: 0},
		}
	})

	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: fan.ID, PostID: post.ID, Content: "lovely"}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: fan.ID, PostID: post.ID, Content: "again"}).Error)
	require.NoError(t, db.Create(&models.Share{UserID: fan.ID, PostID: post.ID}).Error)

	got, err := repo.GetByID(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikesCount)
	assert.Equal(t, int64(2), got.CommentsCount)
	assert.Equal(t, int64(1), got.SharesCount)
	assert.True(t, got.IsLiked)
	require.NotNil(t, got.Author)
	assert.Equal(t, "weaver", got.Author.Username)
	require.NotNil(t, got.CraftCategory)
	assert.Equal(t, "Weaving", got.CraftCategory.Name)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "https://img.example.com/0.jpg", got.Images[0].ImageURL)

	anon, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.IsLiked)
	assert.Equal(t, int64(1), anon.LikesCount)

	_, err = repo.GetByID(ctx, post.ID+99, 0)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_GetOwned(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")
	post := createPost(t, db, owner, "Mug", time.Now())

	got, err := repo.GetOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, errForeign := repo.GetOwned(ctx, post.ID, other.ID)
	_, errMissing := repo.GetOwned(ctx, post.ID+50, owner.ID)
	assert.True(t, models.IsNotFound(errForeign))
	assert.True(t, models.IsNotFound(errMissing))
}

func TestPostRepository_ListFilters(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	wood := createCategory(t, db, "Woodworking")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p1 := createPost(t, db, alice, "Walnut Bowl", base, func(p *models.Post) { p.CraftCategoryID = &wood.ID })
	p2 := createPost(t, db, alice, "Knitted scarf", base.Add(time.Hour), func(p *models.Post) { p.IsForSale = true })
	p3 := createPost(t, db, bob, "Oak bowl 100%", base.Add(2*time.Hour), func(p *models.Post) {
		p.CraftCategoryID = &wood.ID
		p.IsFeatured = true
	})

	ids := func(posts []*models.Post) []uint {
		out := make([]uint, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter PostFilter
		want   []uint
	}{
		{"all newest first", PostFilter{}, []uint{p3.ID, p2.ID, p1.ID}},
		{"by author", PostFilter{AuthorID: uintPtr(alice.ID)}, []uint{p2.ID, p1.ID}},
		{"by category", PostFilter{CategoryID: uintPtr(wood.ID)}, []uint{p3.ID, p1.ID}},
		{"for sale", PostFilter{IsForSale: boolPtr(true)}, []uint{p2.ID}},
		{"not for sale", PostFilter{IsForSale: boolPtr(false)}, []uint{p3.ID, p1.ID}},
		{"featured", PostFilter{IsFeatured: boolPtr(true)}, []uint{p3.ID}},
		{"search is case insensitive", PostFilter{Search: "BOWL"}, []uint{p3.ID, p1.ID}},
		{"search escapes wildcards", PostFilter{Search: "100%"}, []uint{p3.ID}},
		{"search matches content", PostFilter{Search: "weekend"}, []uint{p3.ID, p2.ID, p1.ID}},
		{"created after inclusive", PostFilter{CreatedAfter: timePtr(base.Add(time.Hour))}, []uint{p3.ID, p2.ID}},
		{"created before inclusive", PostFilter{CreatedBefore: timePtr(base.Add(time.Hour))}, []uint{p2.ID, p1.ID}},
		{"limit and offset", PostFilter{Limit: 1, Offset: 1}, []uint{p2.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(ctx, tt.filter, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(posts))
		})
	}
}

func TestPostRepository_Update(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "potter")
	post := createPost(t, db, author, "Vase", time.Now(), func(p *models.Post) {
		p.Images = []models.PostImage{{ImageURL: "https://img.example.com/old.jpg"}}
	})

	post.Title = "Tall vase"
	require.NoError(t, repo.Update(ctx, post, nil))

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Tall vase", got.Title)
	require.Len(t, got.Images, 1, "nil images leaves them untouched")

	require.NoError(t, repo.Update(ctx, post, []models.PostImage{
		{ImageURL: "https://img.example.com/new1.jpg", Order: 0},
		{ImageURL: "https://img.example.com/new2.jpg", Order: 1},
	}))
	got, err = repo.GetByID(ctx, post.ID, author.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "https://img.example.com/new1.jpg", got.Images[0].ImageURL)

	require.NoError(t, repo.Update(ctx, post, []models.PostImage{}))
	got, err = repo.GetByID(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "smith")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author, "Hook", time.Now(), func(p *models.Post) {
		p.Images = []models.PostImage{{ImageURL: "https://img.example.com/h.jpg"}}
	})
	keep := createPost(t, db, author, "Hinge", time.Now())

	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PostID: keep.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: fan.ID, PostID: post.ID, Content: "nice"}).Error)
	require.NoError(t, db.Create(&models.Share{UserID: fan.ID, PostID: post.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	for _, m := range []any{&models.Like{}, &models.Comment{}, &models.Share{}, &models.PostImage{}} {
		var n int64
		require.NoError(t, db.Model(m).Where("post_id = ?", post.ID).Count(&n).Error)
		assert.Zero(t, n, "%T rows left", m)
	}
	var kept int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", keep.ID).Count(&kept).Error)
	assert.Equal(t, int64(1), kept)

	assert.True(t, models.IsNotFound(repo.Delete(ctx, post.ID)))
}

func TestPostRepository_SetFeatured(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "quilter")
	post := createPost(t, db, author, "Quilt", time.Now())

	require.NoError(t, repo.SetFeatured(ctx, post.ID, true))
	featured, err := repo.List(ctx, PostFilter{IsFeatured: boolPtr(true)}, 0)
	require.NoError(t, err)
	require.Len(t, featured, 1)

	assert.True(t, models.IsNotFound(repo.SetFeatured(ctx, post.ID+10, true)))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off \_ \\`, escapeLike(`50% off _ \`))
}

func timePtr(v time.Time) *time.Time { return &v }
