package repository

import (
	"fmt"
	"testing"
	"time"

	"crafthub/internal/database"
	"crafthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createCategory(t *testing.T, db *gorm.DB, name string) *models.CraftCategory {
	t.Helper()
	c := &models.CraftCategory{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

// createPost inserts a post created at the given time so ordering is
// deterministic.
func createPost(t *testing.T, db *gorm.DB, author *models.User, title string, at time.Time, mutate ...func(*models.Post)) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:    author.ID,
		Title:     title,
		Content:   fmt.Sprintf("%s, made by hand over a weekend.", title),
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, db.Omit("Author", "CraftCategory").Create(p).Error)
	return p
}

func uintPtr(v uint) *uint { return &v }

func boolPtr(v bool) *bool { return &v }
