// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a crafter account. Credentials belong to the external auth
// service; this service only reads the profile.
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email               string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password            string    `gorm:"size:255" json:"-"`
	FirstName           string    `gorm:"size:150" json:"first_name"`
	LastName            string    `gorm:"size:150" json:"last_name"`
	Avatar              string    `gorm:"size:500" json:"avatar"`
	Bio                 string    `gorm:"size:500" json:"bio"`
	CraftSpecialization string    `gorm:"size:100" json:"craft_specialization"`
	Location            string    `gorm:"size:100" json:"location"`
	Website             string    `gorm:"size:200" json:"website"`
	IsVerifiedCrafter   bool      `gorm:"not null" json:"is_verified_crafter"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// UserProfile is a user with follow-graph and post counts derived at read time.
type UserProfile struct {
	User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	PostsCount     int64 `json:"posts_count"`
	// IsFollowing is true when the viewing user follows this profile.
	IsFollowing bool `json:"is_following"`
}
