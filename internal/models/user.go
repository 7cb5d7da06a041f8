package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray is a custom type for PostgreSQL text[] that implements Scanner and Valuer
type StringArray []string

// Scan implements the sql.Scanner interface for reading from database
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	// PostgreSQL returns text[] as a string like "{value1,value2,value3}"
	str, ok := value.(string)
	if !ok {
		if bytes, ok := value.([]byte); ok {
			str = string(bytes)
		} else {
			*a = nil
			return nil
		}
	}

	str = strings.TrimPrefix(str, "{")
	str = strings.TrimSuffix(str, "}")

	if str == "" {
		*a = []string{}
		return nil
	}

	// Split by comma (simple case - doesn't handle quoted values with commas)
	*a = strings.Split(str, ",")
	return nil
}

// Value implements the driver.Valuer interface for writing to database
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(a, ",") + "}", nil
}

// SocialLinks stores a user's external profile links
type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
	Behance  string `json:"behance,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// User represents a Craftfolio account
type User struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Location    string `gorm:"type:text" json:"location"`

	// Native auth fields
	PasswordHash *string `gorm:"type:text" json:"-"`

	// OAuth provider ID (nullable - users can have native accounts)
	GoogleID *string `gorm:"uniqueIndex" json:"-"`

	// Profile data
	AvatarURL   string       `json:"avatar_url"`
	Skills      StringArray  `gorm:"type:text[]" json:"skills"`
	SocialLinks *SocialLinks `gorm:"type:jsonb;serializer:json" json:"social_links"`

	// IsPublic opts the account into public profiles and leaderboards
	IsPublic bool `gorm:"default:true" json:"is_public"`

	// Moderation / roles
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsBanned bool `gorm:"default:false" json:"is_banned"`

	// Cached social stats (presentation only - follows table is source of truth)
	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	ProjectCount   int `gorm:"default:0" json:"project_count"`

	// Activity tracking
	LastActiveAt *time.Time `json:"last_active_at"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicProfile returns the fields safe to expose to other users
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID,
		"username":       u.Username,
		"display_name":   u.DisplayName,
		"bio":            u.Bio,
		"location":       u.Location,
		"avatar_url":     u.AvatarURL,
		"skills":         u.Skills,
		"social_links":   u.SocialLinks,
		"follower_count": u.FollowerCount,
		"project_count":  u.ProjectCount,
		"created_at":     u.CreatedAt,
	}
}

// Follow is a directed edge in the follow graph
type Follow struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FollowerID string `gorm:"not null;index;uniqueIndex:idx_follows_unique" json:"follower_id"`
	Follower   User   `gorm:"foreignKey:FollowerID" json:"-"`
	FolloweeID string `gorm:"not null;index;uniqueIndex:idx_follows_unique" json:"followee_id"`
	Followee   User   `gorm:"foreignKey:FolloweeID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
