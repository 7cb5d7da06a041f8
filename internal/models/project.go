package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a portfolio piece published by a user
type Project struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	CoverURL    string      `json:"cover_url"`
	ProjectURL  string      `json:"project_url"`
	RepoURL     string      `json:"repo_url"`
	Tags        StringArray `gorm:"type:text[];index:idx_projects_tags,type:gin" json:"tags"`

	IsPublished bool `gorm:"default:true;index" json:"is_published"`
	IsFeatured  bool `gorm:"default:false" json:"is_featured"`

	// Cached engagement counters for list rendering. Kept in sync by the
	// analytics recorder; project_stats is the authoritative store.
	ViewCount    int `gorm:"default:0" json:"view_count"`
	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment is a user comment on a project
type Comment struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProjectID string  `gorm:"not null;index" json:"project_id"`
	Project   Project `gorm:"foreignKey:ProjectID" json:"-"`
	UserID    string  `gorm:"not null;index" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	// Threading (one level deep)
	ParentID *string `gorm:"index" json:"parent_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
