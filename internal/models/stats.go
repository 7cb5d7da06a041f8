package models

import (
	"time"
)

// ProjectStats holds the lifetime engagement counters for a project.
// One row per project, updated with atomic in-database increments so
// concurrent events never lose counts.
type ProjectStats struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProjectID string  `gorm:"not null;uniqueIndex" json:"project_id"`
	Project   Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`

	ViewsTotal    int `gorm:"default:0" json:"views_total"`
	LikesTotal    int `gorm:"default:0" json:"likes_total"`
	CommentsTotal int `gorm:"default:0" json:"comments_total"`

	// EngagementInteractions caches views+likes+comments, recomputed in the
	// same UPDATE as each counter change. Used by the dashboard engagement rate.
	EngagementInteractions int `gorm:"default:0" json:"engagement_interactions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PopularityScore computes the weighted score from the cached totals.
// Views weigh 1, likes 10, comments 15.
func (s *ProjectStats) PopularityScore() int {
	return s.ViewsTotal + s.LikesTotal*10 + s.CommentsTotal*15
}

// ProjectDailyStat is one day's view bucket for a project. Rows are upserted
// with ON CONFLICT increments keyed on (project_id, day).
type ProjectDailyStat struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProjectID string `gorm:"not null;index;uniqueIndex:idx_daily_stats_project_day" json:"project_id"`

	// Day is the UTC date truncated to midnight
	Day time.Time `gorm:"not null;type:date;uniqueIndex:idx_daily_stats_project_day" json:"day"`

	Views    int `gorm:"default:0" json:"views"`
	Likes    int `gorm:"default:0" json:"likes"`
	Comments int `gorm:"default:0" json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectViewer records that a viewer has seen a project at least once.
// The unique pair makes repeat views idempotent for unique-viewer counting.
type ProjectViewer struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProjectID string `gorm:"not null;index;uniqueIndex:idx_project_viewers_unique" json:"project_id"`

	// ViewerID is a user ID for authenticated viewers or an anonymous
	// client fingerprint for guests
	ViewerID string `gorm:"not null;uniqueIndex:idx_project_viewers_unique" json:"viewer_id"`

	CreatedAt time.Time `json:"created_at"`
}

// ProjectLike is a user's like on a project. The unique pair makes likes
// idempotent and lets unlike verify membership before decrementing.
type ProjectLike struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProjectID string `gorm:"not null;index;uniqueIndex:idx_project_likes_unique" json:"project_id"`
	UserID    string `gorm:"not null;index;uniqueIndex:idx_project_likes_unique" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}
