package models

import (
	"time"
)

// ActivityAction enumerates the recorded platform actions
type ActivityAction string

const (
	ActionUserRegistered    ActivityAction = "user_registered"
	ActionUserLogin         ActivityAction = "user_login"
	ActionProfileUpdated    ActivityAction = "profile_updated"
	ActionProjectCreated    ActivityAction = "project_created"
	ActionProjectUpdated    ActivityAction = "project_updated"
	ActionProjectDeleted    ActivityAction = "project_deleted"
	ActionProjectViewed     ActivityAction = "project_viewed"
	ActionProjectLiked      ActivityAction = "project_liked"
	ActionProjectUnliked    ActivityAction = "project_unliked"
	ActionCommentCreated    ActivityAction = "comment_created"
	ActionCommentDeleted    ActivityAction = "comment_deleted"
	ActionUserFollowed      ActivityAction = "user_followed"
	ActionUserUnfollowed    ActivityAction = "user_unfollowed"
	ActionNotificationsRead ActivityAction = "notifications_read"
	ActionReportCreated     ActivityAction = "report_created"
	ActionReportResolved    ActivityAction = "report_resolved"
	ActionUserBanned        ActivityAction = "user_banned"
	ActionUserUnbanned      ActivityAction = "user_unbanned"
	ActionStatsExported     ActivityAction = "stats_exported"
)

// ActivityLogEntry is an append-only audit record of a platform action.
// Entries older than the retention window are swept hourly.
type ActivityLogEntry struct {
	ID string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`

	// ActorID is the user who performed the action, empty for anonymous actors
	ActorID string         `gorm:"index" json:"actor_id"`
	Action  ActivityAction `gorm:"not null;index" json:"action"`

	// TargetID references the affected entity (project, user, comment, report)
	TargetID   string `gorm:"index" json:"target_id"`
	TargetType string `json:"target_type"`

	Details map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"details,omitempty"`

	IPAddress string `json:"ip_address,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
