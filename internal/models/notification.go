package models

import (
	"time"
)

// NotificationType enumerates notification kinds
type NotificationType string

const (
	NotificationNewFollower    NotificationType = "new_follower"
	NotificationProjectLiked   NotificationType = "project_liked"
	NotificationProjectComment NotificationType = "project_comment"
	NotificationCommentReply   NotificationType = "comment_reply"
	NotificationReportUpdate   NotificationType = "report_update"
)

// Notification is an in-app notification delivered to a user
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Type    NotificationType `gorm:"not null" json:"type"`
	Message string           `gorm:"not null" json:"message"`

	// ActorID is the user who triggered the notification, if any
	ActorID  *string `json:"actor_id"`
	TargetID string  `json:"target_id"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`
}
