package models

import (
	"time"
)

// ReportStatus enumerates the moderation states of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is a user-submitted moderation report against a project, comment or user
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"-"`

	TargetID   string `gorm:"not null;index" json:"target_id"`
	TargetType string `gorm:"not null" json:"target_type"`

	Reason  string       `gorm:"not null" json:"reason"`
	Details string       `gorm:"type:text" json:"details"`
	Status  ReportStatus `gorm:"default:'pending';index" json:"status"`

	// Resolution fields, set by the handling admin
	ResolvedBy *string    `json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Resolution string     `gorm:"type:text" json:"resolution"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
