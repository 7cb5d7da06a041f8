package activity

import (
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"go.uber.org/zap"
)

// Record appends an activity log entry. Logging is best-effort: failures
// are logged and swallowed so the primary action is never affected.
func Record(actorID string, action models.ActivityAction, targetID, targetType string, details map[string]interface{}) {
	entry := models.ActivityLogEntry{
		ActorID:    actorID,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
		Details:    details,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		logger.Log.Warn("Failed to record activity",
			zap.String("action", string(action)),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
	}
}

// RecordWithIP is Record with the client IP attached
func RecordWithIP(actorID string, action models.ActivityAction, targetID, targetType, ip string, details map[string]interface{}) {
	entry := models.ActivityLogEntry{
		ActorID:    actorID,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
		Details:    details,
		IPAddress:  ip,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		logger.Log.Warn("Failed to record activity",
			zap.String("action", string(action)),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
	}
}
