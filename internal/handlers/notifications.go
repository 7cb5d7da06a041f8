package handlers

import (
	"net/http"
	"time"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// ListNotifications lists the authenticated user's notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	page, limit, skip := util.PageParams(c, 20, 100)

	query := database.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "Failed to fetch notifications")
		return
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&notifications).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"pagination":    util.NewPagination(page, limit, int(total)),
	})
}

// UnreadCount returns the number of unread notifications
func (h *Handlers) UnreadCount(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var count int64
	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&count).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkNotificationsRead marks all of the user's notifications as read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	res := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		util.RespondInternalError(c, "Failed to mark notifications read")
		return
	}

	if res.RowsAffected > 0 {
		activity.Record(user.ID, models.ActionNotificationsRead, user.ID, "user",
			map[string]interface{}{"count": res.RowsAffected})
	}

	c.JSON(http.StatusOK, gin.H{"marked": res.RowsAffected})
}
