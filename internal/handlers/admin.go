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

// ListReports lists moderation reports, optionally filtered by status
func (h *Handlers) ListReports(c *gin.Context) {
	page, limit, skip := util.PageParams(c, 20, 100)

	query := database.DB.Model(&models.Report{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "Failed to fetch reports")
		return
	}

	var reports []models.Report
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&reports).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":    reports,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}

// ResolveReportRequest is the payload for closing a report
type ResolveReportRequest struct {
	Status     models.ReportStatus `json:"status" binding:"required,oneof=resolved dismissed"`
	Resolution string              `json:"resolution" binding:"max=2000"`
}

// ResolveReport closes a moderation report
func (h *Handlers) ResolveReport(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	reportID := c.Param("id")

	var report models.Report
	err := database.DB.Where("id = ?", reportID).First(&report).Error
	if util.HandleDBError(c, err, "report") {
		return
	}

	if report.Status != models.ReportStatusPending {
		util.RespondConflict(c, "Report already handled")
		return
	}

	var req ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	now := time.Now().UTC()
	report.Status = req.Status
	report.Resolution = req.Resolution
	report.ResolvedBy = &admin.ID
	report.ResolvedAt = &now

	if err := database.DB.Save(&report).Error; err != nil {
		util.RespondInternalError(c, "Failed to resolve report")
		return
	}

	notify(report.ReporterID, models.NotificationReportUpdate, admin.ID, report.ID,
		"Your report has been "+string(req.Status))
	activity.Record(admin.ID, models.ActionReportResolved, report.ID, "report",
		map[string]interface{}{"status": string(req.Status)})

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// BanUser suspends an account
func (h *Handlers) BanUser(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	userID := c.Param("id")

	if userID == admin.ID {
		util.RespondBadRequest(c, "cannot ban yourself")
		return
	}

	var user models.User
	err := database.DB.Where("id = ?", userID).First(&user).Error
	if util.HandleDBError(c, err, "user") {
		return
	}

	if user.IsAdmin {
		util.RespondForbidden(c, "Cannot ban an admin")
		return
	}

	if err := database.DB.Model(&user).Update("is_banned", true).Error; err != nil {
		util.RespondInternalError(c, "Failed to ban user")
		return
	}

	activity.Record(admin.ID, models.ActionUserBanned, userID, "user", nil)

	c.JSON(http.StatusOK, gin.H{"banned": true})
}

// UnbanUser lifts an account suspension
func (h *Handlers) UnbanUser(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	userID := c.Param("id")

	var user models.User
	err := database.DB.Where("id = ?", userID).First(&user).Error
	if util.HandleDBError(c, err, "user") {
		return
	}

	if err := database.DB.Model(&user).Update("is_banned", false).Error; err != nil {
		util.RespondInternalError(c, "Failed to unban user")
		return
	}

	activity.Record(admin.ID, models.ActionUserUnbanned, userID, "user", nil)

	c.JSON(http.StatusOK, gin.H{"banned": false})
}
