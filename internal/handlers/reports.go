package handlers

import (
	"net/http"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// CreateReportRequest is the payload for submitting a moderation report
type CreateReportRequest struct {
	TargetID   string `json:"target_id" binding:"required"`
	TargetType string `json:"target_type" binding:"required,oneof=project comment user"`
	Reason     string `json:"reason" binding:"required,min=3,max=200"`
	Details    string `json:"details" binding:"max=2000"`
}

// CreateReport submits a moderation report
func (h *Handlers) CreateReport(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	// Verify the target exists
	var err error
	switch req.TargetType {
	case "project":
		err = database.DB.Where("id = ?", req.TargetID).First(&models.Project{}).Error
	case "comment":
		err = database.DB.Where("id = ?", req.TargetID).First(&models.Comment{}).Error
	case "user":
		err = database.DB.Where("id = ?", req.TargetID).First(&models.User{}).Error
	}
	if util.HandleDBError(c, err, req.TargetType) {
		return
	}

	report := models.Report{
		ReporterID: user.ID,
		TargetID:   req.TargetID,
		TargetType: req.TargetType,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     models.ReportStatusPending,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		util.RespondInternalError(c, "Failed to create report")
		return
	}

	activity.Record(user.ID, models.ActionReportCreated, report.ID, "report",
		map[string]interface{}{"target_type": req.TargetType, "target_id": req.TargetID})

	c.JSON(http.StatusCreated, gin.H{"report": report})
}
