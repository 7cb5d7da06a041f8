package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetDashboard returns the authenticated user's analytics dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	dash, err := h.aggregator.BuildDashboard(c.Request.Context(), user.ID)
	if err != nil {
		util.RespondInternalError(c, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, dash)
}

// GetAudience returns the authenticated user's audience breakdown
func (h *Handlers) GetAudience(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	audience, err := h.aggregator.BuildAudience(c.Request.Context(), user.ID)
	if err != nil {
		util.RespondInternalError(c, "Failed to build audience summary")
		return
	}

	c.JSON(http.StatusOK, audience)
}

// ExportStats streams the authenticated user's per-project stats as CSV
func (h *Handlers) ExportStats(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	// Build the export in memory first so a query failure never leaves a
	// partial CSV body in the response
	var buf bytes.Buffer
	if err := h.aggregator.WriteCSV(c.Request.Context(), &buf, user.ID); err != nil {
		util.RespondInternalError(c, "Failed to export stats")
		return
	}

	filename := "craftfolio-stats-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())

	activity.Record(user.ID, models.ActionStatsExported, user.ID, "user", nil)
}
