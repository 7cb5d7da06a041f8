package handlers

import (
	"net/http"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=120"`
	Description string   `json:"description" binding:"max=5000"`
	CoverURL    string   `json:"cover_url"`
	ProjectURL  string   `json:"project_url"`
	RepoURL     string   `json:"repo_url"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"is_published"`
}

// UpdateProjectRequest is the payload for updating a project
type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	CoverURL    *string  `json:"cover_url"`
	ProjectURL  *string  `json:"project_url"`
	RepoURL     *string  `json:"repo_url"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"is_published"`
}

// CreateProject creates a new portfolio project
func (h *Handlers) CreateProject(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	project := models.Project{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		ProjectURL:  req.ProjectURL,
		RepoURL:     req.RepoURL,
		Tags:        models.StringArray(req.Tags),
		IsPublished: true,
	}
	if req.IsPublished != nil {
		project.IsPublished = *req.IsPublished
	}

	if err := database.DB.Create(&project).Error; err != nil {
		util.RespondInternalError(c, "Failed to create project")
		return
	}

	database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("project_count", gorm.Expr("project_count + 1"))

	activity.Record(user.ID, models.ActionProjectCreated, project.ID, "project",
		map[string]interface{}{"title": project.Title})

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// ListProjects lists published projects, optionally filtered by tags
func (h *Handlers) ListProjects(c *gin.Context) {
	page, limit, skip := util.PageParams(c, 20, 100)

	query := database.DB.Model(&models.Project{}).
		Joins("JOIN users ON users.id = projects.user_id").
		Where("projects.is_published = ? AND users.is_public = ? AND users.is_banned = ? AND users.deleted_at IS NULL",
			true, true, false)

	// Tag filter matches projects carrying any of the requested tags
	if tags := util.ParseTagList(c.Query("tags")); len(tags) > 0 {
		query = query.Where("projects.tags && ?", pq.Array(tags))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "Failed to fetch projects")
		return
	}

	var projects []models.Project
	err := query.Preload("User").
		Order("projects.created_at DESC").
		Offset(skip).Limit(limit).
		Find(&projects).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":   projects,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}

// GetProject fetches one project and counts the view. The view flows
// through the analytics queue so the response never waits on counters.
func (h *Handlers) GetProject(c *gin.Context) {
	projectID := c.Param("id")

	var project models.Project
	err := database.DB.Preload("User").Where("id = ?", projectID).First(&project).Error
	if util.HandleDBError(c, err, "project") {
		return
	}

	viewerID := ""
	if id, exists := c.Get("user_id"); exists {
		viewerID, _ = id.(string)
	}
	isOwner := viewerID == project.UserID

	if !isOwner {
		if !project.IsPublished || !project.User.IsPublic || project.User.IsBanned {
			util.RespondNotFound(c, "project")
			return
		}

		// Anonymous viewers are tracked by client fingerprint
		if viewerID == "" {
			viewerID = anonymousViewerID(c)
		}
		h.queue.Enqueue(analytics.Event{
			Kind:      analytics.EventView,
			ProjectID: project.ID,
			ActorID:   viewerID,
		})
		activity.Record(viewerID, models.ActionProjectViewed, project.ID, "project", nil)
	}

	liked := false
	if viewerID != "" && !isOwner {
		liked, _ = h.recorder.HasLiked(c.Request.Context(), project.ID, viewerID)
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"liked":   liked,
	})
}

// anonymousViewerID derives a stable per-client identity for guests so
// unique viewer counts include anonymous traffic
func anonymousViewerID(c *gin.Context) string {
	return "anon:" + c.ClientIP()
}

// UpdateProject updates a project owned by the authenticated user
func (h *Handlers) UpdateProject(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	projectID := c.Param("id")

	var project models.Project
	err := database.DB.Where("id = ?", projectID).First(&project).Error
	if util.HandleDBError(c, err, "project") {
		return
	}

	if project.UserID != user.ID {
		util.RespondForbidden(c, "You do not own this project")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			util.RespondValidationError(c, "title", "title cannot be empty")
			return
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.ProjectURL != nil {
		updates["project_url"] = *req.ProjectURL
	}
	if req.RepoURL != nil {
		updates["repo_url"] = *req.RepoURL
	}
	if req.Tags != nil {
		updates["tags"] = models.StringArray(req.Tags)
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(&project).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "Failed to update project")
		return
	}

	activity.Record(user.ID, models.ActionProjectUpdated, project.ID, "project", nil)

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// DeleteProject removes a project along with its counters
func (h *Handlers) DeleteProject(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	projectID := c.Param("id")

	var project models.Project
	err := database.DB.Where("id = ?", projectID).First(&project).Error
	if util.HandleDBError(c, err, "project") {
		return
	}

	if project.UserID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "You do not own this project")
		return
	}

	if err := database.DB.Delete(&project).Error; err != nil {
		util.RespondInternalError(c, "Failed to delete project")
		return
	}

	// Counter rows go with the project
	if err := h.recorder.PurgeProject(c.Request.Context(), project.ID); err != nil {
		logger.Log.Warn("Failed to purge project counters",
			zap.String("project_id", project.ID), zap.Error(err))
	}

	database.DB.Model(&models.User{}).
		Where("id = ?", project.UserID).
		Update("project_count", gorm.Expr("GREATEST(project_count - 1, 0)"))

	activity.Record(user.ID, models.ActionProjectDeleted, project.ID, "project",
		map[string]interface{}{"title": project.Title})

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetProjectStats returns the counter snapshot and score for a project
func (h *Handlers) GetProjectStats(c *gin.Context) {
	projectID := c.Param("id")

	var project models.Project
	err := database.DB.Preload("User").Where("id = ?", projectID).First(&project).Error
	if util.HandleDBError(c, err, "project") {
		return
	}

	viewerID, _ := c.Get("user_id")
	isOwner := viewerID == project.UserID
	if !isOwner && (!project.IsPublished || !project.User.IsPublic || project.User.IsBanned) {
		util.RespondNotFound(c, "project")
		return
	}

	stats, err := h.recorder.Snapshot(c.Request.Context(), project.ID)
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch stats")
		return
	}

	uniqueViewers, err := h.recorder.UniqueViewerCount(c.Request.Context(), project.ID)
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_id":     project.ID,
		"views":          stats.ViewsTotal,
		"likes":          stats.LikesTotal,
		"comments":       stats.CommentsTotal,
		"unique_viewers": uniqueViewers,
		"score":          analytics.ScoreStats(stats),
	})
}
