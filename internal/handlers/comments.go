package handlers

import (
	"net/http"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// CreateCommentRequest is the payload for posting a comment
type CreateCommentRequest struct {
	Body     string  `json:"body" binding:"required,min=1,max=2000"`
	ParentID *string `json:"parent_id"`
}

// CreateComment posts a comment on a project
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	projectID := c.Param("id")

	var project models.Project
	err := database.DB.Preload("User").Where("id = ?", projectID).First(&project).Error
	if util.HandleDBError(c, err, "project") {
		return
	}
	if project.UserID != user.ID && (!project.IsPublished || !project.User.IsPublic || project.User.IsBanned) {
		util.RespondNotFound(c, "project")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	// Replies must target a comment on the same project
	if req.ParentID != nil {
		var parent models.Comment
		err := database.DB.Where("id = ? AND project_id = ?", *req.ParentID, projectID).First(&parent).Error
		if util.HandleDBError(c, err, "parent comment") {
			return
		}
		if parent.ParentID != nil {
			util.RespondBadRequest(c, "replies cannot be nested further")
			return
		}
	}

	comment := models.Comment{
		ProjectID: projectID,
		UserID:    user.ID,
		Body:      req.Body,
		ParentID:  req.ParentID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, "Failed to create comment")
		return
	}
	comment.User = *user

	h.queue.Enqueue(analytics.Event{
		Kind:      analytics.EventComment,
		ProjectID: projectID,
		ActorID:   user.ID,
	})

	if project.UserID != user.ID {
		notify(project.UserID, models.NotificationProjectComment, user.ID, projectID,
			user.DisplayName+" commented on "+project.Title)
	}
	activity.Record(user.ID, models.ActionCommentCreated, comment.ID, "comment",
		map[string]interface{}{"project_id": projectID})

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListComments lists a project's comments, newest first
func (h *Handlers) ListComments(c *gin.Context) {
	projectID := c.Param("id")
	page, limit, skip := util.PageParams(c, 20, 100)

	var project models.Project
	err := database.DB.Preload("User").Where("id = ?", projectID).First(&project).Error
	if util.HandleDBError(c, err, "project") {
		return
	}

	viewerID, _ := c.Get("user_id")
	if viewerID != project.UserID && (!project.IsPublished || !project.User.IsPublic || project.User.IsBanned) {
		util.RespondNotFound(c, "project")
		return
	}

	var total int64
	err = database.DB.Model(&models.Comment{}).
		Where("project_id = ?", projectID).
		Count(&total).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch comments")
		return
	}

	var comments []models.Comment
	err = database.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":   comments,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}

// DeleteComment removes a comment. Allowed for the comment author, the
// project owner, and admins.
func (h *Handlers) DeleteComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	commentID := c.Param("commentId")

	var comment models.Comment
	err := database.DB.Preload("Project").Where("id = ?", commentID).First(&comment).Error
	if util.HandleDBError(c, err, "comment") {
		return
	}

	if comment.UserID != user.ID && comment.Project.UserID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "You cannot delete this comment")
		return
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		util.RespondInternalError(c, "Failed to delete comment")
		return
	}

	h.queue.Enqueue(analytics.Event{
		Kind:      analytics.EventCommentRemoved,
		ProjectID: comment.ProjectID,
		ActorID:   user.ID,
	})

	activity.Record(user.ID, models.ActionCommentDeleted, comment.ID, "comment",
		map[string]interface{}{"project_id": comment.ProjectID})

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
