package handlers

import (
	"net/http"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowUser creates a follow edge to another user
func (h *Handlers) FollowUser(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	if targetID == user.ID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.User
	err := database.DB.Where("id = ?", targetID).First(&target).Error
	if util.HandleDBError(c, err, "user") {
		return
	}
	if target.IsBanned {
		util.RespondNotFound(c, "user")
		return
	}

	res := database.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
			DoNothing: true,
		}).
		Create(&models.Follow{FollowerID: user.ID, FolloweeID: targetID})
	if res.Error != nil {
		util.RespondInternalError(c, "Failed to follow user")
		return
	}

	// Only a new edge moves the counters
	if res.RowsAffected > 0 {
		database.DB.Model(&models.User{}).Where("id = ?", targetID).
			Update("follower_count", gorm.Expr("follower_count + 1"))
		database.DB.Model(&models.User{}).Where("id = ?", user.ID).
			Update("following_count", gorm.Expr("following_count + 1"))

		notify(targetID, models.NotificationNewFollower, user.ID, user.ID,
			user.DisplayName+" started following you")
		activity.Record(user.ID, models.ActionUserFollowed, targetID, "user", nil)
	}

	c.JSON(http.StatusOK, gin.H{"following": true})
}

// UnfollowUser removes a follow edge
func (h *Handlers) UnfollowUser(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	res := database.DB.
		Where("follower_id = ? AND followee_id = ?", user.ID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		util.RespondInternalError(c, "Failed to unfollow user")
		return
	}

	if res.RowsAffected > 0 {
		database.DB.Model(&models.User{}).Where("id = ?", targetID).
			Update("follower_count", gorm.Expr("GREATEST(follower_count - 1, 0)"))
		database.DB.Model(&models.User{}).Where("id = ?", user.ID).
			Update("following_count", gorm.Expr("GREATEST(following_count - 1, 0)"))

		activity.Record(user.ID, models.ActionUserUnfollowed, targetID, "user", nil)
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// ListFollowers lists the users following a user
func (h *Handlers) ListFollowers(c *gin.Context) {
	userID := c.Param("id")
	page, limit, skip := util.PageParams(c, 20, 100)

	var total int64
	err := database.DB.Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&total).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch followers")
		return
	}

	var follows []models.Follow
	err = database.DB.Preload("Follower").
		Where("followee_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&follows).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch followers")
		return
	}

	followers := make([]map[string]interface{}, 0, len(follows))
	for _, f := range follows {
		followers = append(followers, f.Follower.PublicProfile())
	}

	c.JSON(http.StatusOK, gin.H{
		"followers":  followers,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}

// ListFollowing lists the users a user follows
func (h *Handlers) ListFollowing(c *gin.Context) {
	userID := c.Param("id")
	page, limit, skip := util.PageParams(c, 20, 100)

	var total int64
	err := database.DB.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&total).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch following")
		return
	}

	var follows []models.Follow
	err = database.DB.Preload("Followee").
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&follows).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch following")
		return
	}

	following := make([]map[string]interface{}, 0, len(follows))
	for _, f := range follows {
		following = append(following, f.Followee.PublicProfile())
	}

	c.JSON(http.StatusOK, gin.H{
		"following":  following,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}

// LikeProject likes a project. The like is applied synchronously so the
// membership check is immediate; repeat likes are no-ops.
func (h *Handlers) LikeProject(c *gin.Context) {
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
	if project.UserID != user.ID && (!project.IsPublished || !project.User.IsPublic) {
		util.RespondNotFound(c, "project")
		return
	}

	alreadyLiked, err := h.recorder.HasLiked(c.Request.Context(), project.ID, user.ID)
	if err != nil {
		util.RespondInternalError(c, "Failed to like project")
		return
	}

	h.queue.Enqueue(analytics.Event{
		Kind:      analytics.EventLike,
		ProjectID: project.ID,
		ActorID:   user.ID,
	})

	if !alreadyLiked {
		if project.UserID != user.ID {
			notify(project.UserID, models.NotificationProjectLiked, user.ID, project.ID,
				user.DisplayName+" liked "+project.Title)
		}
		activity.Record(user.ID, models.ActionProjectLiked, project.ID, "project", nil)
	}

	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// UnlikeProject removes a like
func (h *Handlers) UnlikeProject(c *gin.Context) {
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

	h.queue.Enqueue(analytics.Event{
		Kind:      analytics.EventUnlike,
		ProjectID: project.ID,
		ActorID:   user.ID,
	})

	activity.Record(user.ID, models.ActionProjectUnliked, project.ID, "project", nil)

	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// notify creates an in-app notification, best-effort
func notify(userID string, kind models.NotificationType, actorID, targetID, message string) {
	entry := models.Notification{
		UserID:   userID,
		Type:     kind,
		Message:  message,
		ActorID:  &actorID,
		TargetID: targetID,
	}
	database.DB.Create(&entry)
}
