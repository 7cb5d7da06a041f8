package handlers

import (
	"net/http"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest is the editable subset of the user profile
type UpdateProfileRequest struct {
	DisplayName *string             `json:"display_name"`
	Bio         *string             `json:"bio"`
	Location    *string             `json:"location"`
	AvatarURL   *string             `json:"avatar_url"`
	Skills      []string            `json:"skills"`
	SocialLinks *models.SocialLinks `json:"social_links"`
	IsPublic    *bool               `json:"is_public"`
}

// GetProfile returns a user's public profile
func (h *Handlers) GetProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	err := database.DB.Where("id = ?", userID).First(&user).Error
	if util.HandleDBError(c, err, "user") {
		return
	}

	// Private profiles are visible to their owner only
	if !user.IsPublic {
		viewerID, _ := c.Get("user_id")
		if viewerID != user.ID {
			util.RespondNotFound(c, "user")
			return
		}
	}

	if user.IsBanned {
		util.RespondNotFound(c, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.PublicProfile()})
}

// UpdateMe updates the authenticated user's profile
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			util.RespondValidationError(c, "display_name", "display name cannot be empty")
			return
		}
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Skills != nil {
		updates["skills"] = models.StringArray(req.Skills)
	}
	if req.SocialLinks != nil {
		updates["social_links"] = req.SocialLinks
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	err := database.DB.Model(user).Updates(updates).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to update profile")
		return
	}

	activity.Record(user.ID, models.ActionProfileUpdated, user.ID, "user", nil)

	var fresh models.User
	if err := database.DB.Where("id = ?", user.ID).First(&fresh).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"user": fresh})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserProjects lists a user's published projects
func (h *Handlers) GetUserProjects(c *gin.Context) {
	userID := c.Param("id")
	page, limit, skip := util.PageParams(c, 20, 100)

	var user models.User
	err := database.DB.Where("id = ?", userID).First(&user).Error
	if util.HandleDBError(c, err, "user") {
		return
	}

	viewerID, _ := c.Get("user_id")
	isOwner := viewerID == user.ID

	query := database.DB.Model(&models.Project{}).Where("user_id = ?", userID)
	if !isOwner {
		if !user.IsPublic || user.IsBanned {
			util.RespondNotFound(c, "user")
			return
		}
		query = query.Where("is_published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "Failed to fetch projects")
		return
	}

	var projects []models.Project
	err = query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&projects).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":   projects,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}

// GetMyActivity lists the authenticated user's recent activity log entries
func (h *Handlers) GetMyActivity(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	page, limit, skip := util.PageParams(c, 20, 100)

	var total int64
	err := database.DB.Model(&models.ActivityLogEntry{}).
		Where("actor_id = ?", user.ID).
		Count(&total).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch activity")
		return
	}

	var entries []models.ActivityLogEntry
	err = database.DB.
		Where("actor_id = ?", user.ID).
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&entries).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity":   entries,
		"pagination": util.NewPagination(page, limit, int(total)),
	})
}
