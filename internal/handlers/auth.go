package handlers

import (
	"errors"
	"net/http"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/auth"
	"github.com/craftfolio/backend/internal/models"
	"github.com/craftfolio/backend/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Register creates a new account with email/password
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	resp, err := h.authService.RegisterNativeUser(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			util.RespondConflict(c, "An account with this email already exists")
		case errors.Is(err, auth.ErrUsernameExists):
			util.RespondConflict(c, "Username already taken")
		default:
			util.RespondInternalError(c, "Failed to create account")
		}
		return
	}

	activity.RecordWithIP(resp.User.ID, models.ActionUserRegistered, resp.User.ID, "user", c.ClientIP(), nil)

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email/password
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondValidationError(c, "body", err.Error())
		return
	}

	resp, err := h.authService.LoginNativeUser(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
			util.RespondUnauthorized(c, "Invalid email or password")
		case errors.Is(err, auth.ErrUserBanned):
			util.RespondForbidden(c, "Account suspended")
		default:
			util.RespondInternalError(c, "Login failed")
		}
		return
	}

	activity.RecordWithIP(resp.User.ID, models.ActionUserLogin, resp.User.ID, "user", c.ClientIP(), nil)

	c.JSON(http.StatusOK, resp)
}

// GoogleLogin redirects to the Google OAuth consent screen
func (h *Handlers) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	// State cookie guards the callback against CSRF
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.GetGoogleOAuthURL(state))
}

// GoogleCallback completes the Google OAuth flow
func (h *Handlers) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != cookieState {
		util.RespondBadRequest(c, "Invalid OAuth state")
		return
	}

	code := c.Query("code")
	if code == "" {
		util.RespondBadRequest(c, "Missing OAuth code")
		return
	}

	resp, err := h.authService.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, auth.ErrUserBanned) {
			util.RespondForbidden(c, "Account suspended")
			return
		}
		util.RespondInternalError(c, "OAuth sign-in failed")
		return
	}

	activity.RecordWithIP(resp.User.ID, models.ActionUserLogin, resp.User.ID, "user", c.ClientIP(),
		map[string]interface{}{"provider": "google"})

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's account
func (h *Handlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
