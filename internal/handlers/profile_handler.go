package handlers

import (
	"net/http"

	"usertemplate/backend/internal/auth"
	"usertemplate/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type UpdateProfilePayload struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
}

type UpdatePasswordPayload struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

func sessionUserID(c *gin.Context) (uint, bool) {
	id, ok := auth.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return id, ok
}

// GetMeHandler returns the signed-in user.
func (h *Handler) GetMeHandler(c *gin.Context) {
	id, ok := sessionUserID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "get-me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMeHandler edits the signed-in user's name and email. The role is
// kept, and the session is reissued so its claims match the new email.
func (h *Handler) UpdateMeHandler(c *gin.Context) {
	id, ok := sessionUserID(c)
	if !ok {
		return
	}
	var payload UpdateProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	current, err := h.users.GetUser(ctx, id)
	if err != nil {
		h.respondServiceError(c, "update-me", err)
		return
	}
	user, err := h.users.UpdateUser(ctx, services.UserUpdate{
		ID:    id,
		Name:  payload.Name,
		Email: normalizeEmail(payload.Email),
		Role:  current.Role,
	})
	if err != nil {
		h.respondServiceError(c, "update-me", err)
		return
	}

	h.startSession(c, user, http.StatusOK)
}

// UpdateMyPasswordHandler changes the signed-in user's password.
func (h *Handler) UpdateMyPasswordHandler(c *gin.Context) {
	id, ok := sessionUserID(c)
	if !ok {
		return
	}
	var payload UpdatePasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if _, err := h.users.UpdatePassword(c.Request.Context(), id, payload.OldPassword, payload.NewPassword); err != nil {
		h.respondServiceError(c, "update-password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
