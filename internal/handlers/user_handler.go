package handlers

import (
	"net/http"

	"usertemplate/backend/internal/auth"
	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UpdateUserPayload struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
	Role  string `json:"role" binding:"required"`
	// Password is optional; omitted or null leaves it unchanged.
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
}

// ListUsersHandler returns one page of users with page and sort links.
func (h *Handler) ListUsersHandler(c *gin.Context) {
	page, err := h.users.GetUsersPage(c.Request.Context(), GetPageQuery(c))
	if err != nil {
		h.respondServiceError(c, "list-users", err)
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(c, page))
}

func (h *Handler) GetUserHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "get-user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserHandler lets an admin edit any account, including its role.
func (h *Handler) UpdateUserHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	var payload UpdateUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	role, valid := models.ParseRole(payload.Role)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	// admins keep their own role
	if self, _ := auth.CurrentUserID(c); self == id && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admins cannot change their own role"})
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), services.UserUpdate{
		ID:       id,
		Name:     payload.Name,
		Email:    normalizeEmail(payload.Email),
		Role:     role,
		Password: payload.Password,
	})
	if err != nil {
		h.respondServiceError(c, "update-user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUserHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	if self, _ := auth.CurrentUserID(c); self == id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admins cannot delete their own account"})
		return
	}

	deleted, err := h.users.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "delete-user", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	h.logger.Info("User deleted by admin", zap.Uint("user_id", id))
	c.Status(http.StatusNoContent)
}
