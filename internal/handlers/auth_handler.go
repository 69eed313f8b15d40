package handlers

import (
	"net/http"
	"strings"
	"time"

	"usertemplate/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegisterPayload struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	UserID    uint            `json:"user_id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
}

// RegisterHandler creates a guest account. Elevated roles are granted by an admin.
func (h *Handler) RegisterHandler(c *gin.Context) {
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	user, err := h.users.AddUser(c.Request.Context(), payload.Name, normalizeEmail(payload.Email), payload.Password, models.RoleGuest)
	if err != nil {
		h.respondServiceError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// LoginHandler checks credentials and starts a cookie session.
func (h *Handler) LoginHandler(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), normalizeEmail(payload.Email), payload.Password)
	if err != nil {
		h.respondServiceError(c, "login", err)
		return
	}

	h.startSession(c, user, http.StatusOK)
}

// LogoutHandler drops the session cookie.
func (h *Handler) LogoutHandler(c *gin.Context) {
	h.tokens.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// EmailAvailableHandler answers remote validation of the registration and
// profile forms. id is the account being edited, if any.
func (h *Handler) EmailAvailableHandler(c *gin.Context) {
	var query struct {
		Email string `form:"email" binding:"required,email"`
		ID    uint   `form:"id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	available, err := h.users.IsEmailAvailable(c.Request.Context(), normalizeEmail(query.Email), query.ID)
	if err != nil {
		h.respondServiceError(c, "email-available", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *Handler) startSession(c *gin.Context, user *models.User, status int) {
	token, expiresAt, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.logger.Error("Failed to generate session token", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}
	h.tokens.SetSessionCookie(c, token, expiresAt)
	c.JSON(status, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
	})
}

// normalizeEmail trims surrounding whitespace; case is kept as typed.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
