package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"usertemplate/backend/internal/auth"
	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/notifications"
	"usertemplate/backend/internal/ratelimit"
	"usertemplate/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserService is the account API the handlers depend on.
type UserService interface {
	GetUsersPage(ctx context.Context, q services.PageQuery) (*models.Paged[models.User], error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	IsEmailAvailable(ctx context.Context, email string, excludingID uint) (bool, error)
	AddUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error)
	UpdateUser(ctx context.Context, upd services.UserUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id uint, oldPassword, newPassword string) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) (bool, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) (*models.User, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the handlers need.
type Deps struct {
	Users           UserService
	Tokens          *auth.TokenManager
	Mailer          notifications.Mailer
	Limiter         ratelimit.Limiter
	DB              Pinger
	Logger          *zap.Logger
	FrontendBaseURL string
	ResetTokenTTL   time.Duration
}

type Handler struct {
	users           UserService
	tokens          *auth.TokenManager
	mailer          notifications.Mailer
	limiter         ratelimit.Limiter
	db              Pinger
	logger          *zap.Logger
	frontendBaseURL string
	resetTokenTTL   time.Duration
}

func New(d Deps) *Handler {
	h := &Handler{
		users:           d.Users,
		tokens:          d.Tokens,
		mailer:          d.Mailer,
		limiter:         d.Limiter,
		db:              d.DB,
		logger:          d.Logger,
		frontendBaseURL: d.FrontendBaseURL,
		resetTokenTTL:   d.ResetTokenTTL,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.logger = h.logger.Named("handlers")
	if h.limiter == nil {
		h.limiter = ratelimit.Nop{}
	}
	if h.resetTokenTTL <= 0 {
		h.resetTokenTTL = services.DefaultResetTokenTTL
	}
	if h.frontendBaseURL == "" {
		h.frontendBaseURL = "http://localhost:3000"
	}
	return h
}

// respondServiceError maps service sentinels to a status and a generic
// message. Anything unexpected is logged and reported as 500.
func (h *Handler) respondServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email address is already in use"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrInvalidResetRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password reset request"})
	default:
		h.logger.Error("Request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// HealthHandler reports whether the database answers.
func (h *Handler) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
