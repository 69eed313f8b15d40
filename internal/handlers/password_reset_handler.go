package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"usertemplate/backend/internal/notifications"
	"usertemplate/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const forgotPasswordReply = "If an account with that email exists, a password reset link has been sent."

type ForgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// ForgotPasswordHandler issues a reset token and mails the link. The reply
// never reveals whether the address has an account.
func (h *Handler) ForgotPasswordHandler(c *gin.Context) {
	log := h.logger.Named("ForgotPasswordHandler")
	var payload ForgotPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	email := normalizeEmail(payload.Email)
	ctx := c.Request.Context()

	allowed, err := h.limiter.Allow(ctx, "forgot-password:"+strings.ToLower(email))
	if err != nil {
		log.Warn("Rate limiter unavailable", zap.Error(err))
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many password reset requests, try again later"})
		return
	}

	token, err := h.users.ForgotPassword(ctx, email)
	if err != nil {
		if errors.Is(err, services.ErrNoAccountForReset) {
			log.Info("Password reset requested for unknown email")
		} else {
			log.Error("Failed to issue password reset token", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
		return
	}

	name := email
	if user, err := h.users.GetUserByEmail(ctx, email); err == nil {
		name = user.Name
	}
	subject, body, err := notifications.PasswordResetEmail(h.frontendBaseURL, name, email, token, humanDuration(h.resetTokenTTL))
	if err != nil {
		log.Error("Failed to render password reset email", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
		return
	}
	// delivery result is logged by the mailer, the client gets the same reply either way
	h.mailer.SendMailAsync(ctx, subject, body, email)

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
}

// ResetPasswordHandler consumes a reset token and sets the new password.
func (h *Handler) ResetPasswordHandler(c *gin.Context) {
	var payload ResetPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	_, err := h.users.ResetPassword(c.Request.Context(), normalizeEmail(payload.Email), payload.Token, payload.Password)
	if err != nil {
		h.respondServiceError(c, "reset-password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

func humanDuration(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int64(d/time.Hour), "hour")
	}
	return plural(int64(d.Round(time.Minute)/time.Minute), "minute")
}
