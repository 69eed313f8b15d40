package services

import (
	"context"
	"errors"
	"fmt"

	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/repository"

	"go.uber.org/zap"
)

// ForgotPassword issues a fresh reset token for email and expires every token
// issued before it. The user row is locked first so concurrent requests for
// the same address serialize and at most one token stays valid.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countResetRequest("unknown_email")
			return "", ErrNoAccountForReset
		}
		s.countResetRequest("error")
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	now := s.clock()
	token := &models.PasswordResetToken{
		Email:     user.Email,
		Token:     s.newToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.resetTTL),
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().Touch(ctx, user.ID, now); err != nil {
			return err
		}
		expired, err := tx.ResetTokens().ExpireValidForEmail(ctx, user.Email, now)
		if err != nil {
			return err
		}
		if expired > 0 {
			s.logger.Debug("Superseded previous reset tokens", zap.Uint("user_id", user.ID), zap.Int64("count", expired))
		}
		return tx.ResetTokens().Create(ctx, token)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// deleted between lookup and lock
			s.countResetRequest("unknown_email")
			return "", ErrNoAccountForReset
		}
		s.countResetRequest("error")
		return "", fmt.Errorf("failed to issue reset token: %w", err)
	}

	s.countResetRequest("issued")
	s.logger.Info("Password reset token issued", zap.Uint("user_id", user.ID))
	return token.Token, nil
}

// ResetPassword consumes a valid token for email and sets the new password.
// Every failure to match a live token yields ErrInvalidResetRequest.
func (s *UserService) ResetPassword(ctx context.Context, email, token, newPassword string) (*models.User, error) {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	now := s.clock()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		u, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		prt, err := tx.ResetTokens().FindValid(ctx, email, token, now)
		if err != nil {
			return err
		}
		if err := tx.ResetTokens().Expire(ctx, prt, now); err != nil {
			return err
		}
		u.PasswordHash = hash
		if err := tx.Users().Save(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countReset("invalid")
			return nil, ErrInvalidResetRequest
		}
		s.countReset("error")
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	s.countReset("success")
	s.logger.Info("Password reset completed", zap.Uint("user_id", user.ID))
	return user, nil
}

// GetValidPasswordResetTokens lists the tokens that are still usable.
func (s *UserService) GetValidPasswordResetTokens(ctx context.Context) ([]string, error) {
	tokens, err := s.store.ResetTokens().ListValid(ctx, s.clock())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Token)
	}
	return out, nil
}

func (s *UserService) countResetRequest(result string) {
	if s.metrics != nil {
		s.metrics.PasswordResetRequests.WithLabelValues(result).Inc()
	}
}

func (s *UserService) countReset(result string) {
	if s.metrics != nil {
		s.metrics.PasswordResets.WithLabelValues(result).Inc()
	}
}
