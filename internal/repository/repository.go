package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"usertemplate/backend/internal/models"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

// SortField is the closed set of columns a user listing may be ordered by.
type SortField string

const (
	SortByID    SortField = "id"
	SortByName  SortField = "name"
	SortByEmail SortField = "email"
)

// ParseSortField maps a request parameter to a SortField, falling back to id.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByID, SortByName, SortByEmail:
		return f
	default:
		return SortByID
	}
}

// PageRequest selects a window of an ordered listing.
type PageRequest struct {
	Offset  int
	Limit   int
	OrderBy SortField
	Desc    bool
}

// UserRepository persists user accounts.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Page(ctx context.Context, req PageRequest) ([]models.User, int64, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// EmailTakenByOther reports whether a user other than excludingID owns
	// email. excludingID 0 matches no user.
	EmailTakenByOther(ctx context.Context, email string, excludingID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) (bool, error)
	// Touch bumps updated_at, taking the row lock for the rest of the transaction.
	Touch(ctx context.Context, id uint, at time.Time) error
}

// ResetTokenRepository persists password-reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	ExpireValidForEmail(ctx context.Context, email string, now time.Time) (int64, error)
	FindValid(ctx context.Context, email, token string, now time.Time) (*models.PasswordResetToken, error)
	// Expire sets token's expiry to at, provided the stored expiry still equals
	// token.ExpiresAt as read by FindValid. A token consumed concurrently
	// yields ErrNotFound.
	Expire(ctx context.Context, token *models.PasswordResetToken, at time.Time) error
	ListValid(ctx context.Context, now time.Time) ([]models.PasswordResetToken, error)
}

// Store groups the repositories and the unit-of-work boundary.
type Store interface {
	Users() UserRepository
	ResetTokens() ResetTokenRepository
	// Transaction runs fn against a Store bound to a single transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// Reset drops and recreates every application table.
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}
