package models

import "time"

// PasswordResetToken is a single-use credential proving control of an email
// address. A token is valid while ExpiresAt lies in the future; tokens are
// expired in place and never deleted.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:255;not null;index"`
	Token     string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// IsValid reports whether the token can still be used at instant now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
