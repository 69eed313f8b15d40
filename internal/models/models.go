package models

import (
	"strings"
	"time"
)

// UserRole controls the authorization scope of an account.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleGuest   UserRole = "guest"
)

// Roles lists every valid role, in decreasing order of privilege.
var Roles = []UserRole{RoleAdmin, RoleManager, RoleGuest}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole maps a case-insensitive role name to a UserRole.
func ParseRole(s string) (UserRole, bool) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'guest'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasOneOfRoles reports whether the user holds any of the given roles.
func (u *User) HasOneOfRoles(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// AllModels is the list of tables owned by the application, in creation order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&PasswordResetToken{},
	}
}
