package seeders

import (
	"context"
	"errors"
	"fmt"

	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/services"

	"go.uber.org/zap"
)

// AccountService is what the seeders need from the user service.
type AccountService interface {
	Initialise(ctx context.Context) error
	AddUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error)
}

// DemoAccount is a well-known development login.
type DemoAccount struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// DemoAccounts are created by SeedDemoUsers. The passwords are public; never
// seed them into a reachable environment.
var DemoAccounts = []DemoAccount{
	{Name: "Admin", Email: "admin@mail.com", Password: "admin", Role: models.RoleAdmin},
	{Name: "Manager", Email: "manager@mail.com", Password: "manager", Role: models.RoleManager},
	{Name: "Guest", Email: "guest@mail.com", Password: "guest", Role: models.RoleGuest},
}

// SeedDemoUsers wipes the store and creates DemoAccounts. The service refuses
// the wipe in production, and so does this function.
func SeedDemoUsers(ctx context.Context, svc AccountService, log *zap.Logger) error {
	log = log.Named("SeedDemoUsers")
	log.Info("Seeding demo users...")

	if err := svc.Initialise(ctx); err != nil {
		log.Error("Failed to initialise store", zap.Error(err))
		return err
	}
	for _, acc := range DemoAccounts {
		if _, err := svc.AddUser(ctx, acc.Name, acc.Email, acc.Password, acc.Role); err != nil {
			log.Error("Failed to seed demo user", zap.String("email", acc.Email), zap.Error(err))
			return fmt.Errorf("seed %s: %w", acc.Email, err)
		}
	}

	log.Info("Demo users seeded", zap.Int("count", len(DemoAccounts)))
	return nil
}

// EnsureAdmin creates an admin account unless the email is already registered.
// It reports whether a new account was created.
func EnsureAdmin(ctx context.Context, svc AccountService, name, email, password string, log *zap.Logger) (bool, error) {
	_, err := svc.AddUser(ctx, name, email, password, models.RoleAdmin)
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		log.Info("Admin account already exists, skipping", zap.String("email", email))
		return false, nil
	case err != nil:
		return false, fmt.Errorf("create admin %s: %w", email, err)
	}
	log.Info("Admin account created", zap.String("email", email))
	return true, nil
}
