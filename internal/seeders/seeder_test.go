package seeders

import (
	"context"
	"testing"

	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/repository"
	"usertemplate/backend/internal/security"
	"usertemplate/backend/internal/services"
	"usertemplate/backend/internal/testhelpers"
	"usertemplate/backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T, env string) *services.UserService {
	t.Helper()
	store := repository.NewGormStore(testhelpers.SetupSQLiteDB(t))
	hasher := &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	return services.NewUserService(store, hasher, services.WithEnvironment(env))
}

func TestSeedDemoUsers(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, config.EnvDevelopment)
	_, err := svc.AddUser(ctx, "Leftover", "leftover@mail.com", "x", models.RoleGuest)
	require.NoError(t, err)

	require.NoError(t, SeedDemoUsers(ctx, svc, zap.NewNop()))

	users, err := svc.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3, "store is wiped before seeding")

	for _, acc := range DemoAccounts {
		u, err := svc.Authenticate(ctx, acc.Email, acc.Password)
		require.NoError(t, err, acc.Email)
		assert.Equal(t, acc.Role, u.Role)
	}

	require.NoError(t, SeedDemoUsers(ctx, svc, zap.NewNop()), "reseeding is repeatable")
}

func TestSeedDemoUsers_RefusedInProduction(t *testing.T) {
	svc := newService(t, config.EnvProduction)
	err := SeedDemoUsers(context.Background(), svc, zap.NewNop())
	assert.ErrorIs(t, err, services.ErrInitialiseForbidden)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, config.EnvProduction)

	created, err := EnsureAdmin(ctx, svc, "Root", "root@example.com", "correct horse", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(ctx, svc, "Root", "root@example.com", "other", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created)

	u, err := svc.Authenticate(ctx, "root@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}
