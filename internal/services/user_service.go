// Package services holds the account business rules: registration, profile
// edits, credential checks and the password-reset workflow.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"usertemplate/backend/internal/models"
	"usertemplate/backend/internal/paging"
	"usertemplate/backend/internal/repository"
	"usertemplate/backend/internal/security"
	"usertemplate/backend/pkg/config"
	"usertemplate/backend/pkg/metrics"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery is a raw listing request as it arrives from a client.
type PageQuery struct {
	Page      int
	Size      int
	OrderBy   string
	Direction string
}

// UserUpdate carries the editable fields of an account. A nil Password leaves
// the stored hash untouched; otherwise it is the new plaintext.
type UserUpdate struct {
	ID       uint
	Name     string
	Email    string
	Role     models.UserRole
	Password *string
}

type UserService struct {
	store       repository.Store
	hasher      security.Hasher
	logger      *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	resetTTL    time.Duration
	newToken    func() string
	environment string

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(store repository.Store, hasher security.Hasher, opts ...Option) *UserService {
	s := &UserService{store: store, hasher: hasher}
	defaultOptions(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) clock() time.Time {
	return s.now().UTC()
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// GetUsersPage returns one page of users. Out-of-range inputs are clamped:
// page to 1, size to DefaultPageSize (or MaxPageSize when too large).
func (s *UserService) GetUsersPage(ctx context.Context, q PageQuery) (*models.Paged[models.User], error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.Size
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	orderBy := repository.ParseSortField(q.OrderBy)
	direction := paging.NormalizeDirection(q.Direction)

	rows, total, err := s.store.Users().Page(ctx, repository.PageRequest{
		Offset:  (page - 1) * size,
		Limit:   size,
		OrderBy: orderBy,
		Desc:    direction == paging.DirectionDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get users page: %w", err)
	}

	return &models.Paged[models.User]{
		Data:        rows,
		TotalRows:   total,
		CurrentPage: page,
		PageSize:    size,
		OrderBy:     string(orderBy),
		Direction:   direction,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get user")
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "failed to get user by email")
	}
	return user, nil
}

// IsEmailAvailable reports whether email is free for the user excludingID.
// Pass 0 when checking for a brand new account.
func (s *UserService) IsEmailAvailable(ctx context.Context, email string, excludingID uint) (bool, error) {
	taken, err := s.store.Users().EmailTakenByOther(ctx, email, excludingID)
	if err != nil {
		return false, fmt.Errorf("failed to check email availability: %w", err)
	}
	return !taken, nil
}

func (s *UserService) AddUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	available, err := s.IsEmailAvailable(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if taken, checkErr := s.store.Users().EmailTakenByOther(ctx, email, 0); checkErr == nil && taken {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, upd UserUpdate) (*models.User, error) {
	if !upd.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", upd.Role)
	}
	user, err := s.GetUser(ctx, upd.ID)
	if err != nil {
		return nil, err
	}

	if upd.Email != user.Email {
		available, err := s.IsEmailAvailable(ctx, upd.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, ErrEmailTaken
		}
	}

	user.Name = strings.TrimSpace(upd.Name)
	user.Email = upd.Email
	user.Role = upd.Role
	if upd.Password != nil {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword changes a user's password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, id uint, oldPassword, newPassword string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(user.PasswordHash, oldPassword) {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user and reports whether a row existed.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.store.Users().Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("User deleted", zap.Uint("user_id", id))
	}
	return deleted, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.countAuth("error")
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// burn the same hashing time as a real comparison
		s.hasher.Verify(s.dummy(), password)
		s.countAuth("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.countAuth("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	s.countAuth("success")
	return user, nil
}

// Initialise drops and recreates every table. It is refused in production.
func (s *UserService) Initialise(ctx context.Context) error {
	if s.environment == config.EnvProduction {
		return ErrInitialiseForbidden
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to initialise store: %w", err)
	}
	s.logger.Warn("Store initialised, all accounts removed")
	return nil
}

func (s *UserService) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("Failed to upgrade password hash", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hash
	if err := s.store.Users().Save(ctx, user); err != nil {
		s.logger.Warn("Failed to store upgraded password hash", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	s.logger.Info("Password hash upgraded", zap.Uint("user_id", user.ID))
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.Warn("Failed to prepare dummy hash", zap.Error(err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *UserService) countAuth(result string) {
	if s.metrics != nil {
		s.metrics.AuthAttempts.WithLabelValues(result).Inc()
	}
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
