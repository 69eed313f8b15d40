package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"usertemplate/backend/internal/database"
	"usertemplate/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return &gormUserRepository{db: s.db}
}

func (s *GormStore) ResetTokens() ResetTokenRepository {
	return &gormResetTokenRepository{db: s.db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Reset(ctx context.Context) error {
	return database.Rebuild(s.db.WithContext(ctx))
}

func (s *GormStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

type gormUserRepository struct {
	db *gorm.DB
}

func (r *gormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *gormUserRepository) Page(ctx context.Context, req PageRequest) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []models.User{}
	if total == 0 {
		return users, 0, nil
	}

	order := clause.OrderByColumn{Column: clause.Column{Name: string(ParseSortField(string(req.OrderBy)))}, Desc: req.Desc}
	query := r.db.WithContext(ctx).Order(order)
	if order.Column.Name != string(SortByID) {
		// stable ordering across pages when the sort column has duplicates
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	if err := query.Offset(req.Offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to page users: %w", err)
	}
	return users, total, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) EmailTakenByOther(ctx context.Context, email string, excludingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, excludingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email usage: %w", err)
	}
	return count > 0, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormUserRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete user %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormUserRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("updated_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to lock user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormResetTokenRepository struct {
	db *gorm.DB
}

func (r *gormResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}
	return nil
}

func (r *gormResetTokenRepository) ExpireValidForEmail(ctx context.Context, email string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("email = ? AND expires_at > ?", email, now).
		UpdateColumn("expires_at", now)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormResetTokenRepository) FindValid(ctx context.Context, email, token string, now time.Time) (*models.PasswordResetToken, error) {
	var prt models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("email = ? AND token = ? AND expires_at > ?", email, token, now).
		First(&prt).Error
	if err != nil {
		return nil, translate(err)
	}
	return &prt, nil
}

func (r *gormResetTokenRepository) Expire(ctx context.Context, token *models.PasswordResetToken, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND expires_at = ?", token.ID, token.ExpiresAt).
		UpdateColumn("expires_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to expire reset token %d: %w", token.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	token.ExpiresAt = at
	return nil
}

func (r *gormResetTokenRepository) ListValid(ctx context.Context, now time.Time) ([]models.PasswordResetToken, error) {
	var tokens []models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("expires_at > ?", now).Order("id asc").Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list reset tokens: %w", err)
	}
	return tokens, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
