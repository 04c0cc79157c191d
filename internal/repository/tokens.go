package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/model"
)

type TokenRepository interface {
	Insert(ctx context.Context, token *model.Token) error
	// FindUser resolves a plaintext bearer token to its user, requiring a
	// matching scope and an unexpired token. Missing, mismatched and
	// expired tokens all surface as gorm.ErrRecordNotFound.
	FindUser(ctx context.Context, scope, plaintext string, now time.Time) (*model.User, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID, scope string) error
}

type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Insert(ctx context.Context, token *model.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *GormTokenRepository) FindUser(ctx context.Context, scope, plaintext string, now time.Time) (*model.User, error) {
	var token model.Token
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Permissions").
		First(&token, "hash = ? AND scope = ? AND expiry > ?", model.TokenHash(plaintext), scope, now).
		Error
	if err != nil {
		return nil, err
	}
	return &token.User, nil
}

func (r *GormTokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID, scope string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND scope = ?", userID, scope).
		Delete(&model.Token{}).Error
}
