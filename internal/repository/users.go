package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Grant attaches permission codes to a user, creating Permission rows
	// as needed.
	Grant(ctx context.Context, user *model.User, codes ...string) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "id = ?", id).Error; err != nil {

		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "username = ?", username).Error; err != nil {

		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Grant(ctx context.Context, user *model.User, codes ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms := make([]model.Permission, 0, len(codes))
		for _, code := range codes {
			var p model.Permission
			if err := tx.Where(model.Permission{Code: code}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
			perms = append(perms, p)
		}
		return tx.Model(user).Association("Permissions").Append(perms)
	})
}
