package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
)

// UserRepo is the gorm-backed credential store.
type UserRepo struct {
	*GormRepo
}

func NewUserRepo(g *GormRepo) *UserRepo {
	return &UserRepo{GormRepo: g}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// SetRefreshToken overwrites the stored refresh token; nil clears it.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) SwapRefreshToken(ctx context.Context, id, expected, next string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, expected).
		Update("refresh_token", next)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
