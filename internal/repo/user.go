package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserAlreadyExist = errors.New("user already exists")
)

// UserRepo is the user-store collaborator of the auth core: lookup by subject
// for credential checks and claim building, plus the mechanical mutations
// around registration and account management.
type UserRepo struct {
	DB *gorm.DB
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) CreateIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) SetActive(ctx context.Context, email string, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
