// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errDuplicateUser is reported when a unique username or email is taken.
var errDuplicateUser = common.ErrConflict.WithMessage("Username or email already exists!")

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// NormalizeEmail is applied before every write and lookup by email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user record into the database. Uniqueness is enforced
// by the unique indexes, not by a prior lookup.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithMessage("User not found!")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithMessage("User not found!")
		}
		return nil, err
	}
	return &userModel, nil
}

// Update applies the patch and returns the stored user after the write.
func (r *gormRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*User, error) {
	if patch.Email != nil {
		e := NormalizeEmail(*patch.Email)
		patch.Email = &e
	}
	updates := patch.columns()
	updates["updated_at"] = time.Now().UTC()

	var updated User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return errDuplicateUser
			}
			return fmt.Errorf("failed to update user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound.WithMessage("User not found!")
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the user record.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithMessage("User not found!")
	}
	return nil
}
