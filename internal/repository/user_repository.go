package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shareloop/service-share/internal/domain"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"not null;size:255"`
	Email string `gorm:"uniqueIndex;not null;size:320"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of the user repository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Save persists a new user. Duplicate emails yield a ConflictError.
func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	if err := r.ensureEmailFree(ctx, u.Email, 0); err != nil {
		return err
	}
	model := &UserModel{Name: u.Name, Email: u.Email}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	u.ID = model.ID
	return nil
}

// Update persists changes to an existing user. Duplicate emails yield a
// ConflictError.
func (r *GormUserRepository) Update(ctx context.Context, u *userDomain.User) error {
	if err := r.ensureEmailFree(ctx, u.Email, u.ID); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", u.ID).
		Updates(map[string]interface{}{"name": u.Name, "email": u.Email})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", u.ID)
	}
	return nil
}

// ensureEmailFree rejects an email already held by another user. The unique
// index remains the backstop for concurrent writers.
func (r *GormUserRepository) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("email = ? AND id <> ?", email, selfID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return domain.NewConflictError(fmt.Sprintf("email %s is already in use", email))
	}
	return nil
}

// FindByID retrieves a user by its identifier.
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindAll retrieves every user ordered by id.
func (r *GormUserRepository) FindAll(ctx context.Context) ([]*userDomain.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*userDomain.User, len(models))
	for i := range models {
		users[i] = toDomainUser(&models[i])
	}
	return users, nil
}

// Delete removes a user by its identifier.
func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&UserModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", id)
	}
	return nil
}

func toDomainUser(m *UserModel) *userDomain.User {
	return &userDomain.User{ID: m.ID, Name: m.Name, Email: m.Email}
}
