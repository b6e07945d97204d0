package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/domain"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
)

// CreateUserRequest is the payload for registering a user.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// UpdateUserRequest is the payload for a partial user update. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserDTO is the API representation of a user.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserService implements user account use cases.
type UserService struct {
	users  userDomain.Repository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users userDomain.Repository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// CreateUser registers a new user. Duplicate emails are rejected with a
// conflict error.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	u := &userDomain.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if u.Name == "" {
		return nil, domain.NewValidationError("user name must not be empty")
	}

	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int64("user_id", u.ID))
	return toUserDTO(u), nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}

// UpdateUser applies a partial update to a user.
func (s *UserService) UpdateUser(ctx context.Context, userID int64, req UpdateUserRequest) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		u.Email = strings.TrimSpace(*req.Email)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.Int64("user_id", u.ID))
	return toUserDTO(u), nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Int64("user_id", userID))
	return nil
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = *toUserDTO(u)
	}
	return dtos, nil
}

func toUserDTO(u *userDomain.User) *UserDTO {
	return &UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}
