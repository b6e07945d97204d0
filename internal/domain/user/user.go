package user

import "context"

// User holds account identity. Email is unique across the directory.
type User struct {
	ID    int64
	Name  string
	Email string
}

// Repository defines the persistence contract for users.
type Repository interface {
	// Save persists a new user and assigns its identifier. A duplicate email
	// yields a ConflictError.
	Save(ctx context.Context, u *User) error

	// Update persists changes to an existing user. A duplicate email yields
	// a ConflictError.
	Update(ctx context.Context, u *User) error

	// FindByID retrieves a user by its identifier.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindAll retrieves every user ordered by id.
	FindAll(ctx context.Context) ([]*User, error)

	// Delete removes a user by its identifier.
	Delete(ctx context.Context, id int64) error
}
