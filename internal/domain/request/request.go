package request

import (
	"context"
	"time"

	"github.com/shareloop/service-share/internal/domain"
)

// ItemRequest is a user's ask for an item that does not yet exist in the
// catalog. Owners may later list items answering it.
type ItemRequest struct {
	ID          int64
	Description string
	RequesterID int64
	Created     time.Time
}

// Repository defines the persistence contract for item requests.
type Repository interface {
	// Save persists a new request and assigns its identifier.
	Save(ctx context.Context, r *ItemRequest) error

	// FindByID retrieves a request by its identifier.
	FindByID(ctx context.Context, id int64) (*ItemRequest, error)

	// FindByRequester retrieves a user's own requests, newest first.
	FindByRequester(ctx context.Context, requesterID int64) ([]*ItemRequest, error)

	// FindAllExcept retrieves other users' requests, newest first.
	FindAllExcept(ctx context.Context, requesterID int64, page domain.Page) ([]*ItemRequest, error)
}
