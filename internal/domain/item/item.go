package item

import (
	"context"

	"github.com/shareloop/service-share/internal/domain"
)

// Item is a catalog entry listed by an owner. Available gates whether the
// item can be booked at all.
type Item struct {
	ID          int64
	Name        string
	Description string
	Available   bool
	OwnerID     int64
	RequestID   *int64
}

// Repository defines the persistence contract for catalog items.
type Repository interface {
	// Save persists a new item and assigns its identifier.
	Save(ctx context.Context, i *Item) error

	// Update persists changes to an existing item.
	Update(ctx context.Context, i *Item) error

	// FindByID retrieves an item by its identifier.
	FindByID(ctx context.Context, id int64) (*Item, error)

	// FindByIDs retrieves the items with the given identifiers.
	FindByIDs(ctx context.Context, ids []int64) ([]*Item, error)

	// FindByOwner retrieves a page of items listed by a user, ordered by id.
	FindByOwner(ctx context.Context, ownerID int64, page domain.Page) ([]*Item, error)

	// Search retrieves available items whose name or description contains
	// text, case-insensitively.
	Search(ctx context.Context, text string, page domain.Page) ([]*Item, error)

	// FindByRequestIDs retrieves items created in answer to the given item
	// requests.
	FindByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error)
}
