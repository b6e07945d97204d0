package booking

import (
	"context"
	"time"

	"github.com/shareloop/service-share/internal/domain"
)

// Repository defines the persistence contract for bookings. Listing queries
// take the caller's wall-clock instant so the time-relative classification is
// computed in the store at query time.
type Repository interface {
	// Save persists a new booking and assigns its identifier.
	Save(ctx context.Context, b *Booking) error

	// Update persists a status change to an existing booking.
	Update(ctx context.Context, b *Booking) error

	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// CountByBooker returns the unfiltered number of bookings made by a user.
	CountByBooker(ctx context.Context, bookerID int64) (int64, error)

	// CountByOwner returns the unfiltered number of bookings on items owned
	// by a user.
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)

	// FindByBooker retrieves bookings made by a user, filtered by state
	// classification at instant now, ordered by start descending.
	FindByBooker(ctx context.Context, bookerID int64, state State, now time.Time, page domain.Page) ([]*Booking, error)

	// FindByOwner retrieves bookings on items owned by a user, filtered by
	// state classification at instant now, ordered by start descending.
	FindByOwner(ctx context.Context, ownerID int64, state State, now time.Time, page domain.Page) ([]*Booking, error)

	// FindLastFinishedForItem returns the most recent APPROVED booking of the
	// item whose interval ended before now, or nil if there is none.
	FindLastFinishedForItem(ctx context.Context, itemID int64, now time.Time) (*Booking, error)

	// FindLastUnfinishedForItem returns the APPROVED booking of the item with
	// the latest end still after now, or nil if there is none.
	FindLastUnfinishedForItem(ctx context.Context, itemID int64, now time.Time) (*Booking, error)

	// FindNextForItem returns the earliest APPROVED booking of the item
	// starting after now, or nil if there is none.
	FindNextForItem(ctx context.Context, itemID int64, now time.Time) (*Booking, error)

	// FindApprovedForItems retrieves all APPROVED bookings for the given
	// items, ordered by start descending.
	FindApprovedForItems(ctx context.Context, itemIDs []int64) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page domain.Page) ([]*Booking, int64, error)

	// FindAll retrieves every booking ordered by id (export).
	FindAll(ctx context.Context) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
