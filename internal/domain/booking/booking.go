package booking

import (
	"time"

	"github.com/shareloop/service-share/internal/domain"
)

// Booking is the aggregate root for one reservation of an item by a user
// over a time interval. Only {status, start, end} are authoritative for the
// time-relative classification; no derived state is stored.
type Booking struct {
	id       int64
	start    time.Time
	end      time.Time
	status   Status
	itemID   int64
	bookerID int64

	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a booking in WAITING status after validating the
// interval. The interval must be strictly ordered and must lie entirely in
// the future at creation time. Caller-supplied status is never trusted.
func NewBooking(bookerID, itemID int64, start, end time.Time) (*Booking, error) {
	if start.After(end) {
		return nil, domain.NewValidationError("booking start is after its end")
	}
	// Redundant with the ordering check, but kept as its own precondition so
	// the zero-length interval reports a distinct message.
	if start.Equal(end) {
		return nil, domain.NewValidationError("booking start equals its end")
	}
	now := time.Now().UTC()
	if start.Before(now) {
		return nil, domain.NewValidationError("booking start is in the past")
	}
	if end.Before(now) {
		return nil, domain.NewValidationError("booking end is in the past")
	}

	return &Booking{
		start:     start,
		end:       end,
		status:    StatusWaiting,
		itemID:    itemID,
		bookerID:  bookerID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(id int64, start, end time.Time, status Status, itemID, bookerID int64, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id:        id,
		start:     start,
		end:       end,
		status:    status,
		itemID:    itemID,
		bookerID:  bookerID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's identifier, assigned on first save.
func (b *Booking) ID() int64 { return b.id }

// Start returns the interval start.
func (b *Booking) Start() time.Time { return b.start }

// End returns the interval end.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current approval status.
func (b *Booking) Status() Status { return b.status }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() int64 { return b.itemID }

// BookerID returns the booking user's identifier.
func (b *Booking) BookerID() int64 { return b.bookerID }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// SetID records the identifier assigned by the store.
func (b *Booking) SetID(id int64) { b.id = id }

// Approve marks the booking APPROVED. Re-approving an APPROVED booking
// fails; approving a REJECTED one does not. Clients rely on the asymmetry.
func (b *Booking) Approve() error {
	if b.status == StatusApproved {
		return domain.NewValidationError("already approved")
	}
	b.status = StatusApproved
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reject marks the booking REJECTED. Re-rejecting a REJECTED booking fails;
// rejecting an APPROVED one does not (see Approve).
func (b *Booking) Reject() error {
	if b.status == StatusRejected {
		return domain.NewValidationError("already rejected")
	}
	b.status = StatusRejected
	b.updatedAt = time.Now().UTC()
	return nil
}
