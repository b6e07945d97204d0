package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shareloop/service-share/internal/domain"
	bookingDomain "github.com/shareloop/service-share/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table. The table stores
// only {status, start, end} plus references; the time-relative state
// classification is computed in queries, never persisted.
type BookingModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	StartAt   time.Time `gorm:"not null;index"`
	EndAt     time.Time `gorm:"not null;index"`
	Status    string    `gorm:"not null;size:20;index"`
	ItemID    int64     `gorm:"not null;index"`
	BookerID  int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save persists a new booking and backfills the assigned identifier.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	b.SetID(model.ID)
	return nil
}

// Update persists a status change to an existing booking.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ?", b.ID()).
		Updates(map[string]interface{}{
			"status":     b.Status().String(),
			"updated_at": b.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", b.ID())
	}
	return nil
}

// FindByID retrieves a booking by its identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// CountByBooker returns the unfiltered number of bookings made by a user.
func (r *GormBookingRepository) CountByBooker(ctx context.Context, bookerID int64) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("booker_id = ?", bookerID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count booker bookings: %w", err)
	}
	return total, nil
}

// CountByOwner returns the unfiltered number of bookings on items owned by a
// user.
func (r *GormBookingRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}
	return total, nil
}

// FindByBooker retrieves a user's bookings filtered by state classification
// at instant now, ordered by start descending.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID int64, state bookingDomain.State, now time.Time, page domain.Page) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).Where("bookings.booker_id = ?", bookerID)
	return r.findFiltered(q, state, now, page)
}

// FindByOwner retrieves bookings on a user's items filtered by state
// classification at instant now, ordered by start descending.
func (r *GormBookingRepository) FindByOwner(ctx context.Context, ownerID int64, state bookingDomain.State, now time.Time, page domain.Page) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID)
	return r.findFiltered(q, state, now, page)
}

func (r *GormBookingRepository) findFiltered(q *gorm.DB, state bookingDomain.State, now time.Time, page domain.Page) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := applyState(q, state, now).
		Order("bookings.start_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// applyState translates a state classification into query predicates over
// the authoritative {status, start, end} columns.
func applyState(q *gorm.DB, state bookingDomain.State, now time.Time) *gorm.DB {
	switch state {
	case bookingDomain.StateCurrent:
		return q.Where("bookings.start_at <= ? AND bookings.end_at >= ?", now, now)
	case bookingDomain.StatePast:
		return q.Where("bookings.end_at < ? AND bookings.status = ?", now, bookingDomain.StatusApproved.String())
	case bookingDomain.StateFuture:
		return q.Where("bookings.start_at > ?", now)
	case bookingDomain.StateWaiting:
		return q.Where("bookings.status = ?", bookingDomain.StatusWaiting.String())
	case bookingDomain.StateRejected:
		return q.Where("bookings.status = ?", bookingDomain.StatusRejected.String())
	default: // StateAll
		return q
	}
}

// FindLastFinishedForItem returns the most recent APPROVED booking of the
// item that ended before now, or nil if there is none.
func (r *GormBookingRepository) FindLastFinishedForItem(ctx context.Context, itemID int64, now time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, "item_id = ? AND end_at < ? AND status = ?", "end_at DESC", itemID, now, bookingDomain.StatusApproved.String())
}

// FindLastUnfinishedForItem returns the APPROVED booking of the item with
// the latest end still after now, or nil if there is none.
func (r *GormBookingRepository) FindLastUnfinishedForItem(ctx context.Context, itemID int64, now time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, "item_id = ? AND end_at > ? AND status = ?", "end_at DESC", itemID, now, bookingDomain.StatusApproved.String())
}

// FindNextForItem returns the earliest APPROVED booking of the item starting
// after now, or nil if there is none.
func (r *GormBookingRepository) FindNextForItem(ctx context.Context, itemID int64, now time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(ctx, "item_id = ? AND start_at > ? AND status = ?", "start_at ASC", itemID, now, bookingDomain.StatusApproved.String())
}

func (r *GormBookingRepository) findOne(ctx context.Context, where, order string, args ...interface{}) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).Where(where, args...).Order(order).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindApprovedForItems retrieves all APPROVED bookings for the given items,
// ordered by start descending.
func (r *GormBookingRepository) FindApprovedForItems(ctx context.Context, itemIDs []int64) ([]*bookingDomain.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ? AND status = ?", itemIDs, bookingDomain.StatusApproved.String()).
		Order("start_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page domain.Page) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Order("start_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models), total, nil
}

// FindAll retrieves every booking ordered by id (export).
func (r *GormBookingRepository) FindAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        b.ID(),
		StartAt:   b.Start(),
		EndAt:     b.End(),
		Status:    b.Status().String(),
		ItemID:    b.ItemID(),
		BookerID:  b.BookerID(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		m.ID,
		m.StartAt,
		m.EndAt,
		bookingDomain.Status(m.Status),
		m.ItemID,
		m.BookerID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
