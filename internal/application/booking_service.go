package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/domain"
	bookingDomain "github.com/shareloop/service-share/internal/domain/booking"
	itemDomain "github.com/shareloop/service-share/internal/domain/item"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
	"github.com/shareloop/service-share/internal/events"
	"github.com/shareloop/service-share/internal/metrics"
)

// EventPublisher is the outbound messaging seam used by application services.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event events.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking. Any
// status supplied on the wire is ignored; bookings always start WAITING.
type CreateBookingRequest struct {
	ItemID int64     `json:"itemId" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// ItemSummary is the minimal item projection nested in booking responses.
type ItemSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookerSummary is the minimal booker projection nested in booking responses.
type BookerSummary struct {
	ID int64 `json:"id"`
}

// BookingDTO is the response representation of a booking. It nests only the
// item and booker summaries, never the full records.
type BookingDTO struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status string        `json:"status"`
	Item   ItemSummary   `json:"item"`
	Booker BookerSummary `json:"booker"`
}

// BookingService is the application service for the booking lifecycle: it
// guards creation preconditions, drives the approval state machine, and
// serves role- and time-partitioned listings.
type BookingService struct {
	bookings bookingDomain.Repository
	users    userDomain.Repository
	items    itemDomain.Repository
	producer EventPublisher
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService. producer and m may be nil
// when messaging or metrics are disabled.
func NewBookingService(
	bookings bookingDomain.Repository,
	users userDomain.Repository,
	items itemDomain.Repository,
	producer EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		items:    items,
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// CreateBooking validates a booking request against the business invariants
// and persists it in WAITING status. Precondition failures abort before the
// single write, so creation is all-or-nothing.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, req CreateBookingRequest) (*BookingDTO, error) {
	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	itm, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !itm.Available {
		return nil, domain.NewValidationError("item not available")
	}
	// NotFound, not Forbidden: the owner path must not reveal that the item
	// exists to a caller who cannot book it.
	if booker.ID == itm.OwnerID {
		return nil, domain.NewNotFoundMessage("owner cannot book own item")
	}

	b, err := bookingDomain.NewBooking(booker.ID, itm.ID, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", b.ID()),
		zap.Int64("item_id", itm.ID),
		zap.Int64("booker_id", booker.ID),
	)
	if s.metrics != nil {
		s.metrics.BookingsCreated.WithLabelValues(itm.Name).Inc()
	}

	s.publishRequested(ctx, b, itm)

	result := toBookingDTO(b, itm)
	return &result, nil
}

// SetApproval applies the owner's approve/reject decision. Only re-approving
// an APPROVED booking and re-rejecting a REJECTED one are refused; the
// inverse flips are allowed, matching the historical contract.
func (s *BookingService) SetApproval(ctx context.Context, bookingID, actingUserID int64, approved bool) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	itm, err := s.items.FindByID(ctx, b.ItemID())
	if err != nil {
		return nil, err
	}
	if itm.OwnerID != actingUserID {
		return nil, domain.NewNotFoundMessage("user is not the owner of the booked item")
	}

	if approved {
		err = b.Approve()
	} else {
		err = b.Reject()
	}
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking decided",
		zap.Int64("booking_id", b.ID()),
		zap.String("status", b.Status().String()),
	)
	if s.metrics != nil {
		s.metrics.BookingDecisions.WithLabelValues(b.Status().String()).Inc()
	}

	s.publishDecision(ctx, b, itm)

	result := toBookingDTO(b, itm)
	return &result, nil
}

// GetBooking retrieves one booking for its booker or the item's owner. Any
// other requester gets NotFound, hiding the booking's existence.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID int64) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}
	itm, err := s.items.FindByID(ctx, b.ItemID())
	if err != nil {
		return nil, err
	}
	if requesterID != b.BookerID() && requesterID != itm.OwnerID {
		return nil, domain.NewNotFoundError("Booking", bookingID)
	}

	result := toBookingDTO(b, itm)
	return &result, nil
}

// ListByBooker retrieves a user's bookings filtered by state token. The user
// must exist and have at least one booking in any state; an empty filtered
// page is still a successful empty result.
func (s *BookingService) ListByBooker(ctx context.Context, userID int64, stateToken string, from, size int) ([]BookingDTO, error) {
	state, page, err := s.prepareListing(ctx, userID, stateToken, from, size)
	if err != nil {
		return nil, err
	}

	total, err := s.bookings.CountByBooker(ctx, userID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, domain.NewNotFoundMessage("no bookings found")
	}

	bookings, err := s.bookings.FindByBooker(ctx, userID, state, time.Now().UTC(), page)
	if err != nil {
		return nil, err
	}
	return s.assembleDTOs(ctx, bookings)
}

// ListByOwner retrieves the bookings on a user's items filtered by state
// token, with the same pre-checks as ListByBooker.
func (s *BookingService) ListByOwner(ctx context.Context, userID int64, stateToken string, from, size int) ([]BookingDTO, error) {
	state, page, err := s.prepareListing(ctx, userID, stateToken, from, size)
	if err != nil {
		return nil, err
	}

	total, err := s.bookings.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, domain.NewNotFoundMessage("no bookings found")
	}

	bookings, err := s.bookings.FindByOwner(ctx, userID, state, time.Now().UTC(), page)
	if err != nil {
		return nil, err
	}
	return s.assembleDTOs(ctx, bookings)
}

// prepareListing runs the shared listing preconditions: the user must exist,
// the state token must parse, and the paging parameters must be sane.
func (s *BookingService) prepareListing(ctx context.Context, userID int64, stateToken string, from, size int) (bookingDomain.State, domain.Page, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return "", domain.Page{}, err
	}
	state, err := bookingDomain.ParseState(stateToken)
	if err != nil {
		return "", domain.Page{}, err
	}
	page, err := domain.NewPage(from, size)
	if err != nil {
		return "", domain.Page{}, err
	}
	return state, page, nil
}

func (s *BookingService) assembleDTOs(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	itemsByID, err := s.itemSummaries(ctx, bookings)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = BookingDTO{
			ID:     b.ID(),
			Start:  b.Start(),
			End:    b.End(),
			Status: b.Status().String(),
			Item:   itemsByID[b.ItemID()],
			Booker: BookerSummary{ID: b.BookerID()},
		}
	}
	return dtos, nil
}

func (s *BookingService) itemSummaries(ctx context.Context, bookings []*bookingDomain.Booking) (map[int64]ItemSummary, error) {
	seen := make(map[int64]struct{}, len(bookings))
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.ItemID()]; ok {
			continue
		}
		seen[b.ItemID()] = struct{}{}
		ids = append(ids, b.ItemID())
	}

	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries := make(map[int64]ItemSummary, len(items))
	for _, itm := range items {
		summaries[itm.ID] = ItemSummary{ID: itm.ID, Name: itm.Name}
	}
	return summaries, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin surface.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, from, size int) ([]BookingDTO, int64, error) {
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, 0, err
	}
	bookings, total, err := s.bookings.ListAll(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	dtos, err := s.assembleDTOs(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func toBookingDTO(b *bookingDomain.Booking, itm *itemDomain.Item) BookingDTO {
	return BookingDTO{
		ID:     b.ID(),
		Start:  b.Start(),
		End:    b.End(),
		Status: b.Status().String(),
		Item:   ItemSummary{ID: itm.ID, Name: itm.Name},
		Booker: BookerSummary{ID: b.BookerID()},
	}
}

func (s *BookingService) publishRequested(ctx context.Context, b *bookingDomain.Booking, itm *itemDomain.Item) {
	evt := events.BookingRequestedEvent{
		BookingID:  b.ID(),
		ItemID:     itm.ID,
		BookerID:   b.BookerID(),
		OwnerID:    itm.OwnerID,
		Start:      b.Start(),
		End:        b.End(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingRequested, b.ID(), evt)
}

func (s *BookingService) publishDecision(ctx context.Context, b *bookingDomain.Booking, itm *itemDomain.Item) {
	eventType := events.BookingRejected
	if b.Status() == bookingDomain.StatusApproved {
		eventType = events.BookingApproved
	}
	evt := events.BookingDecidedEvent{
		BookingID:  b.ID(),
		ItemID:     itm.ID,
		BookerID:   b.BookerID(),
		OwnerID:    itm.OwnerID,
		Status:     b.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, eventType, b.ID(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, bookingID int64, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := events.NewCloudEvent("service-share", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	key := fmt.Sprintf("%d", bookingID)
	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
