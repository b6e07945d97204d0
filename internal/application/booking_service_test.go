package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/domain"
	bookingDomain "github.com/shareloop/service-share/internal/domain/booking"
	itemDomain "github.com/shareloop/service-share/internal/domain/item"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
	"github.com/shareloop/service-share/internal/events"
)

type bookingFixture struct {
	service  *BookingService
	users    *fakeUserRepo
	items    *fakeItemRepo
	bookings *fakeBookingRepo
	events   *fakePublisher

	owner  *userDomain.User
	booker *userDomain.User
	item   *itemDomain.Item
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	ctx := context.Background()

	users := newFakeUserRepo()
	items := newFakeItemRepo()
	bookings := newFakeBookingRepo(items)
	publisher := &fakePublisher{}

	owner := &userDomain.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, users.Save(ctx, owner))
	booker := &userDomain.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, users.Save(ctx, booker))

	item := &itemDomain.Item{Name: "Cordless Drill", Description: "18V drill", Available: true, OwnerID: owner.ID}
	require.NoError(t, items.Save(ctx, item))

	return &bookingFixture{
		service:  NewBookingService(bookings, users, items, publisher, nil, zap.NewNop()),
		users:    users,
		items:    items,
		bookings: bookings,
		events:   publisher,
		owner:    owner,
		booker:   booker,
		item:     item,
	}
}

func (f *bookingFixture) createBooking(t *testing.T, startIn, duration time.Duration) *BookingDTO {
	t.Helper()
	start := time.Now().UTC().Add(startIn)
	dto, err := f.service.CreateBooking(context.Background(), f.booker.ID, CreateBookingRequest{
		ItemID: f.item.ID,
		Start:  start,
		End:    start.Add(duration),
	})
	require.NoError(t, err)
	return dto
}

func TestCreateBooking_StartsWaiting(t *testing.T) {
	f := newBookingFixture(t)

	dto := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	assert.Equal(t, "WAITING", dto.Status)
	assert.Equal(t, f.item.ID, dto.Item.ID)
	assert.Equal(t, "Cordless Drill", dto.Item.Name)
	assert.Equal(t, f.booker.ID, dto.Booker.ID)
	assert.NotZero(t, dto.ID)

	require.Len(t, f.events.published, 1)
	assert.Equal(t, events.TopicBookingEvents, f.events.published[0].Topic)
	assert.Equal(t, events.BookingRequested, f.events.published[0].Event.Type)

	var payload events.BookingRequestedEvent
	require.NoError(t, f.events.published[0].Event.ParseData(&payload))
	assert.Equal(t, dto.ID, payload.BookingID)
	assert.Equal(t, f.owner.ID, payload.OwnerID)
}

func TestCreateBooking_OwnItemIsHidden(t *testing.T) {
	f := newBookingFixture(t)
	start := time.Now().UTC().Add(time.Hour)

	_, err := f.service.CreateBooking(context.Background(), f.owner.ID, CreateBookingRequest{
		ItemID: f.item.ID,
		Start:  start,
		End:    start.Add(time.Hour),
	})

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err), "owner booking own item must read as not found, got %v", err)
}

func TestCreateBooking_UnavailableItem(t *testing.T) {
	f := newBookingFixture(t)
	f.item.Available = false
	require.NoError(t, f.items.Update(context.Background(), f.item))
	start := time.Now().UTC().Add(time.Hour)

	_, err := f.service.CreateBooking(context.Background(), f.booker.ID, CreateBookingRequest{
		ItemID: f.item.ID,
		Start:  start,
		End:    start.Add(time.Hour),
	})

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "item not available", err.Error())
}

func TestCreateBooking_ZeroLengthInterval(t *testing.T) {
	f := newBookingFixture(t)
	start := time.Now().UTC().Add(time.Hour)

	_, err := f.service.CreateBooking(context.Background(), f.booker.ID, CreateBookingRequest{
		ItemID: f.item.ID,
		Start:  start,
		End:    start,
	})

	require.Error(t, err)
	assert.Equal(t, "booking start equals its end", err.Error())
	assert.Empty(t, f.events.published)
}

func TestCreateBooking_UnknownUserAndItem(t *testing.T) {
	f := newBookingFixture(t)
	start := time.Now().UTC().Add(time.Hour)
	req := CreateBookingRequest{ItemID: f.item.ID, Start: start, End: start.Add(time.Hour)}

	_, err := f.service.CreateBooking(context.Background(), 999, req)
	assert.True(t, domain.IsNotFound(err))

	req.ItemID = 999
	_, err = f.service.CreateBooking(context.Background(), f.booker.ID, req)
	assert.True(t, domain.IsNotFound(err))
}

func TestSetApproval_Approve(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	dto, err := f.service.SetApproval(context.Background(), created.ID, f.owner.ID, true)
	require.NoError(t, err)

	assert.Equal(t, "APPROVED", dto.Status)

	stored, err := f.bookings.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusApproved, stored.Status())

	require.Len(t, f.events.published, 2)
	assert.Equal(t, events.BookingApproved, f.events.published[1].Event.Type)
}

func TestSetApproval_ReApproveFails(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	_, err := f.service.SetApproval(context.Background(), created.ID, f.owner.ID, true)
	require.NoError(t, err)

	_, err = f.service.SetApproval(context.Background(), created.ID, f.owner.ID, true)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "already approved", err.Error())
}

func TestSetApproval_RejectAfterApproveSucceeds(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	_, err := f.service.SetApproval(context.Background(), created.ID, f.owner.ID, true)
	require.NoError(t, err)

	dto, err := f.service.SetApproval(context.Background(), created.ID, f.owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", dto.Status)
	assert.Equal(t, events.BookingRejected, f.events.published[2].Event.Type)
}

func TestSetApproval_NonOwnerIsHidden(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	_, err := f.service.SetApproval(context.Background(), created.ID, f.booker.ID, true)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestGetBooking_VisibleToBookerAndOwnerOnly(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	stranger := &userDomain.User{Name: "Stranger", Email: "stranger@example.com"}
	require.NoError(t, f.users.Save(context.Background(), stranger))

	_, err := f.service.GetBooking(context.Background(), created.ID, f.booker.ID)
	assert.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), created.ID, f.owner.ID)
	assert.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), created.ID, stranger.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestListByBooker_NoBookingsAtAll(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.ListByBooker(context.Background(), f.booker.ID, "ALL", 0, 10)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "no bookings found", err.Error())
}

func TestListByBooker_EmptyFilteredPageIsSuccess(t *testing.T) {
	f := newBookingFixture(t)
	f.createBooking(t, 24*time.Hour, 48*time.Hour)

	// The booking is in the future, so the PAST partition is empty but the
	// pre-check passes.
	result, err := f.service.ListByBooker(context.Background(), f.booker.ID, "PAST", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestListByBooker_UnknownStateToken(t *testing.T) {
	f := newBookingFixture(t)
	f.createBooking(t, 24*time.Hour, 48*time.Hour)

	_, err := f.service.ListByBooker(context.Background(), f.booker.ID, "SOON", 0, 10)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Unknown state: SOON", err.Error())
}

func TestListByBooker_Partitions(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)
	ctx := context.Background()

	for state, wantLen := range map[string]int{
		"ALL":      1,
		"FUTURE":   1,
		"WAITING":  1,
		"PAST":     0,
		"CURRENT":  0,
		"REJECTED": 0,
	} {
		result, err := f.service.ListByBooker(ctx, f.booker.ID, state, 0, 10)
		require.NoError(t, err, "state %s", state)
		assert.Len(t, result, wantLen, "state %s", state)
	}

	_, err := f.service.SetApproval(ctx, created.ID, f.owner.ID, false)
	require.NoError(t, err)

	rejected, err := f.service.ListByBooker(ctx, f.booker.ID, "REJECTED", 0, 10)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, created.ID, rejected[0].ID)

	waiting, err := f.service.ListByBooker(ctx, f.booker.ID, "WAITING", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, waiting)
}

func TestListByOwner_SeesIncomingBookings(t *testing.T) {
	f := newBookingFixture(t)
	created := f.createBooking(t, 24*time.Hour, 48*time.Hour)

	result, err := f.service.ListByOwner(context.Background(), f.owner.ID, "ALL", 0, 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, created.ID, result[0].ID)

	// The booker owns no items, so the owner-side listing pre-check fails.
	_, err = f.service.ListByOwner(context.Background(), f.booker.ID, "ALL", 0, 10)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestListByBooker_OrderedByStartDescending(t *testing.T) {
	f := newBookingFixture(t)
	early := f.createBooking(t, 24*time.Hour, 24*time.Hour)
	late := f.createBooking(t, 96*time.Hour, 24*time.Hour)

	result, err := f.service.ListByBooker(context.Background(), f.booker.ID, "ALL", 0, 10)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, late.ID, result[0].ID)
	assert.Equal(t, early.ID, result[1].ID)
}

func TestListAllBookings_PaginatesWithTotal(t *testing.T) {
	f := newBookingFixture(t)
	f.createBooking(t, 24*time.Hour, 24*time.Hour)
	f.createBooking(t, 96*time.Hour, 24*time.Hour)
	f.createBooking(t, 200*time.Hour, 24*time.Hour)

	dtos, total, err := f.service.ListAllBookings(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, dtos, 2)
}

func TestGetBookingStats_CountsByStatus(t *testing.T) {
	f := newBookingFixture(t)
	first := f.createBooking(t, 24*time.Hour, 24*time.Hour)
	f.createBooking(t, 96*time.Hour, 24*time.Hour)

	_, err := f.service.SetApproval(context.Background(), first.ID, f.owner.ID, true)
	require.NoError(t, err)

	stats, err := f.service.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["APPROVED"])
	assert.Equal(t, int64(1), stats.ByStatus["WAITING"])
}
