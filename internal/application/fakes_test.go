package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shareloop/service-share/internal/domain"
	bookingDomain "github.com/shareloop/service-share/internal/domain/booking"
	commentDomain "github.com/shareloop/service-share/internal/domain/comment"
	itemDomain "github.com/shareloop/service-share/internal/domain/item"
	requestDomain "github.com/shareloop/service-share/internal/domain/request"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
	"github.com/shareloop/service-share/internal/events"
)

// In-memory repository fakes mirroring the SQL implementations' semantics,
// including NotFound mapping and listing order.

type fakeUserRepo struct {
	users  map[int64]*userDomain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*userDomain.User), nextID: 1}
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.NewConflictError("email " + u.Email + " is already in use")
		}
	}
	u.ID = r.nextID
	r.nextID++
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *userDomain.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return domain.NewNotFoundError("User", u.ID)
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return domain.NewConflictError("email " + u.Email + " is already in use")
		}
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*userDomain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]*userDomain.User, error) {
	out := make([]*userDomain.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.NewNotFoundError("User", id)
	}
	delete(r.users, id)
	return nil
}

type fakeItemRepo struct {
	items  map[int64]*itemDomain.Item
	nextID int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[int64]*itemDomain.Item), nextID: 1}
}

func (r *fakeItemRepo) Save(_ context.Context, i *itemDomain.Item) error {
	i.ID = r.nextID
	r.nextID++
	copied := *i
	r.items[i.ID] = &copied
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, i *itemDomain.Item) error {
	if _, ok := r.items[i.ID]; !ok {
		return domain.NewNotFoundError("Item", i.ID)
	}
	copied := *i
	r.items[i.ID] = &copied
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id int64) (*itemDomain.Item, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id)
	}
	copied := *i
	return &copied, nil
}

func (r *fakeItemRepo) FindByIDs(_ context.Context, ids []int64) ([]*itemDomain.Item, error) {
	var out []*itemDomain.Item
	for _, id := range ids {
		if i, ok := r.items[id]; ok {
			copied := *i
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) FindByOwner(_ context.Context, ownerID int64, page domain.Page) ([]*itemDomain.Item, error) {
	var out []*itemDomain.Item
	for _, i := range r.items {
		if i.OwnerID == ownerID {
			copied := *i
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginateItems(out, page), nil
}

func (r *fakeItemRepo) Search(_ context.Context, text string, page domain.Page) ([]*itemDomain.Item, error) {
	needle := strings.ToLower(text)
	var out []*itemDomain.Item
	for _, i := range r.items {
		if !i.Available {
			continue
		}
		if strings.Contains(strings.ToLower(i.Name), needle) ||
			strings.Contains(strings.ToLower(i.Description), needle) {
			copied := *i
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginateItems(out, page), nil
}

func (r *fakeItemRepo) FindByRequestIDs(_ context.Context, requestIDs []int64) ([]*itemDomain.Item, error) {
	wanted := make(map[int64]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = struct{}{}
	}
	var out []*itemDomain.Item
	for _, i := range r.items {
		if i.RequestID == nil {
			continue
		}
		if _, ok := wanted[*i.RequestID]; ok {
			copied := *i
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func paginateItems(items []*itemDomain.Item, page domain.Page) []*itemDomain.Item {
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// fakeBookingRepo resolves item ownership through the item fake, the same way
// the SQL implementation joins on the items table.
type fakeBookingRepo struct {
	bookings map[int64]*bookingDomain.Booking
	items    *fakeItemRepo
	nextID   int64
}

func newFakeBookingRepo(items *fakeItemRepo) *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[int64]*bookingDomain.Booking), items: items, nextID: 1}
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	b.SetID(r.nextID)
	r.nextID++
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("Booking", b.ID())
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id)
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) CountByBooker(_ context.Context, bookerID int64) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.BookerID() == bookerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if r.ownerOf(b.ItemID()) == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) FindByBooker(_ context.Context, bookerID int64, state bookingDomain.State, now time.Time, page domain.Page) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool { return b.BookerID() == bookerID }, state, now, page), nil
}

func (r *fakeBookingRepo) FindByOwner(_ context.Context, ownerID int64, state bookingDomain.State, now time.Time, page domain.Page) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool { return r.ownerOf(b.ItemID()) == ownerID }, state, now, page), nil
}

func (r *fakeBookingRepo) FindLastFinishedForItem(_ context.Context, itemID int64, now time.Time) (*bookingDomain.Booking, error) {
	var best *bookingDomain.Booking
	for _, b := range r.bookings {
		if b.ItemID() != itemID || b.Status() != bookingDomain.StatusApproved || !b.End().Before(now) {
			continue
		}
		if best == nil || b.End().After(best.End()) {
			best = b
		}
	}
	return cloneBooking(best), nil
}

func (r *fakeBookingRepo) FindLastUnfinishedForItem(_ context.Context, itemID int64, now time.Time) (*bookingDomain.Booking, error) {
	var best *bookingDomain.Booking
	for _, b := range r.bookings {
		if b.ItemID() != itemID || b.Status() != bookingDomain.StatusApproved || !b.End().After(now) {
			continue
		}
		if best == nil || b.End().After(best.End()) {
			best = b
		}
	}
	return cloneBooking(best), nil
}

func (r *fakeBookingRepo) FindNextForItem(_ context.Context, itemID int64, now time.Time) (*bookingDomain.Booking, error) {
	var best *bookingDomain.Booking
	for _, b := range r.bookings {
		if b.ItemID() != itemID || b.Status() != bookingDomain.StatusApproved || !b.Start().After(now) {
			continue
		}
		if best == nil || b.Start().Before(best.Start()) {
			best = b
		}
	}
	return cloneBooking(best), nil
}

func (r *fakeBookingRepo) FindApprovedForItems(_ context.Context, itemIDs []int64) ([]*bookingDomain.Booking, error) {
	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.Status() != bookingDomain.StatusApproved {
			continue
		}
		if _, ok := wanted[b.ItemID()]; ok {
			out = append(out, cloneBooking(b))
		}
	}
	sortByStartDesc(out)
	return out, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page domain.Page) ([]*bookingDomain.Booking, int64, error) {
	all := r.all()
	sortByStartDesc(all)
	total := int64(len(all))
	start := page.Offset()
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + page.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeBookingRepo) FindAll(_ context.Context) ([]*bookingDomain.Booking, error) {
	all := r.all()
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	return all, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) all() []*bookingDomain.Booking {
	out := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, cloneBooking(b))
	}
	return out
}

func (r *fakeBookingRepo) ownerOf(itemID int64) int64 {
	if i, ok := r.items.items[itemID]; ok {
		return i.OwnerID
	}
	return 0
}

func (r *fakeBookingRepo) filter(match func(*bookingDomain.Booking) bool, state bookingDomain.State, now time.Time, page domain.Page) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if match(b) && matchesState(b, state, now) {
			out = append(out, cloneBooking(b))
		}
	}
	sortByStartDesc(out)
	start := page.Offset()
	if start >= len(out) {
		return nil
	}
	end := start + page.Limit()
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}

func matchesState(b *bookingDomain.Booking, state bookingDomain.State, now time.Time) bool {
	switch state {
	case bookingDomain.StateCurrent:
		return !b.Start().After(now) && !b.End().Before(now)
	case bookingDomain.StatePast:
		return b.End().Before(now) && b.Status() == bookingDomain.StatusApproved
	case bookingDomain.StateFuture:
		return b.Start().After(now)
	case bookingDomain.StateWaiting:
		return b.Status() == bookingDomain.StatusWaiting
	case bookingDomain.StateRejected:
		return b.Status() == bookingDomain.StatusRejected
	default:
		return true
	}
}

func sortByStartDesc(bookings []*bookingDomain.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].Start().After(bookings[j].Start()) })
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	if b == nil {
		return nil
	}
	return bookingDomain.Reconstruct(
		b.ID(), b.Start(), b.End(), b.Status(), b.ItemID(), b.BookerID(), b.CreatedAt(), b.UpdatedAt(),
	)
}

type fakeCommentRepo struct {
	comments map[int64]*commentDomain.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]*commentDomain.Comment), nextID: 1}
}

func (r *fakeCommentRepo) Save(_ context.Context, c *commentDomain.Comment) error {
	c.ID = r.nextID
	r.nextID++
	copied := *c
	r.comments[c.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) FindByItem(_ context.Context, itemID int64) ([]*commentDomain.Comment, error) {
	return r.find(func(c *commentDomain.Comment) bool { return c.ItemID == itemID }), nil
}

func (r *fakeCommentRepo) FindByItems(_ context.Context, itemIDs []int64) ([]*commentDomain.Comment, error) {
	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	return r.find(func(c *commentDomain.Comment) bool {
		_, ok := wanted[c.ItemID]
		return ok
	}), nil
}

func (r *fakeCommentRepo) find(match func(*commentDomain.Comment) bool) []*commentDomain.Comment {
	var out []*commentDomain.Comment
	for _, c := range r.comments {
		if match(c) {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out
}

type fakeRequestRepo struct {
	requests map[int64]*requestDomain.ItemRequest
	nextID   int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[int64]*requestDomain.ItemRequest), nextID: 1}
}

func (r *fakeRequestRepo) Save(_ context.Context, req *requestDomain.ItemRequest) error {
	req.ID = r.nextID
	r.nextID++
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id int64) (*requestDomain.ItemRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("ItemRequest", id)
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) FindByRequester(_ context.Context, requesterID int64) ([]*requestDomain.ItemRequest, error) {
	return r.find(func(req *requestDomain.ItemRequest) bool { return req.RequesterID == requesterID }, domain.Page{Size: 1 << 30}), nil
}

func (r *fakeRequestRepo) FindAllExcept(_ context.Context, requesterID int64, page domain.Page) ([]*requestDomain.ItemRequest, error) {
	return r.find(func(req *requestDomain.ItemRequest) bool { return req.RequesterID != requesterID }, page), nil
}

func (r *fakeRequestRepo) find(match func(*requestDomain.ItemRequest) bool, page domain.Page) []*requestDomain.ItemRequest {
	var out []*requestDomain.ItemRequest
	for _, req := range r.requests {
		if match(req) {
			copied := *req
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	start := page.Offset()
	if start >= len(out) {
		return nil
	}
	end := start + page.Limit()
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}

// fakePublisher records published events for assertions.
type fakePublisher struct {
	published []publishedEvent
}

type publishedEvent struct {
	Topic string
	Key   string
	Event events.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event events.CloudEvent) error {
	p.published = append(p.published, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}
