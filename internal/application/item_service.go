package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/cache"
	"github.com/shareloop/service-share/internal/domain"
	bookingDomain "github.com/shareloop/service-share/internal/domain/booking"
	commentDomain "github.com/shareloop/service-share/internal/domain/comment"
	itemDomain "github.com/shareloop/service-share/internal/domain/item"
	requestDomain "github.com/shareloop/service-share/internal/domain/request"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
)

const (
	searchCacheNamespace = "items"
	searchCacheTTL       = 60 * time.Second
)

// CreateItemRequest is the request DTO for listing a new item.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId"`
}

// UpdateItemRequest is the request DTO for partially updating an item. Nil
// fields are left untouched.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// CreateCommentRequest is the request DTO for commenting on an item.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ItemDTO is the response representation of a catalog item.
type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// BookingRef is the minimal booking projection nested in item views.
type BookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

// ItemWithBookingsDTO is the item view enriched with comments and, for the
// owner only, the last and next approved bookings.
type ItemWithBookingsDTO struct {
	ItemDTO
	LastBooking *BookingRef  `json:"lastBooking"`
	NextBooking *BookingRef  `json:"nextBooking"`
	Comments    []CommentDTO `json:"comments"`
}

// ItemService is the application service for the item catalog and its
// comment thread.
type ItemService struct {
	items    itemDomain.Repository
	users    userDomain.Repository
	bookings bookingDomain.Repository
	comments commentDomain.Repository
	requests requestDomain.Repository
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewItemService creates a new ItemService. c may be nil when caching is
// disabled.
func NewItemService(
	items itemDomain.Repository,
	users userDomain.Repository,
	bookings bookingDomain.Repository,
	comments commentDomain.Repository,
	requests requestDomain.Repository,
	c *cache.Cache,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		cache:    c,
		logger:   logger,
	}
}

// CreateItem lists a new item for the given owner, optionally answering an
// item request.
func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		if _, err := s.requests.FindByID(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}

	itm := &itemDomain.Item{
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
		OwnerID:     ownerID,
		RequestID:   req.RequestID,
	}
	if err := s.items.Save(ctx, itm); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created", zap.Int64("item_id", itm.ID), zap.Int64("owner_id", ownerID))
	s.invalidateSearch(ctx)

	result := toItemDTO(itm)
	return &result, nil
}

// UpdateItem applies a partial update. Only the owner may update; anyone
// else gets NotFound, hiding the item.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, req UpdateItemRequest) (*ItemDTO, error) {
	itm, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if itm.OwnerID != ownerID {
		return nil, domain.NewNotFoundError("Item", itemID)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		itm.Name = *req.Name
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		itm.Description = *req.Description
	}
	if req.Available != nil {
		itm.Available = *req.Available
	}

	if err := s.items.Update(ctx, itm); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)

	result := toItemDTO(itm)
	return &result, nil
}

// GetItem retrieves one item with its comments. Last/next bookings are
// resolved only when the viewer is the owner; every other viewer gets nulls
// regardless of the booking history.
func (s *ItemService) GetItem(ctx context.Context, itemID, viewerID int64) (*ItemWithBookingsDTO, error) {
	itm, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	view := ItemWithBookingsDTO{
		ItemDTO:  toItemDTO(itm),
		Comments: toCommentDTOs(comments),
	}
	if viewerID == itm.OwnerID {
		last, next, err := s.resolveLastNext(ctx, itemID)
		if err != nil {
			return nil, err
		}
		view.LastBooking = last
		view.NextBooking = next
	}
	return &view, nil
}

// resolveLastNext computes the owner-only booking markers. "Last" prefers
// the most recently finished APPROVED booking and falls back to the
// still-running one with the latest end; "next" is the earliest APPROVED
// booking starting after now. The fallback is a historical quirk kept as is.
func (s *ItemService) resolveLastNext(ctx context.Context, itemID int64) (*BookingRef, *BookingRef, error) {
	now := time.Now().UTC()

	last, err := s.bookings.FindLastFinishedForItem(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	if last == nil {
		last, err = s.bookings.FindLastUnfinishedForItem(ctx, itemID, now)
		if err != nil {
			return nil, nil, err
		}
	}

	next, err := s.bookings.FindNextForItem(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	return toBookingRef(last), toBookingRef(next), nil
}

// ListByOwner retrieves a page of the owner's items, each enriched with
// comments and last/next bookings (the caller is the owner by definition).
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]ItemWithBookingsDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	items, err := s.items.FindByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(items))
	for i, itm := range items {
		ids[i] = itm.ID
	}
	approved, err := s.bookings.FindApprovedForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	bookingsByItem := make(map[int64][]*bookingDomain.Booking)
	for _, b := range approved {
		bookingsByItem[b.ItemID()] = append(bookingsByItem[b.ItemID()], b)
	}
	commentsByItem := make(map[int64][]*commentDomain.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	now := time.Now().UTC()
	views := make([]ItemWithBookingsDTO, len(items))
	for i, itm := range items {
		last, next := pickLastNext(bookingsByItem[itm.ID], now)
		views[i] = ItemWithBookingsDTO{
			ItemDTO:     toItemDTO(itm),
			LastBooking: toBookingRef(last),
			NextBooking: toBookingRef(next),
			Comments:    toCommentDTOs(commentsByItem[itm.ID]),
		}
	}
	return views, nil
}

// pickLastNext applies the same selection as resolveLastNext over an
// in-memory slice of APPROVED bookings.
func pickLastNext(bookings []*bookingDomain.Booking, now time.Time) (last, next *bookingDomain.Booking) {
	var lastFallback *bookingDomain.Booking
	for _, b := range bookings {
		if b.End().Before(now) {
			if last == nil || b.End().After(last.End()) {
				last = b
			}
			continue
		}
		if b.Start().After(now) {
			if next == nil || b.Start().Before(next.Start()) {
				next = b
			}
		}
		if b.End().After(now) {
			if lastFallback == nil || b.End().After(lastFallback.End()) {
				lastFallback = b
			}
		}
	}
	if last == nil {
		last = lastFallback
	}
	return last, next
}

// Search finds available items matching text. Blank text short-circuits to
// an empty result; hits are served from the cache when one is configured.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]ItemDTO, error) {
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		version := s.cache.Version(ctx, searchCacheNamespace)
		key = fmt.Sprintf("items:search:v%d:%s:%d:%d", version, strings.ToLower(text), page.Number, page.Size)
		var cached []ItemDTO
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("search cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	items, err := s.items.Search(ctx, text, page)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i, itm := range items {
		dtos[i] = toItemDTO(itm)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, dtos, searchCacheTTL); err != nil {
			s.logger.Warn("search cache write failed", zap.Error(err))
		}
	}
	return dtos, nil
}

// AddComment posts a comment on an item. The author must have at least one
// APPROVED booking that already finished; a user who never borrowed anything
// cannot comment.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, req CreateCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewValidationError("comment text must not be empty")
	}

	now := time.Now().UTC()
	page, _ := domain.NewPage(0, 1)
	finished, err := s.bookings.FindByBooker(ctx, authorID, bookingDomain.StatePast, now, page)
	if err != nil {
		return nil, err
	}
	if len(finished) == 0 {
		return nil, domain.NewValidationError("user has no finished bookings")
	}

	c := &commentDomain.Comment{
		Text:       req.Text,
		ItemID:     itemID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.comments.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	result := toCommentDTO(c)
	return &result, nil
}

func (s *ItemService) invalidateSearch(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx, searchCacheNamespace)
	}
}

func toItemDTO(i *itemDomain.Item) ItemDTO {
	return ItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		RequestID:   i.RequestID,
	}
}

func toBookingRef(b *bookingDomain.Booking) *BookingRef {
	if b == nil {
		return nil
	}
	return &BookingRef{ID: b.ID(), BookerID: b.BookerID()}
}

func toCommentDTO(c *commentDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    c.Created,
	}
}

func toCommentDTOs(comments []*commentDomain.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = toCommentDTO(c)
	}
	return dtos
}
