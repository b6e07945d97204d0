package application

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/domain"
	itemDomain "github.com/shareloop/service-share/internal/domain/item"
	requestDomain "github.com/shareloop/service-share/internal/domain/request"
	userDomain "github.com/shareloop/service-share/internal/domain/user"
)

// CreateRequestRequest is the payload for posting an item request.
type CreateRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// RequestDTO is the API representation of an item request, including the
// items offered in answer to it.
type RequestDTO struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []ItemDTO `json:"items"`
}

// RequestService implements item request use cases.
type RequestService struct {
	requests requestDomain.Repository
	users    userDomain.Repository
	items    itemDomain.Repository
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests requestDomain.Repository,
	users userDomain.Repository,
	items itemDomain.Repository,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{requests: requests, users: users, items: items, logger: logger}
}

// CreateRequest posts a new item request on behalf of a user.
func (s *RequestService) CreateRequest(ctx context.Context, requesterID int64, req CreateRequestRequest) (*RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domain.NewValidationError("request description must not be empty")
	}

	r := &requestDomain.ItemRequest{
		Description: strings.TrimSpace(req.Description),
		RequesterID: requesterID,
		Created:     time.Now().UTC(),
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("item request created",
		zap.Int64("request_id", r.ID),
		zap.Int64("requester_id", requesterID))
	return &RequestDTO{ID: r.ID, Description: r.Description, Created: r.Created, Items: []ItemDTO{}}, nil
}

// ListOwnRequests retrieves the caller's requests, newest first, with the
// items offered in answer to each.
func (s *RequestService) ListOwnRequests(ctx context.Context, requesterID int64) ([]RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.requests.FindByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.assembleRequestDTOs(ctx, requests)
}

// ListOtherRequests retrieves requests posted by other users, newest first,
// with the items offered in answer to each.
func (s *RequestService) ListOtherRequests(ctx context.Context, requesterID int64, from, size int) ([]RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.FindAllExcept(ctx, requesterID, page)
	if err != nil {
		return nil, err
	}
	return s.assembleRequestDTOs(ctx, requests)
}

// GetRequest retrieves a single request with its answering items. Any
// existing user may view any request.
func (s *RequestService) GetRequest(ctx context.Context, requesterID, requestID int64) (*RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.assembleRequestDTOs(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *RequestService) assembleRequestDTOs(ctx context.Context, requests []*requestDomain.ItemRequest) ([]RequestDTO, error) {
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	items, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]ItemDTO)
	for _, it := range items {
		byRequest[*it.RequestID] = append(byRequest[*it.RequestID], toItemDTO(it))
	}

	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		answers := byRequest[r.ID]
		if answers == nil {
			answers = []ItemDTO{}
		}
		dtos[i] = RequestDTO{
			ID:          r.ID,
			Description: r.Description,
			Created:     r.Created,
			Items:       answers,
		}
	}
	return dtos, nil
}
