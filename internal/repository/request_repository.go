package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shareloop/service-share/internal/domain"
	requestDomain "github.com/shareloop/service-share/internal/domain/request"
)

// RequestModel is the GORM model for the item_requests table.
type RequestModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Description string    `gorm:"not null;size:1000"`
	RequesterID int64     `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RequestModel) TableName() string {
	return "item_requests"
}

// GormRequestRepository is the GORM-based implementation of the item-request
// repository.
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository.
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// Save persists a new item request and backfills the assigned identifier.
func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := &RequestModel{
		Description: req.Description,
		RequesterID: req.RequesterID,
		CreatedAt:   req.Created,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save item request: %w", err)
	}
	req.ID = model.ID
	return nil
}

// FindByID retrieves an item request by its identifier.
func (r *GormRequestRepository) FindByID(ctx context.Context, id int64) (*requestDomain.ItemRequest, error) {
	var model RequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ItemRequest", id)
		}
		return nil, fmt.Errorf("failed to find item request by ID: %w", err)
	}
	return toDomainRequest(&model), nil
}

// FindByRequester retrieves a user's own requests, newest first.
func (r *GormRequestRepository) FindByRequester(ctx context.Context, requesterID int64) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find requester requests: %w", err)
	}
	return toDomainRequests(models), nil
}

// FindAllExcept retrieves other users' requests, newest first.
func (r *GormRequestRepository) FindAllExcept(ctx context.Context, requesterID int64, page domain.Page) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id <> ?", requesterID).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item requests: %w", err)
	}
	return toDomainRequests(models), nil
}

func toDomainRequest(m *RequestModel) *requestDomain.ItemRequest {
	return &requestDomain.ItemRequest{
		ID:          m.ID,
		Description: m.Description,
		RequesterID: m.RequesterID,
		Created:     m.CreatedAt,
	}
}

func toDomainRequests(models []RequestModel) []*requestDomain.ItemRequest {
	requests := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		requests[i] = toDomainRequest(&models[i])
	}
	return requests
}
