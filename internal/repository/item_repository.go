package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shareloop/service-share/internal/domain"
	itemDomain "github.com/shareloop/service-share/internal/domain/item"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null;size:255"`
	Description string `gorm:"not null;size:1000"`
	Available   bool   `gorm:"not null"`
	OwnerID     int64  `gorm:"not null;index"`
	RequestID   *int64 `gorm:"index"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string {
	return "items"
}

// GormItemRepository is the GORM-based implementation of the item repository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// Save persists a new item and backfills the assigned identifier.
func (r *GormItemRepository) Save(ctx context.Context, i *itemDomain.Item) error {
	model := toItemModel(i)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	i.ID = model.ID
	return nil
}

// Update persists changes to an existing item.
func (r *GormItemRepository) Update(ctx context.Context, i *itemDomain.Item) error {
	result := r.db.WithContext(ctx).Model(&ItemModel{}).Where("id = ?", i.ID).
		Updates(map[string]interface{}{
			"name":        i.Name,
			"description": i.Description,
			"available":   i.Available,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Item", i.ID)
	}
	return nil
}

// FindByID retrieves an item by its identifier.
func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id)
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return toDomainItem(&model), nil
}

// FindByIDs retrieves the items with the given identifiers.
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []int64) ([]*itemDomain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	return toDomainItems(models), nil
}

// FindByOwner retrieves a page of a user's items ordered by id.
func (r *GormItemRepository) FindByOwner(ctx context.Context, ownerID int64, page domain.Page) ([]*itemDomain.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner items: %w", err)
	}
	return toDomainItems(models), nil
}

// Search retrieves available items whose name or description contains text,
// case-insensitively.
func (r *GormItemRepository) Search(ctx context.Context, text string, page domain.Page) ([]*itemDomain.Item, error) {
	pattern := "%" + text + "%"
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("available = ? AND (name ILIKE ? OR description ILIKE ?)", true, pattern, pattern).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return toDomainItems(models), nil
}

// FindByRequestIDs retrieves items answering the given item requests.
func (r *GormItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []int64) ([]*itemDomain.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).Where("request_id IN ?", requestIDs).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items by request: %w", err)
	}
	return toDomainItems(models), nil
}

func toItemModel(i *itemDomain.Item) *ItemModel {
	return &ItemModel{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
	}
}

func toDomainItem(m *ItemModel) *itemDomain.Item {
	return &itemDomain.Item{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Available:   m.Available,
		OwnerID:     m.OwnerID,
		RequestID:   m.RequestID,
	}
}

func toDomainItems(models []ItemModel) []*itemDomain.Item {
	items := make([]*itemDomain.Item, len(models))
	for i := range models {
		items[i] = toDomainItem(&models[i])
	}
	return items
}
