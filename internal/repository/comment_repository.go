package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	commentDomain "github.com/shareloop/service-share/internal/domain/comment"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Text       string    `gorm:"not null;size:2000"`
	ItemID     int64     `gorm:"not null;index"`
	AuthorID   int64     `gorm:"not null;index"`
	AuthorName string    `gorm:"not null;size:255"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CommentModel) TableName() string {
	return "comments"
}

// GormCommentRepository is the GORM-based implementation of the comment
// repository.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save persists a new comment and backfills the assigned identifier.
func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := &CommentModel{
		Text:       c.Text,
		ItemID:     c.ItemID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		CreatedAt:  c.Created,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	c.ID = model.ID
	return nil
}

// FindByItem retrieves an item's comments, newest first.
func (r *GormCommentRepository) FindByItem(ctx context.Context, itemID int64) ([]*commentDomain.Comment, error) {
	return r.find(ctx, "item_id = ?", itemID)
}

// FindByItems retrieves comments for the given items, newest first.
func (r *GormCommentRepository) FindByItems(ctx context.Context, itemIDs []int64) ([]*commentDomain.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, "item_id IN ?", itemIDs)
}

func (r *GormCommentRepository) find(ctx context.Context, where string, arg interface{}) ([]*commentDomain.Comment, error) {
	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	comments := make([]*commentDomain.Comment, len(models))
	for i, m := range models {
		comments[i] = &commentDomain.Comment{
			ID:         m.ID,
			Text:       m.Text,
			ItemID:     m.ItemID,
			AuthorID:   m.AuthorID,
			AuthorName: m.AuthorName,
			Created:    m.CreatedAt,
		}
	}
	return comments, nil
}
