package comment

import (
	"context"
	"time"
)

// Comment is feedback left on an item by a user who actually borrowed it.
// AuthorName is denormalized at write time so listings skip a user lookup.
type Comment struct {
	ID         int64
	Text       string
	ItemID     int64
	AuthorID   int64
	AuthorName string
	Created    time.Time
}

// Repository defines the persistence contract for comments.
type Repository interface {
	// Save persists a new comment and assigns its identifier.
	Save(ctx context.Context, c *Comment) error

	// FindByItem retrieves an item's comments, newest first.
	FindByItem(ctx context.Context, itemID int64) ([]*Comment, error)

	// FindByItems retrieves comments for the given items, newest first.
	FindByItems(ctx context.Context, itemIDs []int64) ([]*Comment, error)
}
