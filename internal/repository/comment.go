package repository

import (
	"context"

	"feedbackbox/internal/model"
)

// CommentRepository defines data access for comments using SQL queries only.
// No business logic here, strictly persistence operations.
type CommentRepository interface {
	// Create inserts a new comment record. The ID and CreatedAt fields are
	// assigned by the database; the stored record is returned.
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)

	// FindByID returns a comment by its ID. A missing row surfaces as
	// sql.ErrNoRows for the service layer to translate.
	FindByID(ctx context.Context, id int64) (*model.Comment, error)

	// List returns comments ordered newest first, plus the total row count.
	// Repeated calls are side-effect free.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Comment], error)

	// Delete removes a comment by ID and returns the number of rows affected.
	// Zero means nothing matched; the caller decides whether that is an error.
	Delete(ctx context.Context, id int64) (int64, error)
}
