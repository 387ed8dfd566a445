package postgres

import (
	"context"
	"database/sql"

	"feedbackbox/internal/model"
	"feedbackbox/internal/repository"
)

// CommentPostgres is a PostgreSQL implementation of repository.CommentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CommentPostgres struct {
	db *sql.DB
}

// NewCommentPostgres creates a new CommentPostgres repository.
func NewCommentPostgres(db *sql.DB) *CommentPostgres {
	return &CommentPostgres{db: db}
}

var _ repository.CommentRepository = (*CommentPostgres)(nil)

// Create inserts a new comment row and returns the stored record.
func (r *CommentPostgres) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		INSERT INTO comments (comment_text, attachment_path)
		VALUES ($1, $2)
		RETURNING id, comment_text, attachment_path, created_at
	`
	row := r.db.QueryRowContext(ctx, q, c.Text, c.AttachmentRef)
	return scanComment(row)
}

// FindByID fetches a single comment by its ID.
func (r *CommentPostgres) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	const q = `
		SELECT id, comment_text, attachment_path, created_at
		FROM comments
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	return scanComment(row)
}

// List returns comments newest first and a total count. A non-positive limit
// returns all rows.
func (r *CommentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Comment], error) {
	const qCount = `SELECT COUNT(*) FROM comments`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `
		SELECT id, comment_text, attachment_path, created_at
		FROM comments
		ORDER BY created_at DESC, id DESC
	`
	var args []any
	if pq.Limit > 0 {
		q += ` LIMIT $1 OFFSET $2`
		args = append(args, pq.Limit, pq.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Comment]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a comment by ID and returns the affected-row count.
func (r *CommentPostgres) Delete(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM comments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	var ref sql.NullString
	if err := row.Scan(&c.ID, &c.Text, &ref, &c.CreatedAt); err != nil {
		return nil, err
	}
	if ref.Valid {
		c.AttachmentRef = &ref.String
	}
	return &c, nil
}
