package sqlite

import (
	"context"
	"database/sql"

	"feedbackbox/internal/model"
	"feedbackbox/internal/repository"
)

// CommentSQLite is the SQLite implementation of repository.CommentRepository.
// It uses database/sql with parameterized queries and contains no business
// logic. Write serialization is left to the engine.
type CommentSQLite struct {
	db *sql.DB
}

// NewCommentSQLite creates a new CommentSQLite repository.
func NewCommentSQLite(db *sql.DB) *CommentSQLite {
	return &CommentSQLite{db: db}
}

var _ repository.CommentRepository = (*CommentSQLite)(nil)

// Create inserts a new comment row and returns the stored record, including
// the auto-assigned ID and the timestamp the database set.
func (r *CommentSQLite) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `INSERT INTO comments (comment_text, attachment_path) VALUES (?, ?)`

	res, err := r.db.ExecContext(ctx, q, c.Text, c.AttachmentRef)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single comment by its ID.
func (r *CommentSQLite) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	const q = `
		SELECT id, comment_text, attachment_path, created_at
		FROM comments
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, q, id)
	return scanComment(row)
}

// List returns comments newest first. A non-positive limit returns all rows.
func (r *CommentSQLite) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Comment], error) {
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
		q += ` LIMIT ? OFFSET ?`
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
func (r *CommentSQLite) Delete(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM comments WHERE id = ?`
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
