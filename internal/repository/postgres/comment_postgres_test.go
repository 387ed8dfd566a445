package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"feedbackbox/internal/model"
	"feedbackbox/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestCommentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCommentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ref := "uploads/attachment-1700000000000.pdf"

	rows := sqlmock.NewRows([]string{"id", "comment_text", "attachment_path", "created_at"}).
		AddRow(1, "feedback", ref, now)

	mock.ExpectQuery("INSERT INTO comments").
		WithArgs("feedback", &ref).
		WillReturnRows(rows)

	stored, err := repo.Create(ctx, &model.Comment{Text: "feedback", AttachmentRef: &ref})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
	assert.Equal(t, "feedback", stored.Text)
	assert.Equal(t, ref, *stored.AttachmentRef)
	assert.Equal(t, now, stored.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCommentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "comment_text", "attachment_path", "created_at"}).
			AddRow(3, "hello", nil, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM comments WHERE id =").
			WithArgs(int64(3)).
			WillReturnRows(rows)

		c, err := repo.FindByID(ctx, 3)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), c.ID)
		assert.Nil(t, c.AttachmentRef)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM comments WHERE id =").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindByID(ctx, 404)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, c)
	})
}

func TestCommentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCommentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM comments").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "comment_text", "attachment_path", "created_at"}).
		AddRow(1, "only one", nil, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM comments ORDER BY (.+) LIMIT").
		WithArgs(10, 0).
		WillReturnRows(rows)

	res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestCommentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCommentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM comments WHERE id =").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
