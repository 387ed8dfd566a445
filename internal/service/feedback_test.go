package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"feedbackbox/internal/model"
	"feedbackbox/internal/repository"
	repoMocks "feedbackbox/internal/repository/mocks"
	"feedbackbox/internal/storage"
	storeMocks "feedbackbox/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngUpload() *storage.Upload {
	return &storage.Upload{
		Reader:       strings.NewReader("fake png bytes"),
		OriginalName: "photo.png",
		ContentType:  "image/png",
		Size:         14,
	}
}

func TestFeedbackService_Submit(t *testing.T) {
	ctx := context.Background()
	storedRef := "uploads/attachment-1700000000000.png"

	tests := []struct {
		name       string
		text       string
		upload     *storage.Upload
		setupMocks func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository)
		wantErr    error
		checkRes   func(t *testing.T, c *model.Comment)
	}{
		{
			name: "text only",
			text: "hello",
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(c *model.Comment) bool {
					return c.Text == "hello" && c.AttachmentRef == nil
				})).Return(&model.Comment{ID: 1, Text: "hello", CreatedAt: time.Now()}, nil)
			},
			checkRes: func(t *testing.T, c *model.Comment) {
				assert.Equal(t, int64(1), c.ID)
				assert.Nil(t, c.AttachmentRef)
			},
		},
		{
			name:   "attachment only, empty text",
			text:   "   ",
			upload: pngUpload(),
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mStore.On("Save", ctx, mock.Anything).Return(storedRef, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(c *model.Comment) bool {
					return c.AttachmentRef != nil && *c.AttachmentRef == storedRef
				})).Return(&model.Comment{ID: 2, AttachmentRef: &storedRef}, nil)
			},
			checkRes: func(t *testing.T, c *model.Comment) {
				assert.Equal(t, storedRef, *c.AttachmentRef)
			},
		},
		{
			name:       "empty text and no attachment",
			text:       "  \t ",
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {},
			wantErr:    ErrEmptySubmission,
		},
		{
			name:   "store rejects the file, no insert attempted",
			text:   "hello",
			upload: pngUpload(),
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mStore.On("Save", ctx, mock.Anything).Return("", storage.ErrUnsupportedType)
			},
			wantErr: storage.ErrUnsupportedType,
		},
		{
			name:   "insert fails, stored attachment is removed",
			text:   "hello",
			upload: pngUpload(),
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mStore.On("Save", ctx, mock.Anything).Return(storedRef, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Remove", ctx, storedRef).Return(nil)
			},
			wantErr: errors.New("db fail"),
		},
		{
			name:   "cleanup failure does not mask the insert error",
			text:   "hello",
			upload: pngUpload(),
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mStore.On("Save", ctx, mock.Anything).Return(storedRef, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Remove", ctx, storedRef).Return(errors.New("remove fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStore)
			mRepo := new(repoMocks.MockCommentRepository)
			svc := NewFeedbackService(mStore, mRepo, testLogger())

			tt.setupMocks(mStore, mRepo)

			c, err := svc.Submit(ctx, tt.text, tt.upload)

			if tt.wantErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.wantErr, ErrEmptySubmission) || errors.Is(tt.wantErr, storage.ErrUnsupportedType) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, c)
				}
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFeedbackService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockCommentRepository)
		wantErr    bool
		checkRes   func(t *testing.T, res *CommentListResult)
	}{
		{
			name:   "all comments, newest first",
			limit:  0,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 0, Offset: 0}).
					Return(&repository.PageResult[model.Comment]{
						Items: []model.Comment{{ID: 2}, {ID: 1}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *CommentListResult) {
				assert.Len(t, res.Items, 2)
				assert.Equal(t, 2, res.Total)
				assert.Equal(t, int64(2), res.Items[0].ID)
			},
		},
		{
			name:   "negative offset normalized",
			limit:  5,
			offset: -3,
			setupMocks: func(mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 5, Offset: 0}).
					Return(&repository.PageResult[model.Comment]{Items: []model.Comment{}, Total: 0}, nil)
			},
		},
		{
			name: "repository error",
			setupMocks: func(mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockCommentRepository)
			svc := NewFeedbackService(nil, mRepo, testLogger())

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.limit, tt.offset)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFeedbackService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mRepo := new(repoMocks.MockCommentRepository)
		mRepo.On("FindByID", ctx, int64(5)).Return(&model.Comment{ID: 5, Text: "hello"}, nil)
		svc := NewFeedbackService(nil, mRepo, testLogger())

		c, err := svc.Get(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, "hello", c.Text)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockCommentRepository)
		mRepo.On("FindByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)
		svc := NewFeedbackService(nil, mRepo, testLogger())

		c, err := svc.Get(ctx, 404)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, c)
	})

	t.Run("generic repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockCommentRepository)
		mRepo.On("FindByID", ctx, int64(1)).Return(nil, errors.New("db fail"))
		svc := NewFeedbackService(nil, mRepo, testLogger())

		_, err := svc.Get(ctx, 1)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestFeedbackService_Delete(t *testing.T) {
	ctx := context.Background()
	ref := "uploads/attachment-1700000000000.pdf"

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository)
		wantErr    error
	}{
		{
			name: "with attachment",
			id:   1,
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Comment{ID: 1, AttachmentRef: &ref}, nil)
				mStore.On("Remove", ctx, ref).Return(nil)
				mRepo.On("Delete", ctx, int64(1)).Return(int64(1), nil)
			},
		},
		{
			name: "without attachment",
			id:   2,
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("FindByID", ctx, int64(2)).Return(&model.Comment{ID: 2, Text: "hello"}, nil)
				mRepo.On("Delete", ctx, int64(2)).Return(int64(1), nil)
			},
		},
		{
			name: "not found",
			id:   404,
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("FindByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "attachment removal failure still deletes the record",
			id:   3,
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("FindByID", ctx, int64(3)).Return(&model.Comment{ID: 3, AttachmentRef: &ref}, nil)
				mStore.On("Remove", ctx, ref).Return(errors.New("remove fail"))
				mRepo.On("Delete", ctx, int64(3)).Return(int64(1), nil)
			},
		},
		{
			name: "raced delete reports not found",
			id:   4,
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("FindByID", ctx, int64(4)).Return(&model.Comment{ID: 4, Text: "hello"}, nil)
				mRepo.On("Delete", ctx, int64(4)).Return(int64(0), nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "repository delete error",
			id:   5,
			setupMocks: func(mStore *storeMocks.MockStore, mRepo *repoMocks.MockCommentRepository) {
				mRepo.On("FindByID", ctx, int64(5)).Return(&model.Comment{ID: 5, Text: "hello"}, nil)
				mRepo.On("Delete", ctx, int64(5)).Return(int64(0), errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStore)
			mRepo := new(repoMocks.MockCommentRepository)
			svc := NewFeedbackService(mStore, mRepo, testLogger())

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, ErrNotFound)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
