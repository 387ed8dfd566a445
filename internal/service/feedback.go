package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"feedbackbox/internal/model"
	"feedbackbox/internal/repository"
	"feedbackbox/internal/storage"
)

var (
	// ErrEmptySubmission is returned when a submission has neither text nor
	// an attachment.
	ErrEmptySubmission = errors.New("a comment or an attachment is required")

	// ErrNotFound is returned when the requested comment does not exist.
	ErrNotFound = errors.New("comment not found")
)

// CommentListResult is the service-level DTO for listed comments.
type CommentListResult struct {
	Items []model.Comment `json:"data"`
	Total int             `json:"total"`
}

// FeedbackService defines the use cases around anonymous feedback.
type FeedbackService interface {
	// Submit turns a raw intake request into a persisted comment plus an
	// optional stored attachment. The two effects either both happen or
	// neither does: any failure after the attachment was stored removes it
	// again before the error is returned.
	Submit(ctx context.Context, text string, up *storage.Upload) (*model.Comment, error)

	// List returns comments newest first. A non-positive limit returns all.
	List(ctx context.Context, limit, offset int) (*CommentListResult, error)

	// Get returns a single comment by its ID.
	Get(ctx context.Context, id int64) (*model.Comment, error)

	// Delete removes a comment and its attachment, if any. Deleting an
	// already-deleted comment reports ErrNotFound, never a crash.
	Delete(ctx context.Context, id int64) error
}

// feedbackService is a concrete implementation of FeedbackService.
type feedbackService struct {
	store storage.Store
	repo  repository.CommentRepository
	log   *slog.Logger
}

// NewFeedbackService constructs a new FeedbackService. A nil logger falls
// back to slog.Default().
func NewFeedbackService(store storage.Store, repo repository.CommentRepository, log *slog.Logger) FeedbackService {
	if log == nil {
		log = slog.Default()
	}
	return &feedbackService{store: store, repo: repo, log: log}
}

func (s *feedbackService) Submit(ctx context.Context, text string, up *storage.Upload) (*model.Comment, error) {
	var ref *string
	if up != nil {
		stored, err := s.store.Save(ctx, *up)
		if err != nil {
			// Nothing persisted yet, nothing to clean up
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		ref = &stored
	}

	if strings.TrimSpace(text) == "" && ref == nil {
		return nil, ErrEmptySubmission
	}

	stored, err := s.repo.Create(ctx, &model.Comment{Text: text, AttachmentRef: ref})
	if err != nil {
		// The attachment must not outlive a failed insert
		s.discard(ctx, ref)
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return stored, nil
}

// discard is the compensating cleanup for a stored attachment whose
// submission failed later on. It is best-effort: a cleanup failure is logged,
// the caller still returns the primary error.
func (s *feedbackService) discard(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := s.store.Remove(ctx, *ref); err != nil {
		s.log.ErrorContext(ctx, "compensating attachment cleanup failed",
			"ref", *ref,
			"error", err,
		)
	}
}

// List returns comments without exposing repository types.
func (s *feedbackService) List(ctx context.Context, limit, offset int) (*CommentListResult, error) {
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &CommentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a comment by ID.
func (s *feedbackService) Get(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete removes the attachment first, then the record. Attachment removal
// is best-effort: a lingering orphaned file is a lesser failure than a
// comment row pointing at nothing, so a removal error is logged and the row
// delete proceeds regardless.
func (s *feedbackService) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load comment: %w", err)
	}

	if c.HasAttachment() {
		if err := s.store.Remove(ctx, *c.AttachmentRef); err != nil {
			s.log.WarnContext(ctx, "removing attachment failed, deleting record anyway",
				"id", id,
				"ref", *c.AttachmentRef,
				"error", err,
			)
		}
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n == 0 {
		// Raced with another delete; the second caller sees not-found
		return ErrNotFound
	}
	return nil
}
