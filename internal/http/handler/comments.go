package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"feedbackbox/internal/service"
	"feedbackbox/internal/storage"
)

// SubmitComment accepts an anonymous submission: a "comment" text field plus
// an optional "attachment" file, multipart/form-data. Validation failures
// come back with a specific code; storage failures stay opaque.
func SubmitComment(svc service.FeedbackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		text := c.FormValue("comment")

		var up *storage.Upload
		if fh, err := c.FormFile(storage.FieldName); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			up = &storage.Upload{
				Reader:       f,
				OriginalName: fh.Filename,
				ContentType:  ct,
				Size:         fh.Size,
			}
		}

		comment, err := svc.Submit(c.UserContext(), text, up)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptySubmission):
				return writeError(c, fiber.StatusBadRequest, "EMPTY_SUBMISSION", "please enter a comment or attach a file")
			case errors.Is(err, storage.ErrUnsupportedType):
				return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "file upload only supports images (jpeg/jpg/png/gif), PDFs, Docs, or text files")
			case errors.Is(err, storage.ErrFileTooLarge):
				return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "attachment exceeds the maximum allowed size")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "failed to submit comment, please try again")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	}
}

// ListComments returns comments newest first for the admin dashboard.
// Without an explicit limit every comment is returned.
func ListComments(svc service.FeedbackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "0")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetComment returns a single comment by its numeric ID.
func GetComment(svc service.FeedbackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		comment, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "comment not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(comment)
	}
}

// DeleteComment removes a comment and its attachment.
func DeleteComment(svc service.FeedbackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "comment not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
