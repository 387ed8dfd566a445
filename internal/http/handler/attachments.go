package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"feedbackbox/internal/storage"
)

// ServeAttachment streams a stored attachment. Images render inline so the
// dashboard can embed them; everything else is sent as a download.
func ServeAttachment(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		ref := path.Join("uploads", name)

		rc, info, err := store.Open(c.UserContext(), ref)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "attachment not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		ct := info.ContentType
		if ct == "" {
			ct = storage.ContentTypeForRef(ref)
		}
		c.Set(fiber.HeaderContentType, ct)
		if info.Size > 0 {
			c.Set(fiber.HeaderContentLength, strconv.FormatInt(info.Size, 10))
		}
		if storage.IsImageRef(ref) {
			c.Set(fiber.HeaderContentDisposition, "inline")
		} else {
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		}
		return c.SendStream(rc)
	}
}
