package storage

// Package storage contains the attachment store: validated persistence of
// uploaded files behind a small interface with disk and S3-compatible
// backends. References returned by Save are opaque to callers and usable for
// both serving and removal.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedType is returned when extension or declared MIME type
	// falls outside the allow-list. Both must match; either failing rejects
	// the upload.
	ErrUnsupportedType = errors.New("file type not allowed: images (jpeg/jpg/png/gif), PDFs, Docs, or text files only")

	// ErrFileTooLarge is returned when an upload exceeds the configured cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
)

// FieldName is the multipart form field attachments arrive in; it doubles as
// the discriminator prefix in generated file names.
const FieldName = "attachment"

// refPrefix namespaces stored references so they can be reused directly as
// serving paths.
const refPrefix = "uploads"

// Upload describes an incoming file before it has been persisted.
type Upload struct {
	Reader       io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

// FileInfo carries basic metadata about a stored attachment.
type FileInfo struct {
	Size        int64
	ContentType string
}

// Store persists uploaded attachments.
type Store interface {
	// Save validates the upload and writes it under a freshly generated
	// unique name, returning an opaque reference. Nothing is left behind on
	// failure.
	Save(ctx context.Context, up Upload) (string, error)
	// Open streams a stored attachment back by reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, FileInfo, error)
	// Remove deletes the attachment behind ref. An already-absent file is
	// success, not an error; removal is idempotent.
	Remove(ctx context.Context, ref string) error
}

// allowedTypes maps permitted extensions to the declared MIME types accepted
// for them.
var allowedTypes = map[string][]string{
	".jpeg": {"image/jpeg", "image/pjpeg"},
	".jpg":  {"image/jpeg", "image/pjpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".txt":  {"text/plain"},
}

// imageExts are the extensions the dashboard renders inline.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Policy is the validation every backend applies before persisting.
type Policy struct {
	MaxBytes int64
}

// Validate checks an upload against the allow-list and size cap. The
// extension check and the declared-MIME check must both pass.
func (p Policy) Validate(up Upload) error {
	ext := strings.ToLower(filepath.Ext(up.OriginalName))
	mimes, ok := allowedTypes[ext]
	if !ok {
		return fmt.Errorf("%w (extension %q)", ErrUnsupportedType, ext)
	}

	declared := up.ContentType
	if mt, _, err := mime.ParseMediaType(up.ContentType); err == nil {
		declared = mt
	}
	declared = strings.ToLower(declared)

	matched := false
	for _, m := range mimes {
		if declared == m {
			matched = true
			break
		}
	}
	if !matched {
		return fmt.Errorf("%w (type %q)", ErrUnsupportedType, declared)
	}

	if p.MaxBytes > 0 && up.Size > p.MaxBytes {
		return fmt.Errorf("%w (%d bytes, limit %d)", ErrFileTooLarge, up.Size, p.MaxBytes)
	}
	return nil
}

// IsImageRef reports whether the reference points at an inline-renderable
// image.
func IsImageRef(ref string) bool {
	return imageExts[strings.ToLower(path.Ext(ref))]
}

// ContentTypeForRef derives a serving content type from the reference's
// extension.
func ContentTypeForRef(ref string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(ref))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// newRef builds a reference for a freshly stored file:
// uploads/<field>-<epoch-millis><original-extension>.
func newRef(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%s-%d%s", FieldName, time.Now().UnixMilli(), ext)
	return path.Join(refPrefix, name)
}

// baseName extracts the file name from a reference, rejecting anything that
// tries to escape the store's namespace.
func baseName(ref string) (string, error) {
	name := path.Base(path.Clean(ref))
	if name == "." || name == ".." || name == "/" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid attachment reference %q", ref)
	}
	return name, nil
}
