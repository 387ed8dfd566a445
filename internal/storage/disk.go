package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore writes attachments to a local directory. File names are made
// unique at creation time, so no file locking is needed; deletions only ever
// target a single owned path.
type DiskStore struct {
	root   string
	policy Policy
}

// NewDisk creates a DiskStore rooted at dir, creating the directory if
// absent.
func NewDisk(dir string, policy Policy) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &DiskStore{root: dir, policy: policy}, nil
}

var _ Store = (*DiskStore)(nil)

// Save validates the upload and writes it to disk under a generated name.
// A partial file left by a failed copy is removed before returning.
func (d *DiskStore) Save(ctx context.Context, up Upload) (string, error) {
	if up.Reader == nil {
		return "", fmt.Errorf("upload reader is nil")
	}
	if err := d.policy.Validate(up); err != nil {
		return "", err
	}

	ref := newRef(up.OriginalName)
	name, err := baseName(ref)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(d.root, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating attachment file: %w", err)
	}

	// The declared size already passed validation; the copy itself is capped
	// too so a lying Content-Length cannot sneak an oversized body in.
	limit := io.Reader(up.Reader)
	if d.policy.MaxBytes > 0 {
		limit = io.LimitReader(up.Reader, d.policy.MaxBytes+1)
	}

	written, err := io.Copy(f, limit)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("writing attachment: %w", err)
	}
	if d.policy.MaxBytes > 0 && written > d.policy.MaxBytes {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w (limit %d)", ErrFileTooLarge, d.policy.MaxBytes)
	}

	return ref, nil
}

// Open streams a stored attachment from disk.
func (d *DiskStore) Open(ctx context.Context, ref string) (io.ReadCloser, FileInfo, error) {
	name, err := baseName(ref)
	if err != nil {
		return nil, FileInfo{}, err
	}

	f, err := os.Open(filepath.Join(d.root, name))
	if err != nil {
		return nil, FileInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, FileInfo{}, err
	}

	return f, FileInfo{Size: st.Size(), ContentType: ContentTypeForRef(ref)}, nil
}

// Remove deletes the file behind ref. A file that is already gone is not an
// error.
func (d *DiskStore) Remove(ctx context.Context, ref string) error {
	name, err := baseName(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.root, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
