package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"feedbackbox/internal/config"
)

// minioStore implements Store against an S3-compatible backend (MinIO, AWS
// S3, etc.) for deployments without durable local disk. It is safe for
// concurrent use by multiple goroutines.
type minioStore struct {
	client *minio.Client
	bucket string
	policy Policy
}

// NewMinIO creates an S3-compatible attachment store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if
// missing), mirroring how the disk backend creates its directory.
func NewMinIO(cfg config.MinIOConfig, policy Policy) (Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStore{client: cli, bucket: cfg.Bucket, policy: policy}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// Save validates the upload, then streams it to the bucket under a generated
// key.
func (m *minioStore) Save(ctx context.Context, up Upload) (string, error) {
	if up.Reader == nil {
		return "", fmt.Errorf("upload reader is nil")
	}
	if err := m.policy.Validate(up); err != nil {
		return "", err
	}

	ref := newRef(up.OriginalName)
	_, err := m.client.PutObject(ctx, m.bucket, ref, up.Reader, up.Size, minio.PutObjectOptions{
		ContentType: up.ContentType,
		UserMetadata: map[string]string{
			"original-filename": up.OriginalName,
		},
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// Open downloads the attachment content as a ReadCloser along with basic info.
func (m *minioStore) Open(ctx context.Context, ref string) (io.ReadCloser, FileInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, FileInfo{}, err
	}
	// Fetch stat to populate info; avoid reading content into memory.
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, FileInfo{}, fmt.Errorf("%w: %s", fs.ErrNotExist, ref)
		}
		return nil, FileInfo{}, err
	}

	ct := st.ContentType
	if ct == "" {
		ct = ContentTypeForRef(ref)
	}
	return obj, FileInfo{Size: st.Size, ContentType: ct}, nil
}

// Remove deletes the object behind ref. Removing a missing object succeeds,
// which keeps deletion idempotent.
func (m *minioStore) Remove(ctx context.Context, ref string) error {
	return m.client.RemoveObject(ctx, m.bucket, ref, minio.RemoveObjectOptions{})
}
