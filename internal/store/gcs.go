package store

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

// Uploader mirrors the processed data directory to a GCS bucket. Uploads
// are optional pipeline steps; credentials come from the ambient
// application-default chain.
type Uploader struct {
	client *storage.Client
	bucket string
	prefix string
	logger *log.Logger
}

func NewUploader(ctx context.Context, bucket, prefix string, logger *log.Logger) (*Uploader, error) {
	if logger == nil {
		logger = log.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: create gcs client: %w", err)
	}
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}, nil
}

func (u *Uploader) Close() error { return u.client.Close() }

// UploadFile copies one local file to the bucket under the configured prefix.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", localPath, err)
	}
	defer f.Close()

	objectPath := path.Join(u.prefix, filepath.Base(localPath))
	w := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = "application/octet-stream"

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("store: upload %s: %w", localPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("store: finalize gs://%s/%s: %w", u.bucket, objectPath, err)
	}
	u.logger.Printf("[Store] uploaded gs://%s/%s", u.bucket, objectPath)
	return nil
}

// UploadDir uploads every parquet table under dir.
func (u *Uploader) UploadDir(ctx context.Context, dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return fmt.Errorf("store: list %s: %w", dir, err)
	}
	for _, m := range matches {
		if err := u.UploadFile(ctx, m); err != nil {
			return err
		}
	}
	u.logger.Printf("[Store] uploaded %d tables to gs://%s/%s", len(matches), u.bucket, u.prefix)
	return nil
}
