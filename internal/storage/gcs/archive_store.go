// Package gcs provides an archive store backed by Google Cloud Storage.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

const defaultObject = "rust_walkthrough_articles.json"

// Config captures the parameters required to locate the archive object.
type Config struct {
	Bucket string
	Object string
}

// ArchiveStore keeps the archive as one JSON object in a bucket.
type ArchiveStore struct {
	client *storage.Client
	bucket string
	object string
}

// New creates a GCS-backed archive store.
func New(client *storage.Client, cfg Config) (*ArchiveStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	object := strings.TrimSpace(cfg.Object)
	if object == "" {
		object = defaultObject
	}
	return &ArchiveStore{
		client: client,
		bucket: cfg.Bucket,
		object: object,
	}, nil
}

// URI returns the gs:// location of the archive object.
func (s *ArchiveStore) URI() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}

// Load downloads and decodes the archive object. A missing or empty object
// reports false.
func (s *ArchiveStore) Load(ctx context.Context) (walkthrough.Archive, bool, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", s.URI(), err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", s.URI(), err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	var archive walkthrough.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", s.URI(), err)
	}
	if archive == nil {
		archive = walkthrough.Archive{}
	}
	return archive, true, nil
}

// Save uploads the serialized archive, replacing the object.
func (s *ArchiveStore) Save(ctx context.Context, archive walkthrough.Archive) error {
	payload, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	writer := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(payload); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return fmt.Errorf("write %s: %w (close writer: %v)", s.URI(), err, closeErr)
		}
		return fmt.Errorf("write %s: %w", s.URI(), err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", s.URI(), err)
	}
	return nil
}
