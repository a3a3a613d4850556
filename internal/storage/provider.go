// Package storage selects the archive store backend named in configuration.
// Backends live in subpackages: local (the default cache file), postgres,
// gcs, and memory.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	gcsclient "cloud.google.com/go/storage"

	"github.com/JakeFAU/twir-walkthroughs/internal/storage/gcs"
	"github.com/JakeFAU/twir-walkthroughs/internal/storage/local"
	"github.com/JakeFAU/twir-walkthroughs/internal/storage/memory"
	"github.com/JakeFAU/twir-walkthroughs/internal/storage/postgres"
	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// Supported backend names.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendGCS      = "gcs"
	BackendMemory   = "memory"
)

// Config selects and configures an archive store.
type Config struct {
	Backend         string
	Path            string
	PostgresDSN     string
	PostgresTable   string
	PostgresMaxConn int32
	ConnLifetime    time.Duration
	GCSBucket       string
	GCSObject       string
}

// Provider is an archive store plus the cleanup it needs.
type Provider struct {
	walkthrough.ArchiveStore
	Description string
	closer      func() error
}

// Close releases backend resources.
func (p *Provider) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}

// New builds the configured archive store.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		store, err := local.New(local.Config{Path: cfg.Path})
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		return &Provider{ArchiveStore: store, Description: "file://" + store.Path()}, nil
	case BackendPostgres:
		store, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.PostgresDSN,
			Table:           cfg.PostgresTable,
			MaxConns:        cfg.PostgresMaxConn,
			MaxConnLifetime: cfg.ConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return &Provider{
			ArchiveStore: store,
			Description:  "postgres table " + cfg.PostgresTable,
			closer: func() error {
				store.Close()
				return nil
			},
		}, nil
	case BackendGCS:
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create GCS client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.GCSBucket, Object: cfg.GCSObject})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init gcs store: %w", err)
		}
		return &Provider{ArchiveStore: store, Description: store.URI(), closer: client.Close}, nil
	case BackendMemory:
		return &Provider{ArchiveStore: memory.NewArchiveStore(), Description: "memory"}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
