package walkthrough

import "context"

// Fetcher retrieves the raw markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// ArchiveStore persists a whole archive. Load reports false when nothing has
// been stored yet.
type ArchiveStore interface {
	Load(ctx context.Context) (Archive, bool, error)
	Save(ctx context.Context, archive Archive) error
}
