package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

type stubFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.called = append(s.called, rawURL)
	if err, ok := s.errs[rawURL]; ok {
		return "", err
	}
	page, ok := s.pages[rawURL]
	if !ok {
		return "", errors.New("unexpected url " + rawURL)
	}
	return page, nil
}

func (s *stubFetcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.called...)
}

func testArchive() walkthrough.Archive {
	return walkthrough.Archive{
		"https://this-week-in-rust.org/blog/2020/01/01/this-week-in-rust-320/": {
			{Title: "Parsers", Link: "https://a.example.com/parsers"},
			{Title: "[Video] Streams", Link: "https://b.example.com/streams"},
		},
		"https://this-week-in-rust.org/blog/2020/01/08/this-week-in-rust-321/": {
			{Title: "Async", Link: "https://c.example.com/async"},
			{Title: "Playlist", Link: "https://www.youtube.com/playlist"},
		},
		"https://this-week-in-rust.org/blog/2020/01/15/this-week-in-rust-322/": {},
	}
}

func newTestExporter(t *testing.T, fetcher walkthrough.Fetcher, limit int) *Exporter {
	t.Helper()
	return New(Config{
		OutputDir:   t.TempDir(),
		Limit:       limit,
		Concurrency: 2,
		Policy: PolicyConfig{
			IgnoreHosts:         []string{"www.youtube.com"},
			IgnoreTitleKeywords: []string{"[Video]"},
		},
	}, fetcher, nil)
}

func TestSelectFiltersAndLimits(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, &stubFetcher{}, 0)
	got := e.Select(testArchive())
	require.Len(t, got, 2)
	assert.Equal(t, "https://a.example.com/parsers", got[0].Link)
	assert.Equal(t, "https://c.example.com/async", got[1].Link)

	limited := newTestExporter(t, &stubFetcher{}, 1)
	got = limited.Select(testArchive())
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.example.com/parsers", got[0].Link)
}

func TestSelectDropsDuplicateLinks(t *testing.T) {
	t.Parallel()

	archive := walkthrough.Archive{
		"https://this-week-in-rust.org/issue/1": {{Title: "Parsers", Link: "https://a.example.com/parsers"}},
		"https://this-week-in-rust.org/issue/2": {
			{Title: "Parsers again", Link: "https://a.example.com/parsers"},
			{Title: "Async", Link: "https://c.example.com/async"},
		},
	}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://a.example.com/parsers": `<p>parsers</p>`,
		"https://c.example.com/async":   `<p>async</p>`,
	}}
	e := newTestExporter(t, fetcher, 0)

	got := e.Select(archive)
	require.Len(t, got, 2)
	assert.Equal(t, "Parsers", got[0].Title)
	assert.Equal(t, "https://c.example.com/async", got[1].Link)

	res, err := e.Run(context.Background(), archive)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fetched)
	assert.Len(t, fetcher.calls(), 2)
}

func TestRunFetchesAndReduces(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{
		"https://a.example.com/parsers": `<html><head><title>Parsers</title></head><body><p>Nom and friends.</p></body></html>`,
		"https://c.example.com/async":   `<html><body><div>nothing useful</div></body></html>`,
	}}
	e := newTestExporter(t, fetcher, 0)

	res, err := e.Run(context.Background(), testArchive())
	require.NoError(t, err)
	assert.Equal(t, Result{Selected: 2, Fetched: 2, Reduced: 1}, res)

	raw, err := os.ReadFile(filepath.Join(e.ScrapeDir(), FileName("https://a.example.com/parsers")))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Nom and friends.")

	text, err := os.ReadFile(filepath.Join(e.ContentsDir(), FileName("https://a.example.com/parsers")))
	require.NoError(t, err)
	assert.Equal(t, "Parsers\nNom and friends.", string(text))

	_, err = os.Stat(filepath.Join(e.ContentsDir(), FileName("https://c.example.com/async")))
	assert.True(t, os.IsNotExist(err), "empty reductions must not be written")
}

func TestRunSkipsExistingFiles(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{
		"https://a.example.com/parsers": `<p>fresh</p>`,
		"https://c.example.com/async":   `<p>async</p>`,
	}}
	e := newTestExporter(t, fetcher, 0)

	require.NoError(t, os.MkdirAll(e.ScrapeDir(), 0o755))
	require.NoError(t, os.MkdirAll(e.ContentsDir(), 0o755))
	existing := FileName("https://a.example.com/parsers")
	require.NoError(t, os.WriteFile(filepath.Join(e.ScrapeDir(), existing), []byte(`<p>cached</p>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(e.ContentsDir(), existing), []byte("kept"), 0o644))

	res, err := e.Run(context.Background(), testArchive())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fetched)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, 1, res.Reduced)
	assert.Equal(t, []string{"https://c.example.com/async"}, fetcher.calls())

	kept, err := os.ReadFile(filepath.Join(e.ContentsDir(), existing))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(kept))
}

func TestFetchFailuresAreSkipped(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		pages: map[string]string{"https://c.example.com/async": `<p>async</p>`},
		errs:  map[string]error{"https://a.example.com/parsers": errors.New("boom")},
	}
	e := newTestExporter(t, fetcher, 0)

	res, err := e.Run(context.Background(), testArchive())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Fetched)
	assert.Equal(t, 1, res.Reduced)

	_, err = os.Stat(filepath.Join(e.ScrapeDir(), FileName("https://a.example.com/parsers")))
	assert.True(t, os.IsNotExist(err))
}

func TestReduceWithoutScrapeDir(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, &stubFetcher{}, 0)
	n, err := e.Reduce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &stubFetcher{errs: map[string]error{"https://a.example.com/parsers": context.Canceled}}
	e := newTestExporter(t, fetcher, 0)

	_, err := e.Fetch(ctx, []walkthrough.Article{{Title: "Parsers", Link: "https://a.example.com/parsers"}})
	require.ErrorIs(t, err, context.Canceled)
}
