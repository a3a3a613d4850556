package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/twir-walkthroughs/internal/metrics"
	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

const (
	scrapeDirName   = "scrape"
	contentsDirName = "contents"

	defaultConcurrency = 4
)

// DefaultTextTags are the elements whose text makes up a reduced page.
var DefaultTextTags = []string{"title", "p", "ul", "ol"}

// Config controls an export run.
type Config struct {
	OutputDir string
	// Limit caps how many selected articles are fetched. Zero means all.
	Limit       int
	Concurrency int
	TextTags    []string
	Policy      PolicyConfig
}

// Result summarizes an export run.
type Result struct {
	Selected int
	Fetched  int
	Existing int
	Failed   int
	Reduced  int
}

// Exporter fetches article pages and writes their text content.
type Exporter struct {
	cfg     Config
	fetcher walkthrough.Fetcher
	policy  *Policy
	logger  *zap.Logger
}

// New constructs an Exporter.
func New(cfg Config, fetcher walkthrough.Fetcher, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if len(cfg.TextTags) == 0 {
		cfg.TextTags = DefaultTextTags
	}
	return &Exporter{
		cfg:     cfg,
		fetcher: fetcher,
		policy:  NewPolicy(cfg.Policy),
		logger:  logger,
	}
}

// ScrapeDir is where raw pages are written.
func (e *Exporter) ScrapeDir() string {
	return filepath.Join(e.cfg.OutputDir, scrapeDirName)
}

// ContentsDir is where reduced text is written.
func (e *Exporter) ContentsDir() string {
	return filepath.Join(e.cfg.OutputDir, contentsDirName)
}

// Run selects articles from the archive, fetches them, and reduces every page
// in the scrape directory.
func (e *Exporter) Run(ctx context.Context, archive walkthrough.Archive) (Result, error) {
	selected := e.Select(archive)
	res, err := e.Fetch(ctx, selected)
	if err != nil {
		return res, err
	}
	reduced, err := e.Reduce(ctx)
	res.Reduced = reduced
	if err != nil {
		return res, err
	}
	e.logger.Info("Export finished",
		zap.Int("selected", res.Selected),
		zap.Int("fetched", res.Fetched),
		zap.Int("existing", res.Existing),
		zap.Int("failed", res.Failed),
		zap.Int("reduced", res.Reduced),
	)
	return res, nil
}

// Select flattens the archive and keeps the articles the policy allows, up to
// the configured limit. A link listed under several issues is kept once.
func (e *Exporter) Select(archive walkthrough.Archive) []walkthrough.Article {
	var out []walkthrough.Article
	seen := make(map[string]struct{})
	for _, article := range archive.Articles() {
		if !e.policy.ShouldFetch(article) {
			metrics.ObserveExport("select", "filtered")
			e.logger.Debug("Skipping article", zap.String("link", article.Link))
			continue
		}
		name := FileName(article.Link)
		if _, dup := seen[name]; dup {
			metrics.ObserveExport("select", "duplicate")
			continue
		}
		seen[name] = struct{}{}
		out = append(out, article)
		if e.cfg.Limit > 0 && len(out) == e.cfg.Limit {
			break
		}
	}
	return out
}

type fetchOutcome int

const (
	outcomeFetched fetchOutcome = iota
	outcomeExisting
	outcomeFailed
)

// Fetch downloads each article into the scrape directory. Articles already on
// disk are skipped; fetch failures are logged and skipped. Only filesystem
// errors stop the run.
func (e *Exporter) Fetch(ctx context.Context, articles []walkthrough.Article) (Result, error) {
	res := Result{Selected: len(articles)}
	dir := e.ScrapeDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("create scrape dir: %w", err)
	}

	outcomes := make([]fetchOutcome, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, article := range articles {
		g.Go(func() error {
			outcome, err := e.fetchOne(gctx, dir, article)
			outcomes[i] = outcome
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, o := range outcomes {
		switch o {
		case outcomeFetched:
			res.Fetched++
		case outcomeExisting:
			res.Existing++
		case outcomeFailed:
			res.Failed++
		}
	}
	return res, nil
}

func (e *Exporter) fetchOne(ctx context.Context, dir string, article walkthrough.Article) (fetchOutcome, error) {
	path := filepath.Join(dir, FileName(article.Link))
	exists, err := fileExists(path)
	if err != nil {
		return outcomeFailed, err
	}
	if exists {
		metrics.ObserveExport("fetch", "existing")
		return outcomeExisting, nil
	}

	body, err := e.fetcher.Fetch(ctx, article.Link)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcomeFailed, ctxErr
		}
		metrics.ObserveExport("fetch", "error")
		e.logger.Warn("Failed to fetch article",
			zap.String("link", article.Link),
			zap.Error(err),
		)
		return outcomeFailed, nil
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return outcomeFailed, fmt.Errorf("write %s: %w", path, err)
	}
	metrics.ObserveExport("fetch", "success")
	e.logger.Debug("Saved article", zap.String("link", article.Link), zap.String("path", path))
	return outcomeFetched, nil
}

// Reduce converts every page in the scrape directory to text in the contents
// directory. Pages with no text and outputs that already exist are skipped.
// It returns how many files were written.
func (e *Exporter) Reduce(ctx context.Context) (int, error) {
	src, dst := e.ScrapeDir(), e.ContentsDir()
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("create contents dir: %w", err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read scrape dir: %w", err)
	}

	written := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if entry.IsDir() {
			continue
		}
		out := filepath.Join(dst, entry.Name())
		exists, err := fileExists(out)
		if err != nil {
			return written, err
		}
		if exists {
			metrics.ObserveExport("reduce", "existing")
			continue
		}

		in, err := os.Open(filepath.Join(src, entry.Name()))
		if err != nil {
			return written, fmt.Errorf("open %s: %w", entry.Name(), err)
		}
		text, err := ReduceHTML(in, e.cfg.TextTags)
		_ = in.Close()
		if err != nil {
			metrics.ObserveExport("reduce", "error")
			return written, fmt.Errorf("reduce %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(text) == "" {
			metrics.ObserveExport("reduce", "empty")
			continue
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", out, err)
		}
		metrics.ObserveExport("reduce", "success")
		written++
	}
	return written, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
