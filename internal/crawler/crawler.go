package crawler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/twir-walkthroughs/internal/metrics"
	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

const defaultConcurrency = 8

// Config holds the settings for a crawl run.
type Config struct {
	// IndexURL is the archive index page listing every issue.
	IndexURL string
	// Concurrency bounds how many issue pages are processed at once.
	Concurrency int
	// IsolateFailures turns a failed issue into an empty entry plus a warning
	// instead of aborting the whole crawl.
	IsolateFailures bool
}

// Crawler collects walkthrough articles across the issue archive.
type Crawler struct {
	cfg     Config
	fetcher walkthrough.Fetcher
	logger  *zap.Logger
}

// New constructs a Crawler.
func New(cfg Config, fetcher walkthrough.Fetcher, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// LoadOrCrawl returns the stored archive when there is one. Otherwise, or
// when refresh is set, it crawls the index and stores a non-empty result.
func (c *Crawler) LoadOrCrawl(ctx context.Context, store walkthrough.ArchiveStore, refresh bool) (walkthrough.Archive, error) {
	if !refresh {
		archive, ok, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load archive: %w", err)
		}
		if ok {
			c.logger.Info("Loaded walkthrough archive from store", zap.Int("issues", len(archive)))
			return archive, nil
		}
	}

	c.logger.Info("Starting crawl", zap.String("index_url", c.cfg.IndexURL))
	archive, err := c.Run(ctx)
	if err != nil {
		return nil, err
	}
	if len(archive) == 0 {
		c.logger.Warn("Crawl produced an empty archive; not storing it")
		return archive, nil
	}
	if err := store.Save(ctx, archive); err != nil {
		return nil, fmt.Errorf("save archive: %w", err)
	}
	c.logger.Info("Stored walkthrough archive", zap.Int("issues", len(archive)))
	return archive, nil
}

// Run fetches the index page, discovers every issue link, and crawls them.
func (c *Crawler) Run(ctx context.Context) (walkthrough.Archive, error) {
	links, err := c.DiscoverIssues(ctx)
	if err != nil {
		return nil, err
	}
	return c.Crawl(ctx, links)
}

// DiscoverIssues fetches the index page and returns absolute issue URLs.
func (c *Crawler) DiscoverIssues(ctx context.Context) ([]string, error) {
	page, err := c.fetcher.Fetch(ctx, c.cfg.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index page: %w", err)
	}
	raw, err := walkthrough.DiscoverIssueLinks(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("discover issue links: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", c.cfg.IndexURL, walkthrough.ErrNoIssueLinks)
	}
	links, err := walkthrough.ResolveIssueLinks(c.cfg.IndexURL, raw)
	if err != nil {
		return nil, fmt.Errorf("resolve issue links: %w", err)
	}
	c.logger.Info("Discovered issues", zap.Int("issues", len(links)))
	return links, nil
}

// Crawl processes every issue link in parallel and merges the results. Each
// worker only writes its own partial archive.
func (c *Crawler) Crawl(ctx context.Context, links []string) (walkthrough.Archive, error) {
	partials := make([]walkthrough.Archive, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, link := range links {
		g.Go(func() error {
			metrics.IncActiveWorkers()
			defer metrics.DecActiveWorkers()

			articles, err := c.crawlIssue(gctx, link)
			if err != nil {
				if !c.cfg.IsolateFailures {
					metrics.ObserveIssue("failed", 0)
					return fmt.Errorf("issue %s: %w", link, err)
				}
				metrics.ObserveIssue("isolated", 0)
				c.logger.Warn("Issue failed; recording it without articles",
					zap.String("issue", link),
					zap.Error(err),
				)
				articles = []walkthrough.Article{}
			}
			partials[i] = walkthrough.Archive{link: articles}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	archive := walkthrough.Merge(partials...)
	c.logger.Info("Crawl finished",
		zap.Int("issues", len(archive)),
		zap.Int("articles", len(archive.Articles())),
	)
	return archive, nil
}

func (c *Crawler) crawlIssue(ctx context.Context, link string) ([]walkthrough.Article, error) {
	c.logger.Debug("Getting issue", zap.String("issue", link))
	page, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	articles, err := walkthrough.ExtractArticles(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	status := "empty"
	if len(articles) > 0 {
		status = "found"
	}
	metrics.ObserveIssue(status, len(articles))
	return articles, nil
}
