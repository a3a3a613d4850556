package walkthrough

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// IssueContainerSelector matches the per-issue title blocks on the archive index.
const IssueContainerSelector = "div.post-title"

var (
	// ErrMissingIssueAnchor is returned when an index entry has no usable link.
	ErrMissingIssueAnchor = errors.New("issue entry has no anchor href")
	// ErrNoIssueLinks is returned when the index page lists no issues at all.
	ErrNoIssueLinks = errors.New("no issue links found on index page")
)

// DiscoverIssueLinks reads the archive index page and returns the href of the
// first anchor in every issue container, in page order. A container without
// an anchor aborts discovery.
func DiscoverIssueLinks(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	containers := doc.Find(IssueContainerSelector)
	links := make([]string, 0, containers.Length())
	var discoverErr error
	containers.EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Find("a").First().Attr("href")
		if !ok {
			discoverErr = fmt.Errorf("%s #%d: %w", IssueContainerSelector, i, ErrMissingIssueAnchor)
			return false
		}
		links = append(links, href)
		return true
	})
	if discoverErr != nil {
		return nil, discoverErr
	}
	return links, nil
}

// ResolveIssueLinks resolves index hrefs against the index page URL so every
// archive key is absolute.
func ResolveIssueLinks(indexURL string, links []string) ([]string, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}
	out := make([]string, 0, len(links))
	for _, raw := range links {
		ref, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse issue link %q: %w", raw, err)
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out, nil
}
