package export

import (
	"net"
	"net/url"
	"strings"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// PolicyConfig lists what the exporter should leave alone.
type PolicyConfig struct {
	// IgnoreHosts holds exact hosts or "*.suffix" patterns.
	IgnoreHosts []string
	// IgnoreTitleKeywords rejects articles whose title contains any entry.
	IgnoreTitleKeywords []string
}

// Policy decides which articles are worth fetching.
type Policy struct {
	hosts    *hostPatterns
	keywords []string
}

// NewPolicy builds a Policy from cfg.
func NewPolicy(cfg PolicyConfig) *Policy {
	keywords := make([]string, 0, len(cfg.IgnoreTitleKeywords))
	for _, kw := range cfg.IgnoreTitleKeywords {
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &Policy{
		hosts:    newHostPatterns(cfg.IgnoreHosts),
		keywords: keywords,
	}
}

// ShouldFetch reports whether the article's page should be downloaded. Links
// that are not absolute URLs with a domain name are rejected.
func (p *Policy) ShouldFetch(article walkthrough.Article) bool {
	for _, kw := range p.keywords {
		if strings.Contains(article.Title, kw) {
			return false
		}
	}

	u, err := url.Parse(article.Link)
	if err != nil || u.Scheme == "" {
		return false
	}
	host := u.Hostname()
	if host == "" || net.ParseIP(host) != nil {
		return false
	}
	return !p.hosts.Match(host)
}
