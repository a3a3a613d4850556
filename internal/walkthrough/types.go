package walkthrough

import (
	"slices"
	"sort"
)

// Article is one entry of an issue's walkthrough list.
type Article struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Archive maps an issue URL to the articles found on that issue, in document
// order. An empty slice means the issue has no walkthrough section.
type Archive map[string][]Article

// Merge combines archives into a new one. Keys are unique by construction so
// the result does not depend on argument order.
func Merge(parts ...Archive) Archive {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make(Archive, size)
	for _, p := range parts {
		for issue, articles := range p {
			out[issue] = articles
		}
	}
	return out
}

// Issues returns the archive keys in sorted order.
func (a Archive) Issues() []string {
	issues := make([]string, 0, len(a))
	for issue := range a {
		issues = append(issues, issue)
	}
	sort.Strings(issues)
	return issues
}

// Articles flattens the archive into one slice, walking issues in sorted
// order and keeping each issue's document order.
func (a Archive) Articles() []Article {
	var out []Article
	for _, issue := range a.Issues() {
		out = append(out, a[issue]...)
	}
	return out
}

// Equal reports whether both archives hold the same issues with the same
// article sequences. Nil and empty article slices compare equal.
func (a Archive) Equal(b Archive) bool {
	if len(a) != len(b) {
		return false
	}
	for issue, articles := range a {
		other, ok := b[issue]
		if !ok || !slices.Equal(articles, other) {
			return false
		}
	}
	return true
}
