package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

func defaultPolicy() *Policy {
	return NewPolicy(PolicyConfig{
		IgnoreHosts: []string{
			"medium.com", "www.medium.com",
			"youtube.com", "www.youtube.com",
			"youtu.be", "www.youtu.be",
		},
		IgnoreTitleKeywords: []string{"[Video]"},
	})
}

func TestPolicyShouldFetch(t *testing.T) {
	t.Parallel()

	policy := defaultPolicy()
	cases := []struct {
		name    string
		article walkthrough.Article
		want    bool
	}{
		{"plain blog post", walkthrough.Article{Title: "Writing a parser", Link: "https://blog.example.com/parser"}, true},
		{"video title", walkthrough.Article{Title: "[Video] today i code rust", Link: "https://blog.example.com/v"}, false},
		{"ignored host", walkthrough.Article{Title: "Playlist", Link: "https://www.youtube.com/playlist?list=PL2F_NKy2ueKOpAVPl-c3szUXuwB7K9sDq"}, false},
		{"short video host", walkthrough.Article{Title: "Clip", Link: "https://youtu.be/abc"}, false},
		{"medium", walkthrough.Article{Title: "Post", Link: "https://medium.com/@someone/post"}, false},
		{"medium subdomain is not an exact match", walkthrough.Article{Title: "Post", Link: "https://someone.medium.com/post"}, true},
		{"relative link", walkthrough.Article{Title: "Local", Link: "/blog/post"}, false},
		{"unparsable link", walkthrough.Article{Title: "Broken", Link: "http://[::1"}, false},
		{"ip host", walkthrough.Article{Title: "IP", Link: "http://127.0.0.1/page"}, false},
		{"no host", walkthrough.Article{Title: "Mail", Link: "mailto:someone@example.com"}, false},
		{"lowercase keyword does not match", walkthrough.Article{Title: "[video] lower", Link: "https://example.com/x"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.ShouldFetch(tc.article))
		})
	}
}

func TestPolicyEmptyConfigFetchesEverythingAbsolute(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(PolicyConfig{IgnoreTitleKeywords: []string{""}})
	assert.True(t, policy.ShouldFetch(walkthrough.Article{Title: "[Video] x", Link: "https://youtube.com/x"}))
	assert.False(t, policy.ShouldFetch(walkthrough.Article{Title: "x", Link: "not a url"}))
}
