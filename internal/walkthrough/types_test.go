package walkthrough

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIsOrderIndependent(t *testing.T) {
	t.Parallel()

	l1 := Archive{"https://example.org/1": {{Title: "A", Link: "/a"}}}
	l2 := Archive{"https://example.org/2": {}}
	l3 := Archive{"https://example.org/3": {{Title: "B", Link: "/b"}, {Title: "C", Link: "/c"}}}

	left := Merge(Merge(l1, l2), l3)
	right := Merge(l1, Merge(l2, l3))
	reversed := Merge(l3, l2, l1)

	assert.True(t, left.Equal(right))
	assert.True(t, left.Equal(reversed))
	assert.Len(t, left, 3)
	assert.Empty(t, left["https://example.org/2"])
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	in := Archive{"k": {{Title: "A", Link: "/a"}}}
	out := Merge(in)
	out["other"] = nil
	assert.Len(t, in, 1)
}

func TestArchiveEqual(t *testing.T) {
	t.Parallel()

	a := Archive{"x": {{Title: "A", Link: "/a"}}, "y": nil}
	assert.True(t, a.Equal(Archive{"x": {{Title: "A", Link: "/a"}}, "y": {}}))
	assert.False(t, a.Equal(Archive{"x": {{Title: "A", Link: "/b"}}, "y": {}}))
	assert.False(t, a.Equal(Archive{"x": {{Title: "A", Link: "/a"}}, "z": {}}))
	assert.False(t, a.Equal(Archive{"x": {{Title: "A", Link: "/a"}}}))
}

func TestArticlesFlattenSorted(t *testing.T) {
	t.Parallel()

	a := Archive{
		"https://example.org/2": {{Title: "C", Link: "/c"}},
		"https://example.org/1": {{Title: "A", Link: "/a"}, {Title: "B", Link: "/b"}},
		"https://example.org/3": {},
	}
	assert.Equal(t, []string{"https://example.org/1", "https://example.org/2", "https://example.org/3"}, a.Issues())
	assert.Equal(t, []Article{
		{Title: "A", Link: "/a"},
		{Title: "B", Link: "/b"},
		{Title: "C", Link: "/c"},
	}, a.Articles())
}

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteMarkdown(&buf, []Article{
		{Title: "Article A", Link: "https://a.example/"},
		{Title: "Article B", Link: "https://b.example/"},
	})
	require.NoError(t, err)
	assert.Equal(t, "- [Article A](https://a.example/)\n- [Article B](https://b.example/)\n", buf.String())
}
