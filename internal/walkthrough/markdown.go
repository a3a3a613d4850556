package walkthrough

import (
	"fmt"
	"io"
)

// WriteMarkdown writes one "- [title](link)" line per article.
func WriteMarkdown(w io.Writer, articles []Article) error {
	for _, a := range articles {
		if _, err := fmt.Fprintf(w, "- [%s](%s)\n", a.Title, a.Link); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
	}
	return nil
}
