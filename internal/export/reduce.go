package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReduceHTML returns the trimmed text of every element named in tags, in
// document order, one element per line. Empty elements are dropped. Nested
// matches each contribute their own line.
func ReduceHTML(r io.Reader, tags []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	var lines []string
	doc.Find(strings.Join(tags, ", ")).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n"), nil
}
