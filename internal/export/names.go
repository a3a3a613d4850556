package export

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/JakeFAU/twir-walkthroughs/internal/hash/sha256"
)

const maxPathChars = 120

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileName maps an article link to a stable, filesystem-safe name. The same
// link always yields the same name, so reruns find existing downloads.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return sha256.Hex(rawURL)
	}
	host := invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	p := strings.Trim(u.EscapedPath(), "/")
	if p == "" {
		p = "root"
	}
	p = invalidFilenameChars.ReplaceAllString(p, "_")
	if len(p) > maxPathChars {
		p = p[:maxPathChars]
	}
	return fmt.Sprintf("%s_%s_%s", host, p, sha256.Short(rawURL, 16))
}
