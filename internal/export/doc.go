// Package export downloads the pages linked from a walkthrough archive and
// reduces each one to plain text.
//
// Raw pages land in <output>/scrape and their text in <output>/contents,
// both keyed by FileName. Existing files are never overwritten, so an
// interrupted export can simply be run again.
package export
