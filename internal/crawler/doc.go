// Package crawler fans issue pages out to the walkthrough extractor and
// merges the per-issue results into one archive.
package crawler
