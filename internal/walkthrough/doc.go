// Package walkthrough holds the archive data model and the markup extraction
// steps used to collect "Rust Walkthroughs" links from This Week in Rust
// issue pages: index discovery, per-issue extraction, and the merge used to
// assemble one archive from per-issue results.
package walkthrough
