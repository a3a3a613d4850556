// Package api hosts the HTTP server, middleware, and read-only handlers over
// the stored walkthrough archive. Notable routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/archive for the whole archive keyed by issue URL.
//   - GET /v1/issues for issue URLs with article counts.
//   - GET /v1/articles for the flattened article list, paged with limit/offset.
package api
