// Package crawler implements the crawl engine: the depth-banded frontier,
// robots.txt enforcement, the sequential fetch loop, and the aggregation of
// per-page email results.
package crawler
