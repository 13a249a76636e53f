package crawler

import "context"

// Fetcher fetches a URL and returns the body plus metadata. Non-2xx
// responses are reported as errors.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// RobotsPolicy determines if a URL can be fetched under robots.txt rules.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}
