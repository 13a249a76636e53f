package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const maxRobotsBytes = 1 << 20

// RobotsEnforcer enforces robots.txt directives per host. Policies are
// fetched lazily and cached for the life of the enforcer. A host whose
// robots.txt cannot be fetched or parsed is treated as allow-all.
type RobotsEnforcer struct {
	client    *http.Client
	cache     map[string]*robotstxt.Group
	userAgent string
	logger    *zap.Logger
	fetches   int
}

// NewRobotsEnforcer builds a RobotsPolicy respecting the config toggle.
// A nil client gets a 10 second default.
func NewRobotsEnforcer(respect bool, userAgent string, client *http.Client, logger *zap.Logger) RobotsPolicy {
	if !respect {
		return &allowAllPolicy{}
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsEnforcer{
		client:    client,
		cache:     make(map[string]*robotstxt.Group),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Allowed implements RobotsPolicy.
func (r *RobotsEnforcer) Allowed(ctx context.Context, rawURL string) bool {
	if r == nil {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	group := r.load(ctx, parsed)
	if group == nil {
		return true
	}
	p := parsed.EscapedPath()
	if p == "" {
		p = "/"
	}
	return group.Test(p)
}

// load returns the cached group for the URL's host, fetching robots.txt on
// first sight. A nil group means allow-all.
func (r *RobotsEnforcer) load(ctx context.Context, parsed *url.URL) *robotstxt.Group {
	hostKey := strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host)
	if group, ok := r.cache[hostKey]; ok {
		return group
	}

	data, err := r.fetch(ctx, hostKey+"/robots.txt")
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("robots unavailable; allowing access", zap.String("host", parsed.Host), zap.Error(err))
		r.cache[hostKey] = nil
		return nil
	}
	var group *robotstxt.Group
	if data != nil {
		group = data.FindGroup(r.userAgent)
	}
	r.cache[hostKey] = group
	return group
}

// fetch retrieves and parses robots.txt. A nil result with a nil error means
// the server answered with a non-2xx status.
func (r *RobotsEnforcer) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	r.fetches++
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.logger.Debug("Failed to close robots response body", zap.Error(cerr))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Debug("robots not served; allowing access",
			zap.String("url", robotsURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	return data, nil
}

type allowAllPolicy struct{}

func (a *allowAllPolicy) Allowed(context.Context, string) bool { return true }
