package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/contactcrawler/internal/extract"
	"github.com/JakeFAU/contactcrawler/internal/metrics"
)

// ErrInvalidSeed marks a seed URL that is not an absolute http(s) URL.
var ErrInvalidSeed = errors.New("invalid seed url")

// Config holds the settings for a crawl session.
// This struct is decoupled from Viper, making the crawler and its configuration
// more modular and easier to test independently.
type Config struct {
	// MaxDepth is the deepest link level followed; 0 fetches only the seeds.
	MaxDepth int
	// MaxPages caps the number of fetch attempts.
	MaxPages int
	// Delay is the pause after every fetch attempt.
	Delay            time.Duration
	PriorityKeywords []string
}

// Crawler walks one site breadth-first and extracts contact emails.
type Crawler struct {
	fetcher    Fetcher
	robots     RobotsPolicy
	matcher    *extract.Matcher
	associator *extract.Associator
	pauser     pauseController
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Crawler. A nil robots policy allows everything.
func New(
	fetcher Fetcher,
	robots RobotsPolicy,
	matcher *extract.Matcher,
	associator *extract.Associator,
	cfg Config,
	logger *zap.Logger,
) *Crawler {
	if robots == nil {
		robots = &allowAllPolicy{}
	}
	if matcher == nil {
		matcher = extract.NewMatcher()
	}
	if associator == nil {
		associator = extract.NewAssociator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		fetcher:    fetcher,
		robots:     robots,
		matcher:    matcher,
		associator: associator,
		pauser:     &timerPauseController{},
		cfg:        cfg,
		logger:     logger,
	}
}

// Run crawls from seeds until the frontier empties or the page budget is
// spent. Links are only followed on the seeds' hosts. If ctx is canceled the
// results gathered so far are returned together with the context error.
func (c *Crawler) Run(ctx context.Context, seeds []string) (*Aggregator, error) {
	agg := NewAggregator()
	frontier := NewFrontier(c.cfg.PriorityKeywords...)
	sites := make(map[string]struct{}, len(seeds))

	for _, seed := range seeds {
		if !isHTTP(seed) || !frontier.PushSeed(seed) {
			if frontier.Seen(seed) {
				c.logger.Debug("duplicate seed ignored", zap.String("url", seed))
				continue
			}
			c.logger.Warn("seed rejected", zap.String("url", seed))
			agg.Record(NewErrorResult(seed, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)))
			continue
		}
		sites[siteKey(seed)] = struct{}{}
	}

	pages := 0
	for pages < c.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return agg, fmt.Errorf("crawl canceled: %w", err)
		}
		item, ok := frontier.Pop()
		if !ok {
			break
		}
		if !c.robots.Allowed(ctx, item.URL) {
			c.logger.Info("robots.txt disallows url", zap.String("url", item.URL))
			metrics.ObserveRobotsDenied(item.URL)
			agg.RecordSkipped(item.URL)
			continue
		}

		pages++
		result, links, err := c.processPage(ctx, frontier, item)
		if err != nil {
			return agg, err
		}
		agg.Record(result)

		if item.Depth < c.cfg.MaxDepth {
			c.enqueueLinks(frontier, sites, links, item.Depth+1)
		}
		c.pauser.Pause(ctx, c.cfg.Delay)
	}

	summary := agg.Summary()
	c.logger.Info("crawl finished",
		zap.Int("pages", summary.PagesProcessed),
		zap.Int("succeeded", summary.PagesSucceeded),
		zap.Int("failed", summary.PagesFailed),
		zap.Int("emails", summary.EmailsFound),
		zap.Int("robots_skipped", summary.RobotsSkipped),
		zap.Int("pending", frontier.Len()),
	)
	return agg, nil
}

// processPage fetches and extracts a single page. Fetch failures become error
// results; only context cancellation is returned as an error.
func (c *Crawler) processPage(ctx context.Context, frontier *Frontier, item FrontierItem) (PageResult, []extract.Link, error) {
	c.logger.Debug("fetching page", zap.String("url", item.URL), zap.Int("depth", item.Depth))
	resp, err := c.fetcher.Fetch(ctx, FetchRequest{URL: item.URL, Depth: item.Depth})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return PageResult{}, nil, fmt.Errorf("crawl canceled: %w", ctxErr)
		}
		c.logger.Warn("fetch failed", zap.String("url", item.URL), zap.Error(err))
		metrics.ObservePage(item.URL, string(StatusError), 0, resp.Duration)
		return NewErrorResult(item.URL, err), nil, nil
	}

	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = item.URL
	}
	if finalURL != item.URL && frontier.MarkSeen(finalURL) {
		c.logger.Debug("redirect target marked seen", zap.String("url", item.URL), zap.String("final_url", finalURL))
	}
	doc, err := extract.ParseDocument(finalURL, resp.Body)
	if err != nil {
		c.logger.Warn("parse failed", zap.String("url", item.URL), zap.Error(err))
		metrics.ObservePage(item.URL, string(StatusError), len(resp.Body), resp.Duration)
		return NewErrorResult(item.URL, fmt.Errorf("parse page: %w", err)), nil, nil
	}

	var entries []EmailEntry
	sources := append([]string{doc.Text}, doc.MailtoAddresses()...)
	sources = append(sources, doc.HTML)
	for email := range c.matcher.Emails(sources...) {
		entries = append(entries, EmailEntry{Email: email, Name: c.associator.Associate(doc, email)})
	}
	result := NewSuccessResult(item.URL, doc.Title, entries)

	metrics.ObservePage(item.URL, string(StatusSuccess), len(resp.Body), resp.Duration)
	metrics.ObserveEmails(item.URL, result.EmailsFound())
	c.logger.Info("page processed",
		zap.String("url", item.URL),
		zap.Int("emails", result.EmailsFound()),
		zap.Duration("duration", resp.Duration),
	)
	return result, doc.Links(), nil
}

func (c *Crawler) enqueueLinks(frontier *Frontier, sites map[string]struct{}, links []extract.Link, depth int) {
	for _, link := range links {
		if !isHTTP(link.URL) || !crawlableResource(link.URL) {
			continue
		}
		if _, ok := sites[siteKey(link.URL)]; !ok {
			continue
		}
		if frontier.Push(link.URL, link.Text, depth) {
			c.logger.Debug("link queued", zap.String("url", link.URL), zap.Int("depth", depth))
		}
	}
}
