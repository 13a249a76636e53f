package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/contactcrawler/internal/config"
	"github.com/JakeFAU/contactcrawler/internal/crawler"
	"github.com/JakeFAU/contactcrawler/internal/extract"
	collyfetcher "github.com/JakeFAU/contactcrawler/internal/fetcher/colly"
	"github.com/JakeFAU/contactcrawler/internal/id/uuid"
	"github.com/JakeFAU/contactcrawler/internal/logging"
	"github.com/JakeFAU/contactcrawler/internal/metrics"
	"github.com/JakeFAU/contactcrawler/internal/output"
)

func runScrape(cmd *cobra.Command, args []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("read --config: %w", err)
	}
	cfg, err := config.Load(cfgPath, cmd.Flags(), args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Configuration is valid; later failures are not usage errors.
	cmd.SilenceUsage = true

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	runID, err := uuid.New().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))
	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting to scrape %d page(s)...\n", len(cfg.Crawler.URLs))

	agg, runErr := buildCrawler(cfg, logger).Run(ctx, cfg.Crawler.URLs)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run crawler: %w", runErr)
	}
	if runErr != nil {
		logger.Warn("crawl interrupted; writing partial results")
	}

	pages := agg.Results()
	path, err := output.WriteFile(cfg.Output.Format, cfg.Output.Filename, pages)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	if err := output.WriteSummary(out, pages, agg.Summary()); err != nil {
		return err //nolint:wrapcheck // already wrapped by output
	}
	fmt.Fprintf(out, "\nResults saved to %s\n", path)
	logger.Info("results saved", zap.String("path", path), zap.Int("pages", len(pages)))

	if cfg.Metrics.File != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			return err //nolint:wrapcheck // already wrapped by metrics
		}
	}
	return nil
}

// buildCrawler wires the fetcher, robots checker and extractors around one
// shared HTTP transport.
func buildCrawler(cfg config.Config, logger *zap.Logger) *crawler.Crawler {
	transport := collyfetcher.NewTransport()
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.HTTP.Timeout(),
		Transport: transport,
	})
	robots := crawler.NewRobotsEnforcer(
		cfg.Crawler.RespectRobots,
		cfg.Crawler.UserAgent,
		&http.Client{Transport: transport, Timeout: cfg.HTTP.Timeout()},
		logger.Named("robots"),
	)
	associator := extract.NewAssociator(extract.WithContextWindow(cfg.Extract.ContextWindow))

	return crawler.New(
		fetcher,
		robots,
		extract.NewMatcher(),
		associator,
		crawler.Config{
			MaxDepth: cfg.Crawler.EffectiveMaxDepth(),
			MaxPages: cfg.Crawler.MaxPages,
			Delay:    cfg.Crawler.Delay(),
		},
		logger.Named("crawler"),
	)
}
