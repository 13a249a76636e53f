// Package cmd defines and implements the CLI for the contactcrawler executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/contactcrawler/internal/config"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactcrawler [urls...]",
		Short: "Scrape email addresses and the names next to them from web pages.",
		Long: `contactcrawler fetches the given pages, extracts email addresses, and tries
to pair each one with a person's name using structured data, contact sections
and the surrounding text. With --crawl it follows same-site links breadth-first,
contact and team pages first, within the depth and page limits.

Results are written to a csv, json, excel or markdown file and summarized on
stdout. Settings may also come from a config file or CRAWLER_* environment
variables, for example CRAWLER_CRAWLER_MAX_PAGES=20.`,
		Example: `  contactcrawler https://example.com/contact https://example.com/about
  contactcrawler --crawl --delay 3 --max-pages 50 --output excel https://example.com
  contactcrawler --crawl-website --no-robots https://example.com`,
		RunE: runScrape,
	}

	flags := cmd.Flags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.Bool("crawl", false, "follow same-site links from the given URLs")
	flags.Bool("crawl-website", false, "alias for --crawl")
	flags.Int("max-depth", 2, "maximum link depth when crawling")
	flags.Int("max-pages", 50, "maximum number of pages to fetch")
	flags.Float64("delay", 1, "seconds to wait after every request")
	flags.String("output", config.FormatCSV, "output format: csv, json, excel or markdown")
	flags.String("filename", "scraped_emails", "output filename without extension")
	flags.Bool("no-robots", false, "ignore robots.txt")
	flags.Bool("ignore-robots", false, "alias for --no-robots")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent header sent with every request")
	flags.Int("timeout", 10, "per-request timeout in seconds")
	flags.Bool("dev-logs", false, "human-readable development logging")
	flags.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
