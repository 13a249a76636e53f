package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("crawl", false, "")
	fs.Bool("crawl-website", false, "")
	fs.Int("max-depth", 2, "")
	fs.Int("max-pages", 50, "")
	fs.Float64("delay", 1, "")
	fs.Bool("no-robots", false, "")
	fs.Bool("ignore-robots", false, "")
	fs.String("user-agent", DefaultUserAgent, "")
	fs.Int("timeout", 10, "")
	fs.String("output", FormatCSV, "")
	fs.String("filename", "scraped_emails", "")
	fs.Bool("dev-logs", false, "")
	fs.String("metrics-file", "", "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil, []string{"https://site.test/contact"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Crawler.MaxPages != 50 || cfg.Crawler.MaxDepth != 2 {
		t.Fatalf("unexpected crawl limits: %+v", cfg.Crawler)
	}
	if !cfg.Crawler.RespectRobots {
		t.Fatal("expected robots to be respected by default")
	}
	if cfg.Crawler.Crawl {
		t.Fatal("expected crawl mode to be off by default")
	}
	if got := cfg.Crawler.EffectiveMaxDepth(); got != 0 {
		t.Fatalf("expected effective depth 0 outside crawl mode, got %d", got)
	}
	if got := cfg.Crawler.Delay(); got != time.Second {
		t.Fatalf("expected 1s delay, got %v", got)
	}
	if got := cfg.HTTP.Timeout(); got != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", got)
	}
	if cfg.Output.Format != FormatCSV || cfg.Output.Filename != "scraped_emails" {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Extract.ContextWindow != 100 {
		t.Fatalf("expected context window 100, got %d", cfg.Extract.ContextWindow)
	}
	if cfg.Crawler.UserAgent != DefaultUserAgent {
		t.Fatalf("unexpected user agent %q", cfg.Crawler.UserAgent)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  urls: ["https://site.test/"]
  crawl: true
  max_depth: 4
  max_pages: 12
  delay_seconds: 0.5
  respect_robots: false
  user_agent: file-agent
http:
  timeout_seconds: 3
extract:
  context_window: 60
output:
  format: JSON
  filename: people
logging:
  development: true
metrics:
  file: /tmp/crawl.prom
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path, nil, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Crawler.URLs) != 1 || cfg.Crawler.URLs[0] != "https://site.test/" {
		t.Fatalf("expected seed from file, got %v", cfg.Crawler.URLs)
	}
	if got := cfg.Crawler.EffectiveMaxDepth(); got != 4 {
		t.Fatalf("expected effective depth 4 in crawl mode, got %d", got)
	}
	if cfg.Crawler.MaxPages != 12 || cfg.Crawler.RespectRobots {
		t.Fatalf("expected crawler overrides to apply: %+v", cfg.Crawler)
	}
	if got := cfg.Crawler.Delay(); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms delay, got %v", got)
	}
	if cfg.Output.Format != FormatJSON {
		t.Fatalf("expected format to be normalized to json, got %q", cfg.Output.Format)
	}
	if !cfg.Logging.Development || cfg.Metrics.File != "/tmp/crawl.prom" {
		t.Fatalf("expected logging/metrics overrides: %+v %+v", cfg.Logging, cfg.Metrics)
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("crawler:\n  max_pages: 7\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	flags := newFlagSet(t, "--crawl-website", "--max-pages", "3", "--ignore-robots", "--output", "excel", "--delay", "0")
	cfg, err := Load(path, flags, []string{"https://a.test", "https://b.test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Crawler.Crawl {
		t.Fatal("expected --crawl-website alias to enable crawl mode")
	}
	if cfg.Crawler.MaxPages != 3 {
		t.Fatalf("expected flag to beat file, got %d", cfg.Crawler.MaxPages)
	}
	if cfg.Crawler.RespectRobots {
		t.Fatal("expected --ignore-robots to disable robots checks")
	}
	if cfg.Output.Format != FormatExcel {
		t.Fatalf("expected excel output, got %q", cfg.Output.Format)
	}
	if cfg.Crawler.Delay() != 0 {
		t.Fatalf("expected zero delay, got %v", cfg.Crawler.Delay())
	}
	if len(cfg.Crawler.URLs) != 2 {
		t.Fatalf("expected positional urls, got %v", cfg.Crawler.URLs)
	}
}

func TestLoadUnchangedFlagsKeepDefaults(t *testing.T) {
	flags := newFlagSet(t)
	cfg, err := Load("", flags, []string{"https://site.test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Crawler.RespectRobots {
		t.Fatal("untouched --no-robots must not disable robots checks")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRAWLER_CRAWLER_MAX_PAGES", "9")
	t.Setenv("CRAWLER_OUTPUT_FORMAT", "markdown")

	cfg, err := Load("", nil, []string{"https://site.test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.MaxPages != 9 || cfg.Output.Format != FormatMarkdown {
		t.Fatalf("expected env overrides, got %+v %+v", cfg.Crawler, cfg.Output)
	}
}

func TestLoadRequiresURLs(t *testing.T) {
	_, err := Load("", nil, nil)
	if !errors.Is(err, ErrNoURLs) {
		t.Fatalf("expected ErrNoURLs, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil, []string{"https://site.test"})
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read config error, got %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	base := Config{
		Crawler: CrawlerConfig{URLs: []string{"https://site.test"}, MaxPages: 1, UserAgent: "ua"},
		HTTP:    HTTPConfig{TimeoutSeconds: 1},
		Extract: ExtractConfig{ContextWindow: 10},
		Output:  OutputConfig{Format: FormatCSV, Filename: "out"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty url", func(c *Config) { c.Crawler.URLs = []string{" "} }, "crawler.urls"},
		{"negative depth", func(c *Config) { c.Crawler.MaxDepth = -1 }, "crawler.max_depth"},
		{"zero pages", func(c *Config) { c.Crawler.MaxPages = 0 }, "crawler.max_pages"},
		{"negative delay", func(c *Config) { c.Crawler.DelaySeconds = -1 }, "crawler.delay_seconds"},
		{"missing agent", func(c *Config) { c.Crawler.UserAgent = "" }, "crawler.user_agent"},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, "http.timeout_seconds"},
		{"zero window", func(c *Config) { c.Extract.ContextWindow = 0 }, "extract.context_window"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"empty filename", func(c *Config) { c.Output.Filename = "" }, "output.filename"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.Crawler.URLs = append([]string(nil), base.Crawler.URLs...)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
