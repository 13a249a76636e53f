// Package config loads and validates crawler configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats understood by the output writers.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatExcel    = "excel"
	FormatMarkdown = "markdown"
)

// DefaultUserAgent identifies the crawler to the sites it visits.
const DefaultUserAgent = "ContactCrawler/1.0 (+https://github.com/JakeFAU/contactcrawler)"

// ErrNoURLs is returned when no seed URL was supplied by any source.
var ErrNoURLs = errors.New("at least one URL is required")

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Extract ExtractConfig `mapstructure:"extract"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CrawlerConfig governs the frontier and politeness behavior.
type CrawlerConfig struct {
	URLs          []string `mapstructure:"urls"`
	Crawl         bool     `mapstructure:"crawl"`
	MaxDepth      int      `mapstructure:"max_depth"`
	MaxPages      int      `mapstructure:"max_pages"`
	DelaySeconds  float64  `mapstructure:"delay_seconds"`
	RespectRobots bool     `mapstructure:"respect_robots"`
	UserAgent     string   `mapstructure:"user_agent"`
}

// HTTPConfig configures the shared HTTP session.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ExtractConfig tunes the name association heuristics.
type ExtractConfig struct {
	ContextWindow int `mapstructure:"context_window"`
}

// OutputConfig selects the result file format and base name.
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Filename string `mapstructure:"filename"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MetricsConfig controls the optional Prometheus textfile dump.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// flagBinding maps a config key to the CLI flags that may set it. When more
// than one alias is given, the first flag the user actually changed wins.
type flagBinding struct {
	key    string
	flags  []string
	invert bool
}

var flagBindings = []flagBinding{
	{key: "crawler.crawl", flags: []string{"crawl", "crawl-website"}},
	{key: "crawler.max_depth", flags: []string{"max-depth"}},
	{key: "crawler.max_pages", flags: []string{"max-pages"}},
	{key: "crawler.delay_seconds", flags: []string{"delay"}},
	{key: "crawler.respect_robots", flags: []string{"no-robots", "ignore-robots"}, invert: true},
	{key: "crawler.user_agent", flags: []string{"user-agent"}},
	{key: "http.timeout_seconds", flags: []string{"timeout"}},
	{key: "output.format", flags: []string{"output"}},
	{key: "output.filename", flags: []string{"filename"}},
	{key: "logging.development", flags: []string{"dev-logs"}},
	{key: "metrics.file", flags: []string{"metrics-file"}},
}

// Load builds a Config from defaults, an optional file, CRAWLER_* environment
// variables, explicitly set CLI flags, and positional seed URLs, in that order
// of increasing precedence.
func Load(path string, flags *pflag.FlagSet, urls []string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyFlags(v, flags); err != nil {
		return Config{}, err
	}
	if len(urls) > 0 {
		v.Set("crawler.urls", urls)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.urls", []string{})
	v.SetDefault("crawler.crawl", false)
	v.SetDefault("crawler.max_depth", 2)
	v.SetDefault("crawler.max_pages", 50)
	v.SetDefault("crawler.delay_seconds", 1)
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.user_agent", DefaultUserAgent)
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("extract.context_window", 100)
	v.SetDefault("output.format", FormatCSV)
	v.SetDefault("output.filename", "scraped_emails")
	v.SetDefault("logging.development", false)
	v.SetDefault("metrics.file", "")
}

func applyFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for _, binding := range flagBindings {
		for _, name := range binding.flags {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if binding.invert {
				on, err := flags.GetBool(name)
				if err != nil {
					return fmt.Errorf("read flag --%s: %w", name, err)
				}
				v.Set(binding.key, !on)
			} else {
				v.Set(binding.key, f.Value.String())
			}
			break
		}
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Crawler.URLs) == 0 {
		return ErrNoURLs
	}
	for _, raw := range c.Crawler.URLs {
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("crawler.urls must not contain empty entries")
		}
	}
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be > 0")
	}
	if c.Crawler.DelaySeconds < 0 {
		return fmt.Errorf("crawler.delay_seconds must be >= 0")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Extract.ContextWindow <= 0 {
		return fmt.Errorf("extract.context_window must be > 0")
	}
	switch c.Output.Format {
	case FormatCSV, FormatJSON, FormatExcel, FormatMarkdown:
	default:
		return fmt.Errorf("output.format %q must be one of csv, json, excel, markdown", c.Output.Format)
	}
	if strings.TrimSpace(c.Output.Filename) == "" {
		return fmt.Errorf("output.filename must be set")
	}
	return nil
}

// EffectiveMaxDepth is the link depth the frontier may reach. Outside crawl
// mode only the seed URLs themselves are fetched.
func (c CrawlerConfig) EffectiveMaxDepth() int {
	if !c.Crawl {
		return 0
	}
	return c.MaxDepth
}

// Delay converts the configured politeness delay to a duration.
func (c CrawlerConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// Timeout converts the HTTP timeout to a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
