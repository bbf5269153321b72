package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// MaxPages bounds the page count accepted from users. The walker itself
// accepts any non-negative count.
const MaxPages = 50

// MaxParallelism bounds concurrent page fetches.
const MaxParallelism = 16

// Config holds parser configuration.
type Config struct {
	BaseURL          string        `mapstructure:"base_url"`
	Pages            int           `mapstructure:"pages"`
	Parallelism      int           `mapstructure:"parallelism"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CacheSize        int           `mapstructure:"cache_size"`
	OutputFile       string        `mapstructure:"output"`
	OutputFormat     string        `mapstructure:"format"` // csv, json, or dual
	UserAgent        string        `mapstructure:"user_agent"`
	Verbose          bool          `mapstructure:"verbose"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
}

// DefaultConfig returns the demo catalog root, one page and a ten second
// request timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "http://books.toscrape.com/",
		Pages:            1,
		Parallelism:      1,
		Timeout:          10 * time.Second,
		CacheSize:        64,
		OutputFile:       "output/books.csv",
		OutputFormat:     "csv",
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:          false,
		RespectRobotsTxt: false,
		MetricsAddr:      "",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("base URL must end with /")
	}

	if c.Pages <= 0 || c.Pages > MaxPages {
		return fmt.Errorf("pages must be between 1 and %d", MaxPages)
	}
	if c.Parallelism <= 0 || c.Parallelism > MaxParallelism {
		return fmt.Errorf("parallelism must be between 1 and %d", MaxParallelism)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
