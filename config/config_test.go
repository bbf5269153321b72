package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = 0
			},
			wantErr: "parallelism",
		},
		{
			name: "zero pages",
			mutate: func(cfg *Config) {
				cfg.Pages = 0
			},
			wantErr: "pages",
		},
		{
			name: "too many pages",
			mutate: func(cfg *Config) {
				cfg.Pages = MaxPages + 1
			},
			wantErr: "pages",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "relative url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "books.toscrape.com/"
			},
			wantErr: "base URL",
		},
		{
			name: "missing trailing slash",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://books.toscrape.com"
			},
			wantErr: "end with /",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative cache",
			mutate: func(cfg *Config) {
				cfg.CacheSize = -1
			},
			wantErr: "cache size",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOOKPARSER_PAGES", "7")
	t.Setenv("BOOKPARSER_TIMEOUT", "3s")
	t.Setenv("BOOKPARSER_FORMAT", "JSON")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pages)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookparser.yaml")
	body := "base_url: http://example.test/\npages: 4\nparallelism: 2\ncache_size: 0\noutput: out/books.json\nformat: dual\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/", cfg.BaseURL)
	assert.Equal(t, 4, cfg.Pages)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "out/books.json", cfg.OutputFile)
	assert.Equal(t, "dual", cfg.OutputFormat)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
