package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. BOOKPARSER_PAGES.
	EnvPrefix = "BOOKPARSER"
	// ConfigPathEnv points at an explicit config file.
	ConfigPathEnv = "BOOKPARSER_CONFIG"
)

// Load layers defaults, an optional YAML file and BOOKPARSER_* environment
// variables. With an empty path it looks for ./bookparser.yaml and silently
// skips it when absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bookparser")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	return cfg, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("pages", def.Pages)
	v.SetDefault("parallelism", def.Parallelism)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("cache_size", def.CacheSize)
	v.SetDefault("output", def.OutputFile)
	v.SetDefault("format", def.OutputFormat)
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("respect_robots", def.RespectRobotsTxt)
	v.SetDefault("metrics_addr", def.MetricsAddr)
}
