package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-book-parser/config"
	"github.com/aluiziolira/go-book-parser/exporter"
	"github.com/aluiziolira/go-book-parser/scraper"
)

// CLI holds the command line flags. Defaults come from the loaded config so
// flags override file and environment values.
type CLI struct {
	BaseURL       string        `name:"base-url" help:"Catalog root URL, must end with /." default:"${base_url}"`
	Pages         int           `short:"p" help:"Number of catalog pages to parse (1-${max_pages})." default:"${pages}"`
	Parallel      int           `help:"Pages fetched concurrently. Output order is unaffected." default:"${parallel}"`
	Timeout       time.Duration `help:"Per-request timeout." default:"${timeout}"`
	CacheSize     int           `name:"cache-size" help:"Pages kept in the in-memory cache (0 disables)." default:"${cache_size}"`
	Output        string        `short:"o" help:"Output file path." default:"${output}"`
	Format        string        `short:"f" help:"Output format." enum:"csv,json,dual" default:"${format}"`
	UserAgent     string        `name:"user-agent" help:"User-Agent header sent with every request." default:"${user_agent}"`
	RespectRobots bool          `name:"respect-robots" help:"Respect robots.txt directives." default:"${respect_robots}"`
	MetricsAddr   string        `name:"metrics-addr" help:"Prometheus metrics listen address (e.g. :9090)." default:"${metrics_addr}"`
	Verbose       bool          `short:"v" help:"Enable debug logging." default:"${verbose}"`
}

func main() {
	os.Exit(run())
}

func run() int {
	base, err := config.Load(os.Getenv(config.ConfigPathEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	var cli CLI
	kong.Parse(&cli,
		kong.Name("bookparser"),
		kong.Description("Parse catalog pages of a books.toscrape.com style store and export them to CSV or JSON."),
		kong.UsageOnError(),
		kong.Vars(configVars(base)),
	)

	cfg := cli.Config()
	slog.SetDefault(newLogger(cfg.Verbose))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return 1
	}
	format, err := exporter.ParseFormat(cfg.OutputFormat)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := scraper.NewMetrics()
	metricsServer := startMetricsServer(cfg.MetricsAddr, metrics)
	defer stopMetricsServer(metricsServer)

	fetcher, err := scraper.NewPageFetcher(cfg, metrics)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		return 1
	}
	walker := scraper.NewWalker(fetcher,
		scraper.WithSink(scraper.LogSink(slog.Default())),
		scraper.WithMetrics(metrics),
		scraper.WithParallelism(cfg.Parallelism),
	)

	slog.Info("starting parse",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("pages", cfg.Pages),
		slog.Int("parallel", cfg.Parallelism),
	)

	result, err := walker.Run(ctx, cfg.BaseURL, cfg.Pages)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Warn("parse interrupted, exporting what was collected")
	case err != nil:
		slog.Error("parse failed", slog.Any("error", err))
		return 1
	}

	paths, err := exporter.Export(cfg.OutputFile, format, result.Records)
	if errors.Is(err, exporter.ErrNoRecords) {
		slog.Warn("nothing to export", slog.String("summary", result.Summary()))
		fmt.Println(renderSummary(result, nil))
		return 1
	}
	if err != nil {
		slog.Error("export failed", slog.Any("error", err))
		return 1
	}

	for _, path := range paths {
		slog.Info("records exported", slog.String("path", path), slog.Int("records", result.Len()))
	}
	fmt.Println(renderSummary(result, paths))
	return 0
}

// Config converts parsed flags into a config.Config.
func (c *CLI) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.Pages = c.Pages
	cfg.Parallelism = c.Parallel
	cfg.Timeout = c.Timeout
	cfg.CacheSize = c.CacheSize
	cfg.OutputFile = c.Output
	cfg.OutputFormat = c.Format
	cfg.UserAgent = c.UserAgent
	cfg.RespectRobotsTxt = c.RespectRobots
	cfg.MetricsAddr = c.MetricsAddr
	cfg.Verbose = c.Verbose
	return cfg
}

func configVars(cfg *config.Config) kong.Vars {
	return kong.Vars{
		"base_url":       cfg.BaseURL,
		"pages":          strconv.Itoa(cfg.Pages),
		"max_pages":      strconv.Itoa(config.MaxPages),
		"parallel":       strconv.Itoa(cfg.Parallelism),
		"timeout":        cfg.Timeout.String(),
		"cache_size":     strconv.Itoa(cfg.CacheSize),
		"output":         cfg.OutputFile,
		"format":         cfg.OutputFormat,
		"user_agent":     cfg.UserAgent,
		"respect_robots": strconv.FormatBool(cfg.RespectRobotsTxt),
		"metrics_addr":   cfg.MetricsAddr,
		"verbose":        strconv.FormatBool(cfg.Verbose),
	}
}

func startMetricsServer(addr string, metrics *scraper.Metrics) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}

	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func stopMetricsServer(server *http.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if isTerminal(os.Stdout) {
		return slog.New(humanlog.NewHandler(os.Stdout, &humanlog.Options{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
