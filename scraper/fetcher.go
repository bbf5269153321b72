// Package scraper fetches catalog pages and walks the catalog pagination.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-book-parser/config"
)

const (
	ctxStatusKey = "status"
	ctxBodyKey   = "body"
)

// Fetcher returns the markup of one page. Implementations return *FetchError
// on failure.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// PageFetcher issues one synchronous GET per page through a colly collector.
// It never retries.
type PageFetcher struct {
	collector *colly.Collector
	cache     *lru.Cache[string, string]
	metrics   *Metrics
}

// NewPageFetcher builds a fetcher for the host of cfg.BaseURL.
func NewPageFetcher(cfg *config.Config, metrics *Metrics) (*PageFetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.AllowURLRevisit = true
	collector.ParseHTTPErrorResponse = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatusKey, r.StatusCode)
		r.Ctx.Put(ctxBodyKey, string(r.Body))
	})

	f := &PageFetcher{
		collector: collector,
		metrics:   metrics,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, string](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		f.cache = cache
	}
	return f, nil
}

// Fetch returns the body of pageURL when the server answers 2xx.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", f.fail(newFetchError(pageURL, 0, err))
	}

	if f.cache != nil {
		if body, ok := f.cache.Get(pageURL); ok {
			f.metrics.IncCacheHit()
			slog.Debug("page served from cache", slog.String("url", pageURL))
			return body, nil
		}
	}

	reqCtx := colly.NewContext()
	start := time.Now()
	err := f.collector.Request(http.MethodGet, pageURL, nil, reqCtx, nil)
	f.metrics.ObserveDuration(time.Since(start))

	status, _ := reqCtx.GetAny(ctxStatusKey).(int)
	if err != nil {
		return "", f.fail(newFetchError(pageURL, status, err))
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", f.fail(newFetchError(pageURL, status, nil))
	}

	body, _ := reqCtx.GetAny(ctxBodyKey).(string)
	if f.cache != nil {
		f.cache.Add(pageURL, body)
	}
	return body, nil
}

// Purge drops every cached page.
func (f *PageFetcher) Purge() {
	if f.cache != nil {
		f.cache.Purge()
	}
}

func (f *PageFetcher) fail(err *FetchError) *FetchError {
	f.metrics.IncFetchError(err.Kind)
	slog.Debug("page fetch failed",
		slog.String("url", err.URL),
		slog.Int("status", err.StatusCode),
		slog.String("kind", string(err.Kind)),
	)
	return err
}
