package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/go-book-parser/models"
	"github.com/aluiziolira/go-book-parser/parser"
)

// Walker drives pagination over a catalog and collects records.
type Walker struct {
	fetcher     Fetcher
	sink        models.EventSink
	metrics     *Metrics
	parallelism int
}

// Option configures a Walker.
type Option func(*Walker)

// WithSink routes progress events to sink instead of the default logger.
func WithSink(sink models.EventSink) Option {
	return func(w *Walker) {
		if sink != nil {
			w.sink = sink
		}
	}
}

// WithMetrics records page and item outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(w *Walker) {
		w.metrics = m
	}
}

// WithParallelism fetches up to n pages at once. Records and events keep page
// order regardless of n.
func WithParallelism(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.parallelism = n
		}
	}
}

// NewWalker builds a walker around fetcher.
func NewWalker(fetcher Fetcher, opts ...Option) *Walker {
	w := &Walker{
		fetcher:     fetcher,
		sink:        LogSink(slog.Default()),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PageURL returns the catalog URL of a 1-based page.
func PageURL(baseURL string, page int) string {
	if page <= 1 {
		return baseURL
	}
	return fmt.Sprintf("%scatalogue/page-%d.html", baseURL, page)
}

type itemOutcome struct {
	index  int
	record models.BookRecord
	err    error
}

type pageOutcome struct {
	page  int
	url   string
	items []itemOutcome
	err   error
}

// Run walks pages 1..pageCount. Page and listing failures become events and
// never abort the walk; only invalid input does. Cancellation is honoured
// between pages: the records gathered so far are returned with ctx.Err().
func (w *Walker) Run(ctx context.Context, baseURL string, pageCount int) (*models.RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateInput(baseURL, pageCount); err != nil {
		return nil, err
	}

	result := models.NewRunResult(pageCount)
	var err error
	if w.parallelism > 1 && pageCount > 1 {
		err = w.runParallel(ctx, baseURL, pageCount, result)
	} else {
		err = w.runSequential(ctx, baseURL, pageCount, result)
	}
	result.EndTime = time.Now()

	w.emit(models.Event{
		Kind:    models.EventRunComplete,
		Message: fmt.Sprintf("run complete: %s", result.Summary()),
		Err:     err,
	})
	return result, err
}

func (w *Walker) runSequential(ctx context.Context, baseURL string, pageCount int, result *models.RunResult) error {
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		pageURL := PageURL(baseURL, page)
		w.announce(page, pageURL)
		w.merge(result, w.processPage(ctx, baseURL, page, pageURL))
	}
	return nil
}

func (w *Walker) runParallel(ctx context.Context, baseURL string, pageCount int, result *models.RunResult) error {
	outcomes := make([]*pageOutcome, pageCount)
	pages := make(chan int)

	workers := min(w.parallelism, pageCount)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pages {
				outcome := w.processPage(ctx, baseURL, page, PageURL(baseURL, page))
				outcomes[page-1] = &outcome
			}
		}()
	}

	var cancelErr error
dispatch:
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break dispatch
		case pages <- page:
		}
	}
	close(pages)
	wg.Wait()

	// Dispatch is in page order, so undispatched pages form a suffix.
	for _, outcome := range outcomes {
		if outcome == nil {
			break
		}
		w.announce(outcome.page, outcome.url)
		w.merge(result, *outcome)
	}
	return cancelErr
}

func (w *Walker) processPage(ctx context.Context, baseURL string, page int, pageURL string) pageOutcome {
	outcome := pageOutcome{page: page, url: pageURL}

	body, err := w.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		outcome.err = err
		return outcome
	}

	listings, err := parser.ExtractListings(body)
	if err != nil {
		outcome.err = err
		return outcome
	}

	outcome.items = make([]itemOutcome, 0, len(listings))
	for _, listing := range listings {
		record, err := parser.ParseListing(listing, baseURL)
		outcome.items = append(outcome.items, itemOutcome{
			index:  listing.Index,
			record: record,
			err:    err,
		})
	}
	return outcome
}

func (w *Walker) announce(page int, pageURL string) {
	w.emit(models.Event{
		Kind:    models.EventPageStart,
		Page:    page,
		URL:     pageURL,
		Message: fmt.Sprintf("processing page %d: %s", page, pageURL),
	})
}

func (w *Walker) merge(result *models.RunResult, o pageOutcome) {
	if o.err != nil {
		result.PageErrors++
		result.FailedURLs = append(result.FailedURLs, o.url)
		w.metrics.IncPage("failed")
		w.emit(models.Event{
			Kind:    models.EventPageError,
			Page:    o.page,
			URL:     o.url,
			Err:     o.err,
			Message: fmt.Sprintf("page %d failed: %v", o.page, o.err),
		})
		return
	}

	result.PagesFetched++
	result.ItemsFound += len(o.items)
	w.metrics.IncPage("ok")
	w.emit(models.Event{
		Kind:    models.EventItemsFound,
		Page:    o.page,
		URL:     o.url,
		Message: fmt.Sprintf("page %d: found %d books", o.page, len(o.items)),
	})

	for _, item := range o.items {
		if item.err != nil {
			result.ItemErrors++
			w.metrics.IncItemError(failedField(item.err))
			w.emit(models.Event{
				Kind:    models.EventItemError,
				Page:    o.page,
				URL:     o.url,
				Err:     item.err,
				Message: fmt.Sprintf("page %d item %d skipped: %v", o.page, item.index+1, item.err),
			})
			continue
		}

		result.Records = append(result.Records, item.record)
		w.metrics.IncRecords()
		record := item.record
		w.emit(models.Event{
			Kind:    models.EventItemAdded,
			Page:    o.page,
			URL:     o.url,
			Record:  &record,
			Message: fmt.Sprintf("added: %s - %s", record.Title, record.Price),
		})
	}
}

func (w *Walker) emit(e models.Event) {
	if w.sink != nil {
		w.sink(e)
	}
}

func failedField(err error) string {
	var extractErr *parser.ExtractError
	if errors.As(err, &extractErr) {
		return extractErr.Field
	}
	return "unknown"
}

func validateInput(baseURL string, pageCount int) error {
	if pageCount < 0 {
		return &InputError{Field: "page count", Reason: fmt.Sprintf("must not be negative, got %d", pageCount)}
	}

	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return &InputError{Field: "base URL", Reason: fmt.Sprintf("%q is not an absolute URL", baseURL)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InputError{Field: "base URL", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if !strings.HasSuffix(baseURL, "/") {
		return &InputError{Field: "base URL", Reason: "must end with /"}
	}
	return nil
}
