package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FetchErrorKind groups fetch failures for logs and metrics.
type FetchErrorKind string

const (
	KindTimeout     FetchErrorKind = "timeout"
	KindConnection  FetchErrorKind = "connection"
	KindForbidden   FetchErrorKind = "forbidden"
	KindNotFound    FetchErrorKind = "not_found"
	KindRateLimited FetchErrorKind = "rate_limited"
	KindHTTPStatus  FetchErrorKind = "http_status"
	KindCanceled    FetchErrorKind = "canceled"
	KindOther       FetchErrorKind = "other"
)

// FetchError is returned by Fetch for any transport failure or non-2xx status.
// It never aborts a walk.
type FetchError struct {
	URL        string
	StatusCode int
	Kind       FetchErrorKind
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v (%s)", e.URL, e.Err, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(url string, statusCode int, err error) *FetchError {
	if err == nil {
		if statusCode == 0 {
			err = errors.New("no response")
		} else {
			err = fmt.Errorf("http status %d", statusCode)
		}
	}
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Kind:       classifyError(err, statusCode),
		Err:        err,
	}
}

func classifyError(err error, statusCode int) FetchErrorKind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	switch {
	case statusCode == http.StatusForbidden:
		return KindForbidden
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode != 0 && (statusCode < 200 || statusCode > 299):
		return KindHTTPStatus
	}
	return KindOther
}

// InputError rejects a walk before any request is made.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
