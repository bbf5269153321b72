// Package models defines data structures shared by the walker and the exporters.
package models

import (
	"fmt"
	"time"
)

// RecordHeader is the export column order for BookRecord.
var RecordHeader = []string{"title", "price", "availability", "rating", "link"}

// BookRecord is one parsed catalog listing.
type BookRecord struct {
	Title        string `csv:"title" json:"title"`
	Price        string `csv:"price" json:"price"`
	Availability string `csv:"availability" json:"availability"`
	Rating       string `csv:"rating" json:"rating"`
	Link         string `csv:"link" json:"link"`
}

// Fields returns the record values in RecordHeader order.
func (b BookRecord) Fields() []string {
	return []string{b.Title, b.Price, b.Availability, b.Rating, b.Link}
}

// RunResult holds everything one walk produced. The walker appends to it while
// running and never touches it again once Run returns.
type RunResult struct {
	Records []BookRecord

	StartTime time.Time
	EndTime   time.Time

	PagesRequested int
	PagesFetched   int
	PageErrors     int
	ItemsFound     int
	ItemErrors     int
	FailedURLs     []string
}

// NewRunResult returns an empty result stamped with the walk start time.
func NewRunResult(pagesRequested int) *RunResult {
	return &RunResult{
		Records:        make([]BookRecord, 0),
		StartTime:      time.Now(),
		PagesRequested: pagesRequested,
	}
}

// Len reports the number of collected records.
func (r *RunResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// Empty reports whether there is nothing to export.
func (r *RunResult) Empty() bool {
	return r.Len() == 0
}

// Duration is the wall time of the walk.
func (r *RunResult) Duration() time.Duration {
	if r == nil || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Summary renders the partial-success line shown at the end of a walk.
func (r *RunResult) Summary() string {
	if r == nil {
		return "0 of 0 items parsed"
	}
	return fmt.Sprintf("%d of %d items parsed (%d/%d pages fetched)",
		len(r.Records), r.ItemsFound, r.PagesFetched, r.PagesRequested)
}
