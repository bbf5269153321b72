// Package parser turns catalog page markup into book records.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-book-parser/models"
)

const (
	// ItemSelector matches one listing container on a catalog page.
	ItemSelector = "article.product_pod"

	// NoRating is stored when the rating element carries no classes at all.
	NoRating = "No rating"

	ratingMarker   = "star-rating"
	siteRootPrefix = "../../../"
	catalogueDir   = "catalogue/"
)

// ErrMissingField is wrapped by ExtractError when a field is absent.
var ErrMissingField = errors.New("missing field")

// ExtractError reports the field that prevented a listing from becoming a record.
type ExtractError struct {
	Field string
	Err   error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func missing(field string) *ExtractError {
	return &ExtractError{Field: field, Err: ErrMissingField}
}

// Listing is one item container in document order.
type Listing struct {
	Index     int
	Selection *goquery.Selection
}

// ExtractListings returns every listing container of a page. A page without
// listings yields an empty slice and no error.
func ExtractListings(html string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}

	items := doc.Find(ItemSelector)
	listings := make([]Listing, 0, items.Length())
	items.Each(func(i int, s *goquery.Selection) {
		listings = append(listings, Listing{Index: i, Selection: s})
	})
	return listings, nil
}

// ParseListing extracts one record. The first missing or malformed field
// aborts the record with an *ExtractError.
func ParseListing(l Listing, baseURL string) (models.BookRecord, error) {
	s := l.Selection
	if s == nil {
		return models.BookRecord{}, missing("title")
	}

	anchor := s.Find("h3 a").First()
	title, ok := anchor.Attr("title")
	if !ok || strings.TrimSpace(title) == "" {
		return models.BookRecord{}, missing("title")
	}

	priceEl := s.Find("p.price_color").First()
	if priceEl.Length() == 0 || priceEl.Text() == "" {
		return models.BookRecord{}, missing("price")
	}

	stockEl := s.Find("p.instock").First()
	if stockEl.Length() == 0 {
		return models.BookRecord{}, missing("availability")
	}

	ratingEl := s.Find("p").First()
	if ratingEl.Length() == 0 {
		return models.BookRecord{}, missing("rating")
	}
	classAttr, hasClass := ratingEl.Attr("class")
	rating, err := RatingLabel(classAttr, hasClass)
	if err != nil {
		return models.BookRecord{}, err
	}

	href, ok := anchor.Attr("href")
	if !ok || href == "" {
		return models.BookRecord{}, missing("link")
	}

	return models.BookRecord{
		Title:        title,
		Price:        priceEl.Text(),
		Availability: NormalizeAvailability(stockEl.Text()),
		Rating:       rating,
		Link:         ResolveLink(baseURL, href),
	}, nil
}

// RatingLabel derives the rating word from the class list of the rating
// element, e.g. "star-rating Three" gives "Three". The star-rating marker
// itself never counts as the label.
func RatingLabel(classAttr string, present bool) (string, error) {
	tokens := strings.Fields(classAttr)
	if !present || len(tokens) == 0 {
		return NoRating, nil
	}

	marked := false
	var labels []string
	for _, tok := range tokens {
		if strings.Contains(tok, "star") {
			marked = true
			if rest := strings.TrimSpace(strings.TrimPrefix(tok, ratingMarker)); rest != "" && tok != ratingMarker {
				labels = append(labels, strings.TrimLeft(rest, "-"))
			}
			continue
		}
		labels = append(labels, tok)
	}

	if !marked {
		return "", &ExtractError{Field: "rating", Err: fmt.Errorf("no star class in %q", classAttr)}
	}
	if len(labels) != 1 {
		return "", &ExtractError{Field: "rating", Err: fmt.Errorf("expected one rating label in %q, got %d", classAttr, len(labels))}
	}
	return labels[0], nil
}

// ResolveLink makes a listing href absolute. Index pages link three levels up
// to the site root; category pages link relative to catalogue/.
func ResolveLink(baseURL, href string) string {
	if strings.HasPrefix(href, siteRootPrefix) {
		return baseURL + strings.TrimPrefix(href, siteRootPrefix)
	}
	return baseURL + catalogueDir + href
}

// NormalizeAvailability trims spacing from the availability text.
func NormalizeAvailability(text string) string {
	return strings.TrimSpace(text)
}

// RatingToNumeric converts the textual rating to a numeric scale.
func RatingToNumeric(rating string) int {
	switch strings.TrimSpace(rating) {
	case "One":
		return 1
	case "Two":
		return 2
	case "Three":
		return 3
	case "Four":
		return 4
	case "Five":
		return 5
	default:
		return 0
	}
}
