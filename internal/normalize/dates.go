package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/facultytools/vitae/internal/model"
)

const minYear = 1900

// trailingYear matches a 4-digit year at the end of a date string, covering
// "August 2005", "2005", and "Fall 2005" alike.
var trailingYear = regexp.MustCompile(`(\d{4})\s*$`)

// dateCandidates is the fallback chain for single-date attributes, probed
// after the explicit year and range forms.
var dateCandidates = []string{
	"date",
	"dates",
	"publication_date",
	"presentation_date",
	"award_date",
	"end_date",
	"start_date",
}

// amountCandidates is the fallback chain for monetary attributes.
var amountCandidates = []string{
	"amount",
	"total_amount",
	"funding_amount",
	"award_amount",
}

// ResolveYear extracts a best-effort year from a record's raw fields. The
// encodings are probed in priority order; the first match wins:
//
//  1. an explicit numeric year/years field in plausible range
//  2. a dates range "X - Y": the end token's trailing year, or a
//     Current/Present sentinel
//  3. a single date field with a trailing 4-digit year
//
// nil means no usable year; such records stay out of year-keyed aggregates
// but still count toward type and category totals.
func ResolveYear(fields map[string]string) *model.YearRef {
	maxYear := time.Now().Year() + 10

	for _, name := range []string{"year", "years"} {
		if raw := strings.TrimSpace(fields[name]); raw != "" {
			if year, err := strconv.Atoi(raw); err == nil && year >= minYear && year <= maxYear {
				return &model.YearRef{Value: year}
			}
		}
	}

	if raw := strings.TrimSpace(fields["dates"]); raw != "" {
		if end, ok := rangeEnd(raw); ok {
			if isCurrentSentinel(end) {
				return &model.YearRef{Current: true}
			}
			if year, ok := extractTrailingYear(end); ok {
				return &model.YearRef{Value: year}
			}
		}
	}

	for _, name := range dateCandidates {
		raw := strings.TrimSpace(fields[name])
		if raw == "" {
			continue
		}
		if isCurrentSentinel(raw) {
			return &model.YearRef{Current: true}
		}
		if year, ok := extractTrailingYear(raw); ok {
			return &model.YearRef{Value: year}
		}
	}

	return nil
}

// ResolveAmount parses a record's monetary attribute. Missing, non-numeric,
// NaN, and non-positive values all mean "no amount": the record still counts
// toward its bucket but contributes nothing to sums.
func ResolveAmount(fields map[string]string) (float64, bool) {
	raw := FirstNonEmpty(fields, amountCandidates)
	if raw == "" {
		return 0, false
	}

	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// rangeEnd splits a date range on hyphen or dash and returns the trimmed end
// token. A value with no separator is not a range.
func rangeEnd(raw string) (string, bool) {
	for _, sep := range []string{"–", "—", "-"} {
		if idx := strings.LastIndex(raw, sep); idx >= 0 {
			return strings.TrimSpace(raw[idx+len(sep):]), true
		}
	}
	return "", false
}

func isCurrentSentinel(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "current", "present", "ongoing":
		return true
	}
	return false
}

func extractTrailingYear(raw string) (int, bool) {
	match := trailingYear.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0, false
	}
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
