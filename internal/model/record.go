// Package model defines the core domain types shared across the application.
package model

// RawRecord is one CV entry exactly as the remote data service returns it.
// DataDetails is an opaque serialized attribute blob; this side never mutates
// a raw record.
type RawRecord struct {
	UserID      string `json:"user_id"`
	SectionID   string `json:"data_section_id"`
	DataDetails string `json:"data_details"`
}

// YearRef locates a record in time. Current marks a sentinel end date
// ("Current"/"Present") which sorts as more recent than any concrete year.
type YearRef struct {
	Value   int
	Current bool
}

// After reports whether y is more recent than other.
func (y YearRef) After(other YearRef) bool {
	if y.Current != other.Current {
		return y.Current
	}
	return y.Value > other.Value
}

// NormalizedRecord is the canonical decoded form of one raw record. It is
// derived and ephemeral: recomputed on every aggregation pass, never persisted.
type NormalizedRecord struct {
	Raw       map[string]string
	UserID    string
	SectionID string
	Type      string
	Keywords  []string
	Year      *YearRef // nil when no usable year could be resolved
	Amount    float64  // meaningful only when HasAmount
	HasAmount bool
}

// Field returns the named raw attribute, or "" when absent.
func (r *NormalizedRecord) Field(name string) string {
	if r.Raw == nil {
		return ""
	}
	return r.Raw[name]
}

// CategoryBucket is one aggregation group. Buckets partition the normalized
// record set exactly once per grouping dimension.
type CategoryBucket struct {
	Key   string
	Count int
	Sum   float64
}

// KeywordCount is one entry of a keyword frequency table.
type KeywordCount struct {
	Keyword string
	Count   int
}

// FundingCategory holds the count and summed funding of one side of the
// grant/contract split.
type FundingCategory struct {
	Count   int
	Funding float64
}

// FundingSplit partitions grant-type records into exactly two categories.
type FundingSplit struct {
	Contract FundingCategory
	Grant    FundingCategory
}
