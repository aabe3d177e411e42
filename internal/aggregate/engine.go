// Package aggregate turns normalized CV records into dashboard series and
// category breakdowns. Every function is pure: the same input always yields
// the same bucket list, in deterministic order.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/facultytools/vitae/internal/model"
)

// ContractTypeLiteral is the one grant type counted as a contract in the
// funding split; every other grant-type record counts as a grant.
const ContractTypeLiteral = "All Types Contract"

// ByYear groups records by resolved year, ascending. Records without a usable
// year are excluded; they never receive a sentinel year silently.
func ByYear(records []*model.NormalizedRecord) []model.CategoryBucket {
	years := make(map[int]*model.CategoryBucket)
	for _, rec := range records {
		if rec.Year == nil || rec.Year.Current {
			continue
		}
		bucket, ok := years[rec.Year.Value]
		if !ok {
			bucket = &model.CategoryBucket{Key: strconv.Itoa(rec.Year.Value)}
			years[rec.Year.Value] = bucket
		}
		bucket.Count++
		if rec.HasAmount {
			bucket.Sum += rec.Amount
		}
	}

	keys := make([]int, 0, len(years))
	for year := range years {
		keys = append(keys, year)
	}
	sort.Ints(keys)

	buckets := make([]model.CategoryBucket, 0, len(keys))
	for _, year := range keys {
		buckets = append(buckets, *years[year])
	}
	return buckets
}

// ByType groups records by type. Records with no resolvable year still count
// here. Buckets keep first-seen order unless alphabetical is requested.
func ByType(records []*model.NormalizedRecord, alphabetical bool) []model.CategoryBucket {
	buckets := make([]model.CategoryBucket, 0)
	index := make(map[string]int)
	for _, rec := range records {
		i, ok := index[rec.Type]
		if !ok {
			i = len(buckets)
			index[rec.Type] = i
			buckets = append(buckets, model.CategoryBucket{Key: rec.Type})
		}
		buckets[i].Count++
		if rec.HasAmount {
			buckets[i].Sum += rec.Amount
		}
	}

	if alphabetical {
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].Key < buckets[j].Key
		})
	}
	return buckets
}

// ByTypeYear groups records along both dimensions with a "type/year" key,
// sorted by type then year. Year-less records are excluded, as for ByYear.
func ByTypeYear(records []*model.NormalizedRecord) []model.CategoryBucket {
	type groupKey struct {
		typ  string
		year int
	}
	groups := make(map[groupKey]*model.CategoryBucket)
	for _, rec := range records {
		if rec.Year == nil || rec.Year.Current {
			continue
		}
		key := groupKey{typ: rec.Type, year: rec.Year.Value}
		bucket, ok := groups[key]
		if !ok {
			bucket = &model.CategoryBucket{Key: fmt.Sprintf("%s/%d", key.typ, key.year)}
			groups[key] = bucket
		}
		bucket.Count++
		if rec.HasAmount {
			bucket.Sum += rec.Amount
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].typ != keys[j].typ {
			return keys[i].typ < keys[j].typ
		}
		return keys[i].year < keys[j].year
	})

	buckets := make([]model.CategoryBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, *groups[key])
	}
	return buckets
}

// KeywordFrequency counts keyword occurrences across all records in scope.
// Tokens are lower-cased and trimmed; singletons are dropped as noise. The
// result sorts by count descending, ties alphabetical, truncated to topN when
// topN > 0.
func KeywordFrequency(records []*model.NormalizedRecord, topN int) []model.KeywordCount {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, kw := range rec.Keywords {
			token := strings.ToLower(strings.TrimSpace(kw))
			if token == "" {
				continue
			}
			counts[token]++
		}
	}

	frequencies := make([]model.KeywordCount, 0, len(counts))
	for token, count := range counts {
		if count <= 1 {
			continue
		}
		frequencies = append(frequencies, model.KeywordCount{Keyword: token, Count: count})
	}

	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return frequencies[i].Keyword < frequencies[j].Keyword
	})

	if topN > 0 && len(frequencies) > topN {
		frequencies = frequencies[:topN]
	}
	return frequencies
}

// Funding partitions grant-type records into exactly two categories: contracts
// (the one contract type literal) and grants (everything else).
func Funding(records []*model.NormalizedRecord) model.FundingSplit {
	var split model.FundingSplit
	for _, rec := range records {
		if rec.Type == ContractTypeLiteral {
			split.Contract.Count++
			if rec.HasAmount {
				split.Contract.Funding += rec.Amount
			}
		} else {
			split.Grant.Count++
			if rec.HasAmount {
				split.Grant.Funding += rec.Amount
			}
		}
	}
	return split
}

// SortMostRecent orders a copy of records newest first. Sentinel-dated
// entries ("Current"/"Present") rank ahead of any concrete year; records with
// no usable year sort last, keeping their relative input order.
func SortMostRecent(records []*model.NormalizedRecord) []*model.NormalizedRecord {
	sorted := make([]*model.NormalizedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := sorted[i].Year, sorted[j].Year
		switch {
		case yi == nil:
			return false
		case yj == nil:
			return true
		default:
			return yi.After(*yj)
		}
	})
	return sorted
}
