package aggregate

import (
	"testing"

	"github.com/facultytools/vitae/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(year *model.YearRef, typ string, amount float64, keywords ...string) *model.NormalizedRecord {
	r := &model.NormalizedRecord{
		UserID:    "u1",
		SectionID: "Research Grants",
		Type:      typ,
		Year:      year,
		Keywords:  keywords,
	}
	if amount > 0 {
		r.Amount = amount
		r.HasAmount = true
	}
	return r
}

func year(v int) *model.YearRef { return &model.YearRef{Value: v} }

func TestByYear(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2021), "Grant", 100),
		rec(year(2019), "Grant", 50),
		rec(year(2021), "Grant", 0), // counted, not summed
		rec(nil, "Grant", 25),       // no usable year, excluded
		rec(&model.YearRef{Current: true}, "Grant", 10), // sentinel, excluded from year buckets
	}

	buckets := ByYear(records)
	require.Len(t, buckets, 2)
	assert.Equal(t, model.CategoryBucket{Key: "2019", Count: 1, Sum: 50}, buckets[0])
	assert.Equal(t, model.CategoryBucket{Key: "2021", Count: 2, Sum: 100}, buckets[1])
}

func TestByYearIdempotent(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2020), "A", 10),
		rec(year(2018), "B", 20),
		rec(year(2020), "A", 30),
	}

	first := ByYear(records)
	second := ByYear(records)
	assert.Equal(t, first, second, "re-running aggregation on unchanged input must be identical")
}

func TestByTypeIncludesYearlessRecords(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2020), "Journal Article", 0),
		rec(nil, "Journal Article", 0),
		rec(nil, "Book Chapter", 0),
	}

	buckets := ByType(records, true)
	require.Len(t, buckets, 2)
	assert.Equal(t, "Book Chapter", buckets[0].Key)
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, "Journal Article", buckets[1].Key)
	assert.Equal(t, 2, buckets[1].Count)
}

func TestByTypeYear(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2021), "B", 5),
		rec(year(2020), "A", 1),
		rec(year(2021), "A", 2),
		rec(nil, "A", 9),
	}

	buckets := ByTypeYear(records)
	require.Len(t, buckets, 3)
	assert.Equal(t, "A/2020", buckets[0].Key)
	assert.Equal(t, "A/2021", buckets[1].Key)
	assert.Equal(t, "B/2021", buckets[2].Key)
}

func TestKeywordFrequency(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2020), "A", 0, "Genomics", "machine learning"),
		rec(year(2021), "A", 0, "genomics ", "Machine Learning", "proteomics"),
		rec(year(2022), "A", 0, "genomics"),
	}

	freq := KeywordFrequency(records, 0)
	require.Len(t, freq, 2, "singleton keywords are dropped")
	assert.Equal(t, model.KeywordCount{Keyword: "genomics", Count: 3}, freq[0])
	assert.Equal(t, model.KeywordCount{Keyword: "machine learning", Count: 2}, freq[1])

	for _, kw := range freq {
		assert.Greater(t, kw.Count, 1)
	}
}

func TestKeywordFrequencyTopN(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2020), "A", 0, "a", "b", "c"),
		rec(year(2021), "A", 0, "a", "b", "c"),
	}

	freq := KeywordFrequency(records, 2)
	require.Len(t, freq, 2)
	assert.Equal(t, "a", freq[0].Keyword, "count ties break alphabetically")
	assert.Equal(t, "b", freq[1].Keyword)
}

func TestFundingSplit(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2020), "All Types Contract", 10000),
		rec(year(2021), "Grant", 20000),
	}

	split := Funding(records)
	assert.Equal(t, model.FundingCategory{Count: 1, Funding: 10000}, split.Contract)
	assert.Equal(t, model.FundingCategory{Count: 1, Funding: 20000}, split.Grant)
}

func TestFundingSplitInvalidAmountStillCounts(t *testing.T) {
	records := []*model.NormalizedRecord{
		rec(year(2020), "Grant", 0), // no amount resolved
		rec(year(2021), "Grant", 500),
	}

	split := Funding(records)
	assert.Equal(t, 2, split.Grant.Count)
	assert.Equal(t, 500.0, split.Grant.Funding)
}

func TestSortMostRecent(t *testing.T) {
	current := rec(&model.YearRef{Current: true}, "A", 0)
	y2022 := rec(year(2022), "A", 0)
	y1999 := rec(year(1999), "A", 0)
	noYear := rec(nil, "A", 0)

	sorted := SortMostRecent([]*model.NormalizedRecord{y1999, noYear, y2022, current})
	require.Len(t, sorted, 4)
	assert.Same(t, current, sorted[0], "sentinel dates sort ahead of any concrete year")
	assert.Same(t, y2022, sorted[1])
	assert.Same(t, y1999, sorted[2])
	assert.Same(t, noYear, sorted[3])
}

func TestSortMostRecentDoesNotMutateInput(t *testing.T) {
	a := rec(year(2000), "A", 0)
	b := rec(year(2010), "A", 0)
	input := []*model.NormalizedRecord{a, b}

	_ = SortMostRecent(input)
	assert.Same(t, a, input[0])
	assert.Same(t, b, input[1])
}
