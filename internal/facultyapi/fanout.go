package facultyapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/facultytools/vitae/internal/model"
	"github.com/facultytools/vitae/internal/service"
	"golang.org/x/sync/errgroup"
)

// Slice identifies one (user, section) fetch unit of a fan-out pass.
type Slice struct {
	UserID    string
	SectionID string
}

// Slices builds the user × section cross product in deterministic order.
func Slices(userIDs, sectionIDs []string) []Slice {
	slices := make([]Slice, 0, len(userIDs)*len(sectionIDs))
	for _, user := range userIDs {
		for _, section := range sectionIDs {
			slices = append(slices, Slice{UserID: user, SectionID: section})
		}
	}
	return slices
}

// FetchAll runs the fan-out: every slice is fetched concurrently up to the
// given limit, and each slice is fault-isolated: a failed fetch resolves to
// an empty result set rather than aborting the batch. Results are flattened
// in slice order, so downstream aggregation sees a deterministic record order
// regardless of completion order. onSliceDone, when non-nil, is called once
// per settled slice (for progress reporting).
func FetchAll(ctx context.Context, fetcher service.RecordFetcher, slices []Slice, concurrency int, onSliceDone func()) ([]model.RawRecord, service.FetchStats) {
	if concurrency <= 0 {
		concurrency = 1
	}

	start := time.Now()
	results := make([][]model.RawRecord, len(slices))
	failures := make([]bool, len(slices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, s := range slices {
		g.Go(func() error {
			records, err := fetcher.FetchRecords(gctx, s.UserID, s.SectionID)
			if err != nil {
				slog.Warn("Fetch failed, continuing with empty result",
					"user_id", s.UserID,
					"section_id", s.SectionID,
					"error", err)
				failures[i] = true
			} else {
				results[i] = records
			}
			if onSliceDone != nil {
				onSliceDone()
			}
			// Slice failures never abort the batch.
			return nil
		})
	}
	// Goroutines only return nil; Wait is purely a barrier here. Aggregation
	// must not start until every outstanding fetch has settled.
	_ = g.Wait()

	stats := service.FetchStats{
		Requested: len(slices),
		Duration:  time.Since(start),
	}

	var flattened []model.RawRecord
	for i := range slices {
		if failures[i] {
			stats.Failed++
			continue
		}
		flattened = append(flattened, results[i]...)
	}
	stats.Records = len(flattened)
	return flattened, stats
}
