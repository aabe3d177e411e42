// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/facultytools/vitae/internal/model"
)

// RecordFetcher retrieves raw CV records from the remote data service. A
// fetcher returns zero or more records, each with an opaque serialized
// attribute blob; it never interprets the blob.
type RecordFetcher interface {
	FetchRecords(ctx context.Context, userID, sectionID string) ([]model.RawRecord, error)
	FetchDeclarations(ctx context.Context, userID string, year int) ([]model.RawRecord, error)
	ListUsers(ctx context.Context, department string) ([]string, error)
}

// Storage defines the contract for the local snapshot cache.
type Storage interface {
	// Record operations
	SaveRecords(ctx context.Context, userID, sectionID string, records []model.RawRecord) error
	GetRecords(ctx context.Context, userIDs []string, sectionIDs []string) ([]model.RawRecord, error)
	GetRecordCount(ctx context.Context) (int, error)
	GetSnapshotTime(ctx context.Context, userID, sectionID string) (time.Time, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// FetchStats summarizes one fan-out fetch pass.
type FetchStats struct {
	Requested int
	Failed    int
	Records   int
	Duration  time.Duration
}
