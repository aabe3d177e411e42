package main

import (
	"context"
	"fmt"

	"github.com/facultytools/vitae/internal/common"
	"github.com/facultytools/vitae/internal/config"
	"github.com/facultytools/vitae/internal/facultyapi"
	"github.com/facultytools/vitae/internal/report"
	"github.com/facultytools/vitae/internal/service"
	"github.com/facultytools/vitae/internal/storage"
	"github.com/spf13/viper"
)

// openStorage opens the snapshot cache and brings its schema current.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate snapshot cache: %w", err)
	}
	return store, nil
}

// newFetcher builds the data service client from configuration.
func newFetcher(ctx context.Context) (service.RecordFetcher, *config.Service, error) {
	cfg, err := config.LoadServiceConfig()
	if err != nil {
		return nil, nil, common.NewUserError("data service is not configured", err)
	}
	client, err := facultyapi.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// resolveUsers returns the explicit user list, or expands the department
// scope through the data service when none was given.
func resolveUsers(ctx context.Context, fetcher service.RecordFetcher, users []string, department string) ([]string, error) {
	if len(users) > 0 {
		return users, nil
	}
	if department == "" {
		return nil, common.NewUserError("no users selected: pass --users or --department", common.ErrInvalidUser)
	}
	resolved, err := fetcher.ListUsers(ctx, department)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, common.NewUserError(fmt.Sprintf("department %q has no users", department), common.ErrInvalidUser)
	}
	return resolved, nil
}

// sectionsForReport matches a report type's configured sections against the
// deployment's known section names. No overlap means the registry entry and
// the service schema have drifted apart, which is a configuration failure,
// not a data quality gap.
func sectionsForReport(cfg report.TypeConfig) ([]string, error) {
	known := viper.GetStringSlice("service.sections")
	if len(known) == 0 {
		return cfg.Sections, nil
	}

	knownSet := make(map[string]bool, len(known))
	for _, s := range known {
		knownSet[s] = true
	}

	var matched []string
	for _, s := range cfg.Sections {
		if knownSet[s] {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return nil, common.NewUserError(
			fmt.Sprintf("no relevant sections found for report %s", cfg.Value),
			common.ErrNoRelevantSections)
	}
	return matched, nil
}
