package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/facultytools/vitae/internal/cli"
	"github.com/facultytools/vitae/internal/facultyapi"
	"github.com/facultytools/vitae/internal/model"
	"github.com/facultytools/vitae/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch CV records into the local snapshot cache",
		Long: `Fetch raw CV records from the faculty data service for a set of users
and sections, and cache them locally.

Fetches fan out per (user, section) pair with bounded concurrency. A failed
pair is logged and cached as empty rather than aborting the whole batch.`,
		RunE: runFetch,
	}

	cmd.Flags().StringSliceP("users", "u", []string{}, "User ids to fetch (comma-separated)")
	cmd.Flags().StringP("department", "d", "", "Department scope (used when --users is not given)")
	cmd.Flags().StringSlice("sections", []string{}, "Section names to fetch (default: every section any report consumes)")

	_ = viper.BindPFlag("fetch.users", cmd.Flags().Lookup("users"))
	_ = viper.BindPFlag("fetch.department", cmd.Flags().Lookup("department"))
	_ = viper.BindPFlag("fetch.sections", cmd.Flags().Lookup("sections"))

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fetcher, cfg, err := newFetcher(ctx)
	if err != nil {
		return err
	}

	department := viper.GetString("fetch.department")
	if department == "" {
		department = cfg.Department
	}
	users, err := resolveUsers(ctx, fetcher, viper.GetStringSlice("fetch.users"), department)
	if err != nil {
		return err
	}

	sections := viper.GetStringSlice("fetch.sections")
	if len(sections) == 0 {
		sections = report.NewRegistry().AllSections()
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slices := facultyapi.Slices(users, sections)
	slog.Info(cli.FormatTitle("Fetching CV records"),
		"users", len(users), "sections", len(sections), "requests", len(slices))

	bar := progressbar.NewOptions(len(slices),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Fetching records..."),
	)

	records, stats := facultyapi.FetchAll(ctx, fetcher, slices, cfg.Concurrency, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	// Snapshot per slice so each (user, section) pair is replaced atomically.
	bySlice := make(map[facultyapi.Slice][]model.RawRecord)
	for _, rec := range records {
		key := facultyapi.Slice{UserID: rec.UserID, SectionID: rec.SectionID}
		bySlice[key] = append(bySlice[key], rec)
	}
	for _, s := range slices {
		if err := store.SaveRecords(ctx, s.UserID, s.SectionID, bySlice[s]); err != nil {
			return fmt.Errorf("failed to cache records for user %s section %s: %w", s.UserID, s.SectionID, err)
		}
	}

	if stats.Failed > 0 {
		slog.Warn(cli.FormatWarning("Some fetches failed and were cached as empty"),
			"failed", stats.Failed, "requested", stats.Requested)
	}
	slog.Info(cli.FormatSuccess("Snapshot updated"),
		"records", stats.Records,
		"duration", stats.Duration.Round(10*time.Millisecond))

	return nil
}
