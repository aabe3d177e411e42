package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/facultytools/vitae/internal/aggregate"
	"github.com/facultytools/vitae/internal/cli"
	"github.com/facultytools/vitae/internal/facultyapi"
	"github.com/facultytools/vitae/internal/model"
	"github.com/facultytools/vitae/internal/normalize"
	"github.com/facultytools/vitae/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show aggregate CV statistics",
		Long: `Aggregate normalized CV records into dashboard views: records per
year, per type, the grant/contract funding split, and the most frequent
keywords.`,
		RunE: runDashboard,
	}

	cmd.Flags().StringSliceP("users", "u", []string{}, "User ids to include (comma-separated)")
	cmd.Flags().StringP("department", "d", "", "Department scope (used when --users is not given)")
	cmd.Flags().Int("top-keywords", 10, "How many keywords to show")
	cmd.Flags().Bool("offline", false, "Read records from the local snapshot cache instead of fetching")

	_ = viper.BindPFlag("dashboard.users", cmd.Flags().Lookup("users"))
	_ = viper.BindPFlag("dashboard.department", cmd.Flags().Lookup("department"))
	_ = viper.BindPFlag("dashboard.top_keywords", cmd.Flags().Lookup("top-keywords"))
	_ = viper.BindPFlag("dashboard.offline", cmd.Flags().Lookup("offline"))

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	registry := report.NewRegistry()

	var raw []model.RawRecord
	if viper.GetBool("dashboard.offline") {
		store, err := openStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		records, err := store.GetRecords(ctx, viper.GetStringSlice("dashboard.users"), nil)
		if err != nil {
			return err
		}
		raw = records
	} else {
		fetcher, svcCfg, err := newFetcher(ctx)
		if err != nil {
			return err
		}

		department := viper.GetString("dashboard.department")
		if department == "" {
			department = svcCfg.Department
		}
		users, err := resolveUsers(ctx, fetcher, viper.GetStringSlice("dashboard.users"), department)
		if err != nil {
			return err
		}

		slices := facultyapi.Slices(users, registry.AllSections())
		records, stats := facultyapi.FetchAll(ctx, fetcher, slices, svcCfg.Concurrency, nil)
		if stats.Failed > 0 {
			slog.Warn("Some fetches failed; dashboard covers the records that succeeded",
				"failed", stats.Failed, "requested", stats.Requested)
		}
		raw = records
	}

	records := normalize.Records(raw)
	if len(records) == 0 {
		slog.Info(cli.FormatWarning("No records to aggregate"))
		return nil
	}

	fmt.Println(cli.FormatTitle("Faculty CV Dashboard"))
	fmt.Println(cli.RenderBox("Records per year", formatBuckets(aggregate.ByYear(records))))
	fmt.Println(cli.RenderBox("Records per type", formatBuckets(aggregate.ByType(records, true))))

	grantSections := make(map[string]bool)
	if grants, ok := registry.Get("grants"); ok {
		for _, s := range grants.Sections {
			grantSections[s] = true
		}
	}
	var grantRecords []*model.NormalizedRecord
	for _, rec := range records {
		if grantSections[rec.SectionID] {
			grantRecords = append(grantRecords, rec)
		}
	}
	if len(grantRecords) > 0 {
		split := aggregate.Funding(grantRecords)
		content := fmt.Sprintf("Contracts: %d ($%.2f)\nGrants:    %d ($%.2f)",
			split.Contract.Count, split.Contract.Funding,
			split.Grant.Count, split.Grant.Funding)
		fmt.Println(cli.RenderBox("Funding split", content))
	}

	if keywords := aggregate.KeywordFrequency(records, viper.GetInt("dashboard.top_keywords")); len(keywords) > 0 {
		fmt.Println(cli.RenderBox("Top keywords", formatKeywords(keywords)))
	}

	return nil
}

func formatBuckets(buckets []model.CategoryBucket) string {
	if len(buckets) == 0 {
		return "(no records with a usable key)"
	}
	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		key := b.Key
		if key == "" {
			key = "(untyped)"
		}
		line := fmt.Sprintf("%-30s %4d", key, b.Count)
		if b.Sum > 0 {
			line += fmt.Sprintf("  $%.2f", b.Sum)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatKeywords(keywords []model.KeywordCount) string {
	lines := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lines = append(lines, fmt.Sprintf("%-30s %4d", kw.Keyword, kw.Count))
	}
	return strings.Join(lines, "\n")
}
