package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/facultytools/vitae/internal/cli"
	"github.com/facultytools/vitae/internal/model"
	"github.com/facultytools/vitae/internal/normalize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func declarationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "declarations",
		Short: "Show yearly declaration statuses",
		Long: `Fetch yearly declarations for a set of users and report each one as
Submitted or Not Submitted.

A declaration counts as submitted when any answer, justification, or
submission date is populated.`,
		RunE: runDeclarations,
	}

	cmd.Flags().StringSliceP("users", "u", []string{}, "User ids to include (comma-separated)")
	cmd.Flags().StringP("department", "d", "", "Department scope (used when --users is not given)")
	cmd.Flags().IntP("year", "y", time.Now().Year(), "Reporting year (0 for all years)")

	_ = viper.BindPFlag("declarations.users", cmd.Flags().Lookup("users"))
	_ = viper.BindPFlag("declarations.department", cmd.Flags().Lookup("department"))
	_ = viper.BindPFlag("declarations.year", cmd.Flags().Lookup("year"))

	return cmd
}

func runDeclarations(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fetcher, svcCfg, err := newFetcher(ctx)
	if err != nil {
		return err
	}

	department := viper.GetString("declarations.department")
	if department == "" {
		department = svcCfg.Department
	}
	users, err := resolveUsers(ctx, fetcher, viper.GetStringSlice("declarations.users"), department)
	if err != nil {
		return err
	}
	year := viper.GetInt("declarations.year")

	var declarations []*model.DeclarationRecord
	for _, user := range users {
		raw, fetchErr := fetcher.FetchDeclarations(ctx, user, year)
		if fetchErr != nil {
			slog.Warn("Declaration fetch failed, continuing",
				"user_id", user, "error", fetchErr)
			continue
		}
		for _, rec := range raw {
			decl, declErr := normalize.Declaration(rec)
			if declErr != nil {
				slog.Warn("Dropping unparseable declaration",
					"user_id", rec.UserID, "error", declErr)
				continue
			}
			declarations = append(declarations, decl)
		}
	}

	if len(declarations) == 0 {
		slog.Info(cli.FormatWarning("No declarations found"))
		return nil
	}

	sort.Slice(declarations, func(i, j int) bool {
		if declarations[i].UserID != declarations[j].UserID {
			return declarations[i].UserID < declarations[j].UserID
		}
		return declarations[i].Year < declarations[j].Year
	})

	submitted := 0
	lines := make([]string, 0, len(declarations))
	for _, decl := range declarations {
		status := decl.Status()
		if status == model.StatusSubmitted {
			submitted++
			status = cli.FormatSuccess(status)
		} else {
			status = cli.FormatWarning(status)
		}
		lines = append(lines, fmt.Sprintf("%-20s %d  %s", decl.UserID, decl.Year, status))
	}

	fmt.Println(cli.RenderBox(
		fmt.Sprintf("Declarations (%d/%d submitted)", submitted, len(declarations)),
		strings.Join(lines, "\n")))
	return nil
}
