package main

import (
	"fmt"
	"strings"

	"github.com/facultytools/vitae/internal/cli"
	"github.com/facultytools/vitae/internal/report"
	"github.com/spf13/cobra"
)

func sectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List report types and the sections that feed them",
		RunE:  runSections,
	}
}

func runSections(_ *cobra.Command, _ []string) error {
	registry := report.NewRegistry()

	for _, cfg := range registry.Types() {
		var b strings.Builder
		fmt.Fprintf(&b, "Sections: %s\n", strings.Join(cfg.Sections, ", "))
		fmt.Fprintf(&b, "Columns:\n")
		for _, col := range cfg.Columns {
			fmt.Fprintf(&b, "  %-24s ← %s\n", col.Header, strings.Join(col.FieldCandidates, ", "))
		}
		fmt.Println(cli.RenderBox(fmt.Sprintf("%s (%s)", cfg.Label, cfg.Value), b.String()))
	}
	return nil
}
