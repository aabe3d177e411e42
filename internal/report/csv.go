package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/facultytools/vitae/internal/common"
	"github.com/facultytools/vitae/internal/model"
	"github.com/facultytools/vitae/internal/normalize"
)

// PresentationTypeDefault fills an empty "Type of Presentation" cell in the
// presentations report.
const PresentationTypeDefault = "Invited Presentation"

const presentationTypeHeader = "Type of Presentation"

// Generator produces CSV documents from raw records and a report registry.
// The registry is injected so tests can run against fixture tables.
type Generator struct {
	registry *Registry
}

// NewGenerator creates a CSV generator backed by the given registry.
func NewGenerator(registry *Registry) *Generator {
	return &Generator{registry: registry}
}

// Generate renders one CSV document: a header row followed by one data row
// per input record, in input order. A record whose attribute blob fails to
// decode becomes a row of empty cells, keeping row-count parity with the
// input. Cell values are emitted verbatim; date-like text is never reparsed
// or reformatted.
func (g *Generator) Generate(reportType string, records []model.RawRecord) (string, error) {
	cfg, ok := g.registry.Get(reportType)
	if !ok {
		return "", common.NewUserError(
			fmt.Sprintf("report type %q is not supported", reportType),
			common.ErrUnsupportedReportType)
	}

	var b strings.Builder
	headers := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		headers[i] = col.Header
	}
	writeRow(&b, headers)

	for _, raw := range records {
		fields, err := normalize.DecodeDetails(raw.DataDetails)
		if err != nil {
			slog.Warn("Emitting blank report row for unparseable record",
				"report_type", reportType,
				"user_id", raw.UserID,
				"error", err)
			writeRow(&b, make([]string, len(cfg.Columns)))
			continue
		}

		row := make([]string, len(cfg.Columns))
		for i, col := range cfg.Columns {
			value := normalize.FirstNonEmpty(fields, col.FieldCandidates)
			if value == "" && reportType == "presentations" && col.Header == presentationTypeHeader {
				value = PresentationTypeDefault
			}
			row[i] = value
		}
		writeRow(&b, row)
	}

	return b.String(), nil
}

// Filename returns the conventional report file name,
// <reportType>_report_<dateStamp>.csv.
func Filename(reportType string, now time.Time) string {
	return fmt.Sprintf("%s_report_%s.csv", reportType, now.Format("2006-01-02"))
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCell(cell))
	}
	b.WriteByte('\n')
}

// escapeCell quotes a value only when it contains a comma, double quote, or
// newline; embedded quotes are doubled. Everything else passes through
// byte for byte.
func escapeCell(value string) string {
	if !strings.ContainsAny(value, ",\"\n\r") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
