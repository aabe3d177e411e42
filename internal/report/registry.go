// Package report holds the declarative report configuration and the CSV
// export generator driven by it.
package report

// Column maps one CSV header to an ordered fallback chain of candidate field
// names. The first candidate with a non-empty value wins.
type Column struct {
	Header          string
	FieldCandidates []string
}

// TypeConfig describes one report type: which record sections feed it and
// which columns it emits.
type TypeConfig struct {
	Value    string
	Label    string
	Sections []string
	Columns  []Column
}

// Registry is the static report-type table. It is built once at process start,
// never mutated afterward, and safe for unsynchronized concurrent reads.
// Adding a report type means adding a table entry; the resolution code never
// changes.
type Registry struct {
	labels  map[string]string
	configs map[string]TypeConfig
	order   []string
}

// reportLabels is the descriptive half of the table.
var reportLabels = map[string]string{
	"publications":  "Publications Report",
	"grants":        "Research Funding Report",
	"awards":        "Honors and Awards Report",
	"presentations": "Presentations Report",
}

// reportConfigs is the column-mapping half. A report type is supported only
// when it appears in both halves.
var reportConfigs = []TypeConfig{
	{
		Value:    "publications",
		Sections: []string{"Publications", "Scholarly Contributions"},
		Columns: []Column{
			{Header: "Title", FieldCandidates: []string{"title", "publication_title", "article_title"}},
			{Header: "Authors", FieldCandidates: []string{"authors", "author_list", "contributors"}},
			{Header: "Journal/Venue", FieldCandidates: []string{"journal", "journal_name", "publication_venue", "book_title"}},
			{Header: "Year", FieldCandidates: []string{"year", "publication_year", "dates", "date"}},
			{Header: "Type", FieldCandidates: []string{"publication_type", "type"}},
			{Header: "Status", FieldCandidates: []string{"status", "publication_status"}},
		},
	},
	{
		Value:    "grants",
		Sections: []string{"Research Grants", "Grants and Contracts"},
		Columns: []Column{
			{Header: "Project Title", FieldCandidates: []string{"grant_title", "project_title", "title"}},
			{Header: "Funding Agency", FieldCandidates: []string{"funding_agency", "agency", "sponsor"}},
			{Header: "Amount", FieldCandidates: []string{"amount", "total_amount", "funding_amount"}},
			{Header: "Role", FieldCandidates: []string{"role", "pi_role", "investigator_role"}},
			{Header: "Dates", FieldCandidates: []string{"dates", "project_period", "funding_period"}},
			{Header: "Type", FieldCandidates: []string{"grant_type", "type"}},
		},
	},
	{
		Value:    "awards",
		Sections: []string{"Honors and Awards", "Awards and Distinctions"},
		Columns: []Column{
			{Header: "Award", FieldCandidates: []string{"award_name", "name", "title"}},
			{Header: "Awarding Organization", FieldCandidates: []string{"organization", "awarding_body", "sponsor"}},
			{Header: "Year", FieldCandidates: []string{"year", "award_year", "dates", "date"}},
		},
	},
	{
		Value:    "presentations",
		Sections: []string{"Presentations", "Invited Presentations"},
		Columns: []Column{
			{Header: "Title", FieldCandidates: []string{"title", "presentation_title", "talk_title"}},
			{Header: "Venue", FieldCandidates: []string{"venue", "conference", "event", "location"}},
			{Header: "Date", FieldCandidates: []string{"date", "dates", "presentation_date"}},
			{Header: "Type of Presentation", FieldCandidates: []string{"presentation_type", "type"}},
		},
	},
}

// NewRegistry builds the default report registry.
func NewRegistry() *Registry {
	reg := &Registry{
		labels:  make(map[string]string, len(reportLabels)),
		configs: make(map[string]TypeConfig, len(reportConfigs)),
	}
	for value, label := range reportLabels {
		reg.labels[value] = label
	}
	for _, cfg := range reportConfigs {
		cfg.Label = reg.labels[cfg.Value]
		reg.configs[cfg.Value] = cfg
		reg.order = append(reg.order, cfg.Value)
	}
	return reg
}

// Supported reports whether a report type has both its descriptive entry and
// its column mapping. Callers must check before invoking export.
func (r *Registry) Supported(reportType string) bool {
	_, hasLabel := r.labels[reportType]
	_, hasConfig := r.configs[reportType]
	return hasLabel && hasConfig
}

// Get returns the configuration for a report type.
func (r *Registry) Get(reportType string) (TypeConfig, bool) {
	if !r.Supported(reportType) {
		return TypeConfig{}, false
	}
	return r.configs[reportType], true
}

// AllSections returns every section name any report type consumes, deduped,
// in declaration order.
func (r *Registry) AllSections() []string {
	seen := make(map[string]bool)
	var sections []string
	for _, cfg := range r.Types() {
		for _, section := range cfg.Sections {
			if !seen[section] {
				seen[section] = true
				sections = append(sections, section)
			}
		}
	}
	return sections
}

// Types returns all supported configurations in declaration order.
func (r *Registry) Types() []TypeConfig {
	types := make([]TypeConfig, 0, len(r.order))
	for _, value := range r.order {
		if cfg, ok := r.Get(value); ok {
			types = append(types, cfg)
		}
	}
	return types
}
