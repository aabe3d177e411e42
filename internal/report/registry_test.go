package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySupported(t *testing.T) {
	reg := NewRegistry()

	for _, reportType := range []string{"publications", "grants", "awards", "presentations"} {
		assert.True(t, reg.Supported(reportType), reportType)
	}
	assert.False(t, reg.Supported("patents"))
	assert.False(t, reg.Supported(""))
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()

	cfg, ok := reg.Get("grants")
	require.True(t, ok)
	assert.Equal(t, "grants", cfg.Value)
	assert.Equal(t, "Research Funding Report", cfg.Label)
	assert.NotEmpty(t, cfg.Sections)
	assert.NotEmpty(t, cfg.Columns)

	_, ok = reg.Get("nonsense")
	assert.False(t, ok)
}

func TestRegistryColumnsHaveCandidates(t *testing.T) {
	reg := NewRegistry()

	for _, cfg := range reg.Types() {
		for _, col := range cfg.Columns {
			assert.NotEmpty(t, col.Header, "%s column missing header", cfg.Value)
			assert.NotEmpty(t, col.FieldCandidates, "%s column %q has no fallback chain", cfg.Value, col.Header)
		}
	}
}

func TestRegistryAllSections(t *testing.T) {
	reg := NewRegistry()

	sections := reg.AllSections()
	assert.NotEmpty(t, sections)

	seen := make(map[string]bool)
	for _, s := range sections {
		assert.False(t, seen[s], "section %q listed twice", s)
		seen[s] = true
	}
	assert.True(t, seen["Publications"])
	assert.True(t, seen["Research Grants"])
}

func TestRegistryTypesOrderStable(t *testing.T) {
	first := NewRegistry().Types()
	second := NewRegistry().Types()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Value, second[i].Value)
	}
}
