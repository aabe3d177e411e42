// Package normalize decodes raw CV records into their canonical form. Each
// record is handled in isolation: a blob that fails to decode is dropped and
// logged, never propagated as a fatal error.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/facultytools/vitae/internal/model"
)

// typeCandidates is the fallback chain for a record's type attribute. The
// remote service is inconsistent about which field carries it per section.
var typeCandidates = []string{
	"type",
	"publication_type",
	"grant_type",
	"presentation_type",
	"award_type",
	"patent_type",
}

// keywordCandidates is the fallback chain for keyword attributes.
var keywordCandidates = []string{
	"keywords",
	"key_words",
	"research_keywords",
}

// Record decodes one raw record into its normalized form. Decoding is
// attempted exactly once; malformed data will not become valid on retry.
func Record(raw model.RawRecord) (*model.NormalizedRecord, error) {
	fields, err := DecodeDetails(raw.DataDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record details for user %s section %s: %w",
			raw.UserID, raw.SectionID, err)
	}

	rec := &model.NormalizedRecord{
		Raw:       fields,
		UserID:    raw.UserID,
		SectionID: raw.SectionID,
		Type:      FirstNonEmpty(fields, typeCandidates),
		Keywords:  splitKeywords(FirstNonEmpty(fields, keywordCandidates)),
		Year:      ResolveYear(fields),
	}
	rec.Amount, rec.HasAmount = ResolveAmount(fields)

	return rec, nil
}

// Records normalizes a batch. Records whose blobs fail to decode are dropped
// and logged; the rest are returned in input order.
func Records(records []model.RawRecord) []*model.NormalizedRecord {
	normalized := make([]*model.NormalizedRecord, 0, len(records))
	for _, raw := range records {
		rec, err := Record(raw)
		if err != nil {
			slog.Warn("Dropping unparseable record",
				"user_id", raw.UserID,
				"section_id", raw.SectionID,
				"error", err)
			continue
		}
		normalized = append(normalized, rec)
	}
	return normalized
}

// DecodeDetails parses a serialized attribute blob into a flat string map.
// Values arrive as strings, numbers, booleans, or arrays depending on which
// form generated the record; every shape flattens to display text.
func DecodeDetails(blob string) (map[string]string, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, fmt.Errorf("empty attribute blob")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		return nil, fmt.Errorf("invalid attribute blob: %w", err)
	}

	fields := make(map[string]string, len(decoded))
	for key, value := range decoded {
		fields[key] = flattenValue(value)
	}
	return fields, nil
}

func flattenValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := flattenValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		// Nested objects are rare; keep their JSON form rather than lose them.
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// FirstNonEmpty walks an ordered candidate list and returns the first field
// with a non-empty value, or "" when none match.
func FirstNonEmpty(fields map[string]string, candidates []string) string {
	for _, name := range candidates {
		if value := strings.TrimSpace(fields[name]); value != "" {
			return value
		}
	}
	return ""
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	split := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	keywords := make([]string, 0, len(split))
	for _, kw := range split {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}
