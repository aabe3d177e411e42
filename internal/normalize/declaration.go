package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/facultytools/vitae/internal/model"
)

// Declaration decodes one raw yearly-declaration record. Enumerated answers
// are upper-cased and defaulted to empty; submission dates and justifications
// pass through exactly as entered.
func Declaration(raw model.RawRecord) (*model.DeclarationRecord, error) {
	fields, err := DecodeDetails(raw.DataDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to decode declaration for user %s: %w", raw.UserID, err)
	}

	year := 0
	if y := strings.TrimSpace(fields["year"]); y != "" {
		if parsed, convErr := strconv.Atoi(y); convErr == nil {
			year = parsed
		}
	}

	return &model.DeclarationRecord{
		UserID:    raw.UserID,
		Year:      year,
		COI:       normalizeAnswer(fields["coi"]),
		FOMMerit:  normalizeAnswer(fields["fom_merit"]),
		PSA:       normalizeAnswer(fields["psa"]),
		Promotion: normalizeAnswer(fields["promotion"]),

		COISubmissionDate:       fields["coi_submission_date"],
		MeritSubmissionDate:     fields["merit_submission_date"],
		PSASubmissionDate:       fields["psa_submission_date"],
		PromotionSubmissionDate: fields["promotion_submission_date"],

		COIJustification:   fields["coi_justification"],
		MeritJustification: fields["merit_justification"],
		PSAJustification:   fields["psa_justification"],

		CreatedBy: fields["created_by"],
		CreatedOn: fields["created_on"],
	}, nil
}

// normalizeAnswer maps an enumerated answer onto YES, NO, or "". Anything
// outside the enum defaults to unanswered rather than guessing.
func normalizeAnswer(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case model.AnswerYes:
		return model.AnswerYes
	case model.AnswerNo:
		return model.AnswerNo
	}
	return ""
}
