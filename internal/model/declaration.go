package model

// Declaration answer values. Empty string means unanswered.
const (
	AnswerYes = "YES"
	AnswerNo  = "NO"
)

// Declaration submission statuses.
const (
	StatusSubmitted    = "Submitted"
	StatusNotSubmitted = "Not Submitted"
)

// DeclarationRecord is one faculty member's yearly declaration. One exists per
// (user, reporting year); it is created, updated, and deleted only through the
// remote service and normalized on read.
type DeclarationRecord struct {
	UserID    string
	Year      int
	COI       string // YES, NO, or ""
	FOMMerit  string
	PSA       string
	Promotion string

	// Submission dates pass through exactly as entered; they are display
	// text, not parsed dates.
	COISubmissionDate       string
	MeritSubmissionDate     string
	PSASubmissionDate       string
	PromotionSubmissionDate string

	COIJustification   string
	MeritJustification string
	PSAJustification   string

	CreatedBy string
	CreatedOn string
}

// Submitted reports whether any answer, justification, or submission date is
// populated. Every declaration resolves to exactly one of the two statuses.
func (d *DeclarationRecord) Submitted() bool {
	fields := []string{
		d.COI, d.FOMMerit, d.PSA, d.Promotion,
		d.COISubmissionDate, d.MeritSubmissionDate, d.PSASubmissionDate, d.PromotionSubmissionDate,
		d.COIJustification, d.MeritJustification, d.PSAJustification,
	}
	for _, f := range fields {
		if f != "" {
			return true
		}
	}
	return false
}

// Status returns StatusSubmitted or StatusNotSubmitted.
func (d *DeclarationRecord) Status() string {
	if d.Submitted() {
		return StatusSubmitted
	}
	return StatusNotSubmitted
}
