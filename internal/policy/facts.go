package policy

import (
	"github.com/tkingovr/borderguard/internal/document"
)

// Facts are the lookup and validator results for one traveller. The OPA
// engine receives them as its input document.
type Facts struct {
	MedicalAdvisory     bool   `json:"medical_advisory"`
	Complete            bool   `json:"complete"`
	EntryReason         string `json:"entry_reason"`
	VisaRequired        bool   `json:"visa_required"`
	VisaValid           bool   `json:"visa_valid"`
	PassportFormatValid bool   `json:"passport_format_valid"`
	VisaFormatValid     bool   `json:"visa_format_valid"`
	Watchlisted         bool   `json:"watchlisted"`
	ReturningCitizen    bool   `json:"returning_citizen"`
}

// Gather computes every fact for the input. All lookups tolerate incomplete records.
func Gather(in *EvalInput) Facts {
	t, ref := in.Traveller, in.Reference
	return Facts{
		MedicalAdvisory:     ref.MedicalAdvisoryHit(t),
		Complete:            document.RequiredFieldsPresent(t),
		EntryReason:         t.EntryReason,
		VisaRequired:        ref.VisaRequired(t),
		VisaValid:           ref.VisaStillValid(t, in.Now),
		PassportFormatValid: document.PassportFormatValid(t.Passport),
		VisaFormatValid:     document.VisaFormatValid(t),
		Watchlisted:         ref.WatchlistMatch(t),
		ReturningCitizen:    ref.IsReturningCitizen(t),
	}
}

// Map returns the facts as an OPA input document.
func (f Facts) Map() map[string]any {
	return map[string]any{
		"medical_advisory":      f.MedicalAdvisory,
		"complete":              f.Complete,
		"entry_reason":          f.EntryReason,
		"visa_required":         f.VisaRequired,
		"visa_valid":            f.VisaValid,
		"passport_format_valid": f.PassportFormatValid,
		"visa_format_valid":     f.VisaFormatValid,
		"watchlisted":           f.Watchlisted,
		"returning_citizen":     f.ReturningCitizen,
	}
}
