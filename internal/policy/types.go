package policy

import (
	"errors"
	"time"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/reference"
)

// Rule names, in evaluation order.
const (
	RuleMedicalAdvisory  = "medical-advisory"
	RuleIncompleteRecord = "incomplete-record"
	RuleVisitVisa        = "visit-visa"
	RuleTransitVisa      = "transit-visa"
	RuleDocumentFormat   = "document-format"
	RuleWatchlist        = "watchlist"
	RuleDefault          = "_default"
)

var errIncompleteInput = errors.New("evaluation input requires a traveller and reference data")

// EvalInput is the input to a policy engine evaluation.
type EvalInput struct {
	Traveller *api.Traveller
	Reference *reference.Index

	// Now anchors the visa validity window.
	Now time.Time
}

func (in *EvalInput) check() error {
	if in == nil || in.Traveller == nil || in.Reference == nil {
		return errIncompleteInput
	}
	return nil
}

// EvalResult is the output of a policy engine evaluation.
type EvalResult struct {
	Outcome          api.Outcome `json:"outcome"`
	Rule             string      `json:"rule"`
	Message          string      `json:"message,omitempty"`
	ReturningCitizen bool        `json:"returning_citizen,omitempty"`
}

// Decision converts the result to its wire form.
func (r *EvalResult) Decision() api.Decision {
	return api.Decision{
		Outcome:          r.Outcome,
		Rule:             r.Rule,
		Message:          r.Message,
		ReturningCitizen: r.ReturningCitizen,
	}
}
