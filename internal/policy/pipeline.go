package policy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/document"
)

// Rule is a single admission rule. Rules are evaluated in order and the
// first one whose Match returns true decides the outcome.
type Rule struct {
	Name    string
	Outcome api.Outcome
	Message string

	Match func(in *EvalInput) bool

	// Detail optionally replaces Message with a record-specific explanation.
	Detail func(in *EvalInput) string
}

// AdmissionRules returns the admission rules in priority order.
// Quarantine runs first so that incomplete or malformed records from an
// advisory country are still held.
func AdmissionRules() []Rule {
	return []Rule{
		{
			Name:    RuleMedicalAdvisory,
			Outcome: api.OutcomeQuarantine,
			Message: "origin or transit country is under a medical advisory",
			Match: func(in *EvalInput) bool {
				return in.Reference.MedicalAdvisoryHit(in.Traveller)
			},
		},
		{
			Name:    RuleIncompleteRecord,
			Outcome: api.OutcomeReject,
			Message: "required fields are missing",
			Match: func(in *EvalInput) bool {
				return !document.RequiredFieldsPresent(in.Traveller)
			},
			Detail: func(in *EvalInput) string {
				return "missing required fields: " + strings.Join(document.MissingFields(in.Traveller), ", ")
			},
		},
		{
			Name:    RuleVisitVisa,
			Outcome: api.OutcomeReject,
			Message: "visitor visa required but missing or expired",
			Match: func(in *EvalInput) bool {
				return needsVisa(in, api.ReasonVisit)
			},
		},
		{
			Name:    RuleTransitVisa,
			Outcome: api.OutcomeReject,
			Message: "transit visa required but missing or expired",
			Match: func(in *EvalInput) bool {
				return needsVisa(in, api.ReasonTransit)
			},
		},
		{
			Name:    RuleDocumentFormat,
			Outcome: api.OutcomeReject,
			Message: "passport or visa number is malformed",
			Match: func(in *EvalInput) bool {
				return !document.PassportFormatValid(in.Traveller.Passport) ||
					!document.VisaFormatValid(in.Traveller)
			},
		},
		{
			Name:    RuleWatchlist,
			Outcome: api.OutcomeSecondary,
			Message: "traveller matches a watchlist entry",
			Match: func(in *EvalInput) bool {
				return in.Reference.WatchlistMatch(in.Traveller)
			},
		},
	}
}

func needsVisa(in *EvalInput, reason string) bool {
	return strings.EqualFold(in.Traveller.EntryReason, reason) &&
		in.Reference.VisaRequired(in.Traveller) &&
		!in.Reference.VisaStillValid(in.Traveller, in.Now)
}

// PipelineEngine implements first-match-wins evaluation over AdmissionRules.
// It holds no mutable state and is safe for concurrent use.
type PipelineEngine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewPipelineEngine creates an engine with the standard admission rules.
func NewPipelineEngine(logger *slog.Logger) *PipelineEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PipelineEngine{rules: AdmissionRules(), logger: logger}
}

// Evaluate checks the traveller against rules in order, returning the first match.
func (e *PipelineEngine) Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error) {
	if err := input.check(); err != nil {
		return nil, err
	}

	for _, rule := range e.rules {
		if !rule.Match(input) {
			continue
		}
		msg := rule.Message
		if rule.Detail != nil {
			msg = rule.Detail(input)
		}
		e.logger.DebugContext(ctx, "rule matched",
			"rule", rule.Name,
			"outcome", rule.Outcome,
			"passport", input.Traveller.Passport,
		)
		return &EvalResult{
			Outcome: rule.Outcome,
			Rule:    rule.Name,
			Message: msg,
		}, nil
	}

	// No rule matched: admit. Returning citizens are reported but decided the same way.
	returning := input.Reference.IsReturningCitizen(input.Traveller)
	msg := "all admissibility checks passed"
	if returning {
		msg = "returning citizen; all admissibility checks passed"
	}
	return &EvalResult{
		Outcome:          api.OutcomeAccept,
		Rule:             RuleDefault,
		Message:          msg,
		ReturningCitizen: returning,
	}, nil
}

// Rules returns the rule names in evaluation order.
func (e *PipelineEngine) Rules() []string {
	names := make([]string, 0, len(e.rules)+1)
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	return append(names, RuleDefault)
}
