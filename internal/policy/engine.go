package policy

import (
	"context"
	"fmt"
	"log/slog"
)

// Engine kinds accepted by New.
const (
	KindPipeline = "pipeline"
	KindOPA      = "opa"
)

// Engine is the interface for admissibility evaluation backends.
type Engine interface {
	// Evaluate runs a single traveller through the admission rules and returns the outcome.
	Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error)
}

// New builds the engine named by kind. opaPolicy is an optional path to a
// Rego file and is only used by the OPA engine; empty selects the built-in policy.
func New(kind, opaPolicy string, logger *slog.Logger) (Engine, error) {
	switch kind {
	case "", KindPipeline:
		return NewPipelineEngine(logger), nil
	case KindOPA:
		if opaPolicy == "" {
			return NewDefaultOPAEngine()
		}
		return NewOPAEngine(opaPolicy)
	default:
		return nil, fmt.Errorf("unknown engine %q", kind)
	}
}
