package policy

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/open-policy-agent/opa/topdown"

	"github.com/tkingovr/borderguard/api"
)

//go:embed admission.rego
var defaultRegoPolicy string

// OPAEngine implements the Engine interface using embedded OPA/Rego.
type OPAEngine struct {
	mu   sync.RWMutex
	path string

	// Compiled query for evaluation
	query rego.PreparedEvalQuery
}

// NewOPAEngine creates a new OPA engine from a .rego policy file.
func NewOPAEngine(path string) (*OPAEngine, error) {
	e := &OPAEngine{path: path}
	if err := e.Reload(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

// NewOPAEngineFromSource creates a new OPA engine from raw Rego source.
func NewOPAEngineFromSource(source string) (*OPAEngine, error) {
	e := &OPAEngine{}
	if err := e.loadSource(source); err != nil {
		return nil, err
	}
	return e, nil
}

// NewDefaultOPAEngine creates an OPA engine running the built-in admission policy.
func NewDefaultOPAEngine() (*OPAEngine, error) {
	return NewOPAEngineFromSource(defaultRegoPolicy)
}

// Evaluate runs the OPA policy against the traveller's facts.
//
// The Rego policy must define data.borderguard.decision as an object:
//
//	outcome: "Accept" | "Reject" | "Secondary" | "Quarantine"
//	rule: string
//	message: string (optional)
//
// The input document is Facts as returned by Gather.
func (e *OPAEngine) Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error) {
	if err := input.check(); err != nil {
		return nil, err
	}
	facts := Gather(input)

	e.mu.RLock()
	query := e.query
	e.mu.RUnlock()

	rs, err := query.Eval(ctx, rego.EvalInput(facts.Map()))
	if err != nil {
		if topdown.IsError(err) {
			return &EvalResult{
				Outcome: api.OutcomeReject,
				Rule:    "_opa_error",
				Message: "OPA evaluation error: " + err.Error(),
			}, nil
		}
		return nil, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return &EvalResult{
			Outcome: api.OutcomeReject,
			Rule:    "_opa_default",
			Message: "OPA policy returned no decision",
		}, nil
	}

	resultMap, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &EvalResult{
			Outcome: api.OutcomeReject,
			Rule:    "_opa_parse_error",
			Message: "unexpected OPA result type",
		}, nil
	}

	result := parseOPAResult(resultMap)
	if result.Outcome == api.OutcomeAccept {
		result.ReturningCitizen = facts.ReturningCitizen
	}
	return result, nil
}

// Reload re-reads the Rego policy file from disk and recompiles.
func (e *OPAEngine) Reload(_ context.Context) error {
	if e.path == "" {
		return nil
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("reading OPA policy file: %w", err)
	}
	return e.loadSource(string(data))
}

func (e *OPAEngine) loadSource(source string) error {
	_, err := ast.ParseModuleWithOpts("admission.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return fmt.Errorf("parsing Rego policy: %w", err)
	}

	r := rego.New(
		rego.Query("data.borderguard.decision"),
		rego.Module("admission.rego", source),
		rego.Store(inmem.New()),
	)

	query, err := r.PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("preparing OPA query: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query

	return nil
}

func parseOPAResult(m map[string]any) *EvalResult {
	result := &EvalResult{
		Outcome: api.OutcomeReject, // fail closed on unknown outcomes
		Rule:    "_opa_unknown_outcome",
	}

	if v, ok := m["outcome"].(string); ok {
		switch api.Outcome(v) {
		case api.OutcomeAccept, api.OutcomeReject, api.OutcomeSecondary, api.OutcomeQuarantine:
			result.Outcome = api.Outcome(v)
			result.Rule = ""
		}
	}

	if r, ok := m["rule"].(string); ok && result.Rule == "" {
		result.Rule = r
	}
	if msg, ok := m["message"].(string); ok {
		result.Message = msg
	}

	return result
}
