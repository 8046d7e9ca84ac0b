package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/metrics"
	"github.com/tkingovr/borderguard/internal/policy"
	"github.com/tkingovr/borderguard/internal/reference"
)

// Runner decides batches with a fixed engine, recording metrics and logs.
type Runner struct {
	engine  policy.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
	workers int
}

// NewRunner creates a Runner. m may be nil.
func NewRunner(engine policy.Engine, logger *slog.Logger, m *metrics.Metrics, workers int) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{engine: engine, logger: logger, metrics: m, workers: workers}
}

// Run decides entries against ref. A zero now uses the wall clock.
func (r *Runner) Run(ctx context.Context, entries []api.Traveller, ref *reference.Index, now time.Time) (*api.DecideResponse, error) {
	batchID := uuid.NewString()
	logger := r.logger.With("batch_id", batchID)
	start := time.Now()

	results, err := Decide(ctx, r.engine, entries, ref, Options{
		Workers: r.workers,
		Now:     now,
		Observe: func(res *policy.EvalResult, elapsed time.Duration) {
			r.metrics.IncrementOutcome(string(res.Outcome), res.Rule)
			r.metrics.ObserveEvaluateLatency(elapsed)
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "batch failed", "entries", len(entries), "error", err)
		return nil, err
	}
	r.metrics.ObserveBatchSize(len(entries))

	counts := make(map[api.Outcome]int, 4)
	for i := range results {
		counts[results[i].Outcome]++
	}
	countries, watchlist := ref.Len()
	logger.InfoContext(ctx, "batch decided",
		slog.Int("entries", len(entries)),
		slog.String("home_nation", ref.HomeNation()),
		slog.Int("countries", countries),
		slog.Int("watchlist", watchlist),
		slog.Int("accept", counts[api.OutcomeAccept]),
		slog.Int("reject", counts[api.OutcomeReject]),
		slog.Int("secondary", counts[api.OutcomeSecondary]),
		slog.Int("quarantine", counts[api.OutcomeQuarantine]),
		slog.Duration("duration", time.Since(start)),
	)

	return &api.DecideResponse{
		BatchID:  batchID,
		Outcomes: Outcomes(results),
		Results:  Decisions(results),
	}, nil
}

// Check decides a single traveller.
func (r *Runner) Check(ctx context.Context, t *api.Traveller, ref *reference.Index, now time.Time) (*policy.EvalResult, error) {
	if now.IsZero() {
		now = time.Now()
	}
	start := time.Now()
	res, err := r.engine.Evaluate(ctx, &policy.EvalInput{Traveller: t, Reference: ref, Now: now})
	if err != nil {
		return nil, err
	}
	r.metrics.IncrementOutcome(string(res.Outcome), res.Rule)
	r.metrics.ObserveEvaluateLatency(time.Since(start))
	return res, nil
}
