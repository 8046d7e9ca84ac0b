// Package batch runs a list of travellers through a policy engine.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/policy"
	"github.com/tkingovr/borderguard/internal/reference"
)

// Options control a batch run.
type Options struct {
	// Workers is the number of travellers evaluated concurrently. Values
	// below 2 evaluate sequentially.
	Workers int

	// Now anchors visa validity for every record in the batch. Zero means
	// the wall clock, read once at the start of the batch.
	Now time.Time

	// Observe, when set, is called once per evaluated record. It may be
	// called concurrently when Workers > 1.
	Observe func(result *policy.EvalResult, elapsed time.Duration)
}

// Decide evaluates every entry and returns one result per entry in input
// order. Entries are evaluated independently; an engine error aborts the
// batch and no results are returned.
func Decide(ctx context.Context, engine policy.Engine, entries []api.Traveller, ref *reference.Index, opts Options) ([]policy.EvalResult, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	results := make([]policy.EvalResult, len(entries))
	eval := func(ctx context.Context, i int) error {
		start := time.Now()
		res, err := engine.Evaluate(ctx, &policy.EvalInput{
			Traveller: &entries[i],
			Reference: ref,
			Now:       now,
		})
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		results[i] = *res
		if opts.Observe != nil {
			opts.Observe(res, time.Since(start))
		}
		return nil
	}

	if opts.Workers < 2 {
		for i := range entries {
			if err := eval(ctx, i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range entries {
		g.Go(func() error {
			return eval(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Outcomes extracts the outcome of each result, preserving order.
func Outcomes(results []policy.EvalResult) []api.Outcome {
	out := make([]api.Outcome, len(results))
	for i := range results {
		out[i] = results[i].Outcome
	}
	return out
}

// Decisions converts results to their wire form, preserving order.
func Decisions(results []policy.EvalResult) []api.Decision {
	out := make([]api.Decision, len(results))
	for i := range results {
		out[i] = results[i].Decision()
	}
	return out
}
