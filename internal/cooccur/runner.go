// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cooccur runs the co-occurrence search for an ordered list of
// formula pairs and hands the accumulated rows to the report writers.
package cooccur

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/formula-cooccurrence/internal/metrics"
	"github.com/pdiddy/formula-cooccurrence/internal/search"
	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

// Fetcher retrieves the total match count and all works for a query.
// *search.OpenAlexFetcher implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, query string) (search.FetchResult, error)
}

// ReportWriter persists the accumulated output of a run.
type ReportWriter interface {
	WriteReport(ctx context.Context, rep types.Report) error
}

// PairResult is the outcome for one pair. When Err is set, Count is zero and
// Rows is empty.
type PairResult struct {
	Pair  types.FormulaPair
	Count int
	Rows  []types.SearchResultRow
	Err   error
}

// Failed reports whether the pair's fetch failed.
func (r PairResult) Failed() bool { return r.Err != nil }

// Summary returns the pair's summary row.
func (r PairResult) Summary() types.SummaryRow {
	return types.SummaryRow{
		PairLeft:          r.Pair.Left,
		PairRight:         r.Pair.Right,
		CooccurrenceCount: strconv.Itoa(r.Count),
	}
}

// Result holds the accumulated rows of a run.
type Result struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Pairs      []PairResult
	Summary    []types.SummaryRow
	Works      []types.SearchResultRow
}

// Failures returns the number of pairs whose fetch failed.
func (r Result) Failures() int {
	n := 0
	for _, p := range r.Pairs {
		if p.Failed() {
			n++
		}
	}
	return n
}

// Runner processes formula pairs one at a time, in order.
type Runner struct {
	Fetcher Fetcher
	// Mailto is recorded on the report; the fetcher sends it on requests.
	Mailto  string
	Log     zerolog.Logger
	Metrics *metrics.Metrics
	// Out receives human-readable progress. Nil discards it.
	Out io.Writer
}

// FetchPair builds the query for pair and fetches it. Errors are returned in
// the PairResult, never raised.
func (r *Runner) FetchPair(ctx context.Context, pair types.FormulaPair) PairResult {
	if err := ctx.Err(); err != nil {
		return PairResult{Pair: pair, Err: err}
	}

	query := search.BuildFulltextQuery(pair.Left, pair.Right)
	res, err := r.Fetcher.FetchAll(ctx, query)
	if err != nil {
		return PairResult{Pair: pair, Err: err}
	}
	return PairResult{
		Pair:  pair,
		Count: res.Count,
		Rows:  search.ExtractRows(pair, res.Works),
	}
}

// Run processes every pair in order. A failed pair is recorded with count 0
// and no rows, and processing moves on to the next pair.
func (r *Runner) Run(ctx context.Context, pairs []types.FormulaPair) Result {
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	res := Result{
		StartedAt: time.Now(),
		Pairs:     make([]PairResult, 0, len(pairs)),
		Summary:   make([]types.SummaryRow, 0, len(pairs)),
	}

	for i, pair := range pairs {
		fmt.Fprintf(out, "[%d/%d] query: %s\n", i+1, len(pairs), pair)

		start := time.Now()
		pr := r.FetchPair(ctx, pair)
		elapsed := time.Since(start)

		if pr.Failed() {
			fmt.Fprintf(out, "  query failed: %v\n", pr.Err)
			r.Log.Warn().
				Err(pr.Err).
				Int("index", i+1).
				Str("left", pair.Left).
				Str("right", pair.Right).
				Msg("pair failed, recording count 0")
		}
		fmt.Fprintf(out, "  co-occurring works: %d\n", pr.Count)

		if r.Metrics != nil {
			status := metrics.PairOK
			if pr.Failed() {
				status = metrics.PairFailed
			}
			r.Metrics.PairsTotal.WithLabelValues(status).Inc()
			r.Metrics.WorksTotal.Add(float64(len(pr.Rows)))
			r.Metrics.PairDuration.Observe(elapsed.Seconds())
		}

		res.Pairs = append(res.Pairs, pr)
		res.Summary = append(res.Summary, pr.Summary())
		res.Works = append(res.Works, pr.Rows...)
	}

	res.FinishedAt = time.Now()
	r.Log.Info().
		Int("pairs", len(pairs)).
		Int("failed", res.Failures()).
		Int("works", len(res.Works)).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("run complete")
	return res
}

// RunAndWrite runs every pair, then hands the accumulated report to each
// writer exactly once, in order. Pair failures never surface here; the first
// writer error aborts and is returned. Reports are written even when ctx was
// cancelled mid-run.
func (r *Runner) RunAndWrite(ctx context.Context, pairs []types.FormulaPair, writers ...ReportWriter) (Result, error) {
	res := r.Run(ctx, pairs)
	ctx = context.WithoutCancel(ctx)
	rep := types.Report{
		Mailto:     r.Mailto,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Summary:    res.Summary,
		Works:      res.Works,
	}
	for _, w := range writers {
		if err := w.WriteReport(ctx, rep); err != nil {
			return res, fmt.Errorf("writing report: %w", err)
		}
	}
	return res, nil
}
