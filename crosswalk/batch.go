package crosswalk

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/geocrosswalk/record"
)

// DefaultConcurrency bounds a batch when the caller passes no limit.
const DefaultConcurrency = 4

// Input is one document of a batch.
type Input struct {
	// Name identifies the input in logs, usually its path.
	Name   string
	Schema string
	Raw    []byte
}

// BatchResult pairs an input with the outcome of its run.
type BatchResult struct {
	Input  string
	Result *Result
	Err    error
}

// Batch runs every input with at most limit runs in flight. Runs are
// isolated: one failing run does not stop the others. Once every run has
// finished, a successful run whose record ID was already produced by an
// earlier input fails with a unique_record_id violation. Results are in
// input order. The returned error is the context's, if it ended the batch.
func (d *Driver) Batch(ctx context.Context, inputs []Input, limit int, exporters ...string) ([]BatchResult, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]BatchResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := d.run(ctx, in.Schema, in.Raw, exporters...)
			results[i] = BatchResult{Input: in.Name, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	firstSeen := make(map[string]string)
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		id := r.Result.Record.Identity.ID
		if prev, dup := firstSeen[id]; dup {
			r.Err = r.Result.reject(&record.InvariantViolation{
				Rule:    record.RuleUniqueRecordID,
				Path:    "identity.id",
				Message: fmt.Sprintf("record %q was already produced by %s", id, prev),
			})
			continue
		}
		firstSeen[id] = r.Input
	}
	for _, r := range results {
		d.metrics.observe(r.Result)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	d.logger.Info("Batch complete",
		slog.Int("inputs", len(inputs)), slog.Int("failed", failed), slog.Int("limit", limit))
	return results, ctx.Err()
}
