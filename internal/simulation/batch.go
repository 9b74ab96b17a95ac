package simulation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run in a batch.
type Job struct {
	Name string
	Path *Path
}

// BatchResult pairs a job with its outcome.
type BatchResult struct {
	Name    string
	Result  *Result
	Summary Summary
}

// RunBatch simulates jobs on at most workers goroutines and returns results
// in job order. Paths share only read-only inputs, so no locking is needed.
// Cancelling ctx stops scheduling jobs that have not started.
func RunBatch(ctx context.Context, jobs []Job, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if job.Path == nil {
				return fmt.Errorf("batch job %q: no path", job.Name)
			}
			res := job.Path.Simulate()
			if err := res.Err(); err != nil {
				return fmt.Errorf("batch job %q: %w", job.Name, err)
			}
			results[i] = BatchResult{Name: job.Name, Result: res, Summary: res.Summary()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
