// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package concurrent runs bounded groups of jobs for series batches and
// per-window conflict checks.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool represents a pool of workers that can process jobs concurrently
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// RunAll executes all functions without cancellation on error.
// It returns only the non-nil errors, in no particular order.
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func() error) []error {
	var errs []error
	for _, err := range wp.RunIndexed(ctx, len(functions), func(i int) error { return functions[i]() }) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// RunIndexed calls fn for every index in [0, n) without cancellation on
// error. The returned slice has length n and holds the error of each call,
// so callers can attribute failures to their inputs.
func (wp *WorkerPool) RunIndexed(ctx context.Context, n int, fn func(i int) error) []error {
	if n == 0 {
		return nil
	}

	results := make([]error, n)

	// Each goroutine writes only its own slot.
	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = err
				return nil
			}
			results[i] = fn(i)
			return nil
		})
	}

	_ = g.Wait()
	return results
}
