package aroi

import (
	"context"
	"sync"
)

// ProgressFunc is called after each candidate completes, with the number of
// completed candidates, the batch total, and that candidate's result.
// Under parallel validation it is called from the collecting goroutine, so
// implementations need no locking of their own.
type ProgressFunc func(completed, total int, result ValidationResult)

// StopFunc is polled after each completion. When it returns true, pending
// work is abandoned and the results collected so far are returned. In-flight
// validations run to their own timeout but start no further network calls.
type StopFunc func() bool

// BatchOptions configures a ValidateBatch run.
type BatchOptions struct {
	Progress ProgressFunc
	Stop     StopFunc
}

// ValidateBatch validates every candidate and returns one result each.
//
// With Workers > 1 candidates are fanned out across a bounded worker pool
// and results are collected in completion order, which under parallel
// execution differs from candidate order. With Workers <= 1 validation is
// sequential and order-preserving. Cancelling ctx, like a Stop signal, is
// honored at completion boundaries and returns the partial results.
func (v *Validator) ValidateBatch(ctx context.Context, candidates []Candidate, opts BatchOptions) []ValidationResult {
	if v.workers > 1 {
		return v.validateParallel(ctx, candidates, opts)
	}
	return v.validateSequential(ctx, candidates, opts)
}

func (v *Validator) validateSequential(ctx context.Context, candidates []Candidate, opts BatchOptions) []ValidationResult {
	total := len(candidates)
	results := make([]ValidationResult, 0, total)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}

		result := v.Validate(ctx, candidate)
		results = append(results, result)

		if opts.Progress != nil {
			opts.Progress(len(results), total, result)
		}
		if opts.Stop != nil && opts.Stop() {
			break
		}
	}

	return results
}

func (v *Validator) validateParallel(ctx context.Context, candidates []Candidate, opts BatchOptions) []ValidationResult {
	total := len(candidates)
	if total == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := v.workers
	if workers > total {
		workers = total
	}

	// jobs is unbuffered so that cancellation stops further candidates
	// from ever being picked up.
	jobs := make(chan Candidate)
	completions := make(chan ValidationResult, total)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for candidate := range jobs {
				completions <- v.Validate(ctx, candidate)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, candidate := range candidates {
			select {
			case jobs <- candidate:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]ValidationResult, 0, total)
	for len(results) < total {
		select {
		case result := <-completions:
			results = append(results, result)
			if opts.Progress != nil {
				opts.Progress(len(results), total, result)
			}
			if opts.Stop != nil && opts.Stop() {
				cancel()
				return results
			}
		case <-ctx.Done():
			return results
		}
	}

	// completions is buffered to the batch size, so workers never block
	// on send and the pool drains even when results are abandoned.
	wg.Wait()
	return results
}
