// Package wait implements the bounded status-polling primitive behind the
// CLI's --wait-for-*-sec flags.
//
// A wait repeatedly invokes a caller-supplied fetch function until the
// observed status enters a target set, a terminal-failure set, or the timeout
// elapses. The primitive itself knows nothing about HTTP or resource types;
// callers bind the fetch to a specific resource.
package wait

import (
	"context"
	"fmt"
	"time"
)

// Outcome is what a completed wait reports. A wait has exactly three
// outcomes; fetch errors are propagated separately and leave no outcome.
type Outcome int

const (
	// ReachedTarget means the observed status entered the target set.
	ReachedTarget Outcome = iota

	// ObservedFailure means the observed status entered the terminal-failure
	// set. The resource cannot recover without intervention, so polling
	// stops immediately.
	ObservedFailure

	// TimedOut means the timeout elapsed before either set was reached.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case ReachedTarget:
		return "reached target status"
	case ObservedFailure:
		return "observed failure status"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("unknown outcome %d", int(o))
	}
}

// DefaultInterval is the poll interval used when Options.Interval is unset.
const DefaultInterval = 10 * time.Second

// StatusFetch returns the current status of the awaited resource. Errors are
// propagated to the caller without retrying.
type StatusFetch func(ctx context.Context) (string, error)

// Options bound one wait.
type Options struct {
	// Targets are the statuses that complete the wait successfully.
	Targets []string

	// Failures are terminal statuses that abort the wait immediately.
	// Optional.
	Failures []string

	// Timeout caps the total wall-clock time. Zero or negative means "do
	// not wait": the wait returns ReachedTarget without fetching at all.
	Timeout time.Duration

	// Interval is the pause between polls. Defaults to DefaultInterval.
	Interval time.Duration
}

// Result describes a completed wait.
type Result struct {
	Outcome Outcome

	// Status is the last status observed, empty if nothing was fetched.
	Status string

	// Fetches counts invocations of the fetch function.
	Fetches int

	Elapsed time.Duration
}

// ForStatus polls fetch until the status enters opts.Targets or
// opts.Failures, or the timeout elapses. The first fetch happens immediately;
// subsequent fetches happen at most once per interval, sleeping in between.
// Total blocking time is bounded by the timeout plus one interval. A fetch
// error is returned as-is, without retrying.
func ForStatus(ctx context.Context, fetch StatusFetch, opts Options) (Result, error) {
	if opts.Timeout <= 0 {
		return Result{Outcome: ReachedTarget}, nil
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	targets := toSet(opts.Targets)
	failures := toSet(opts.Failures)
	start := time.Now()
	deadline := start.Add(opts.Timeout)
	fetches := 0

	for {
		status, err := fetch(ctx)
		fetches++
		if err != nil {
			return Result{}, err
		}
		result := Result{Status: status, Fetches: fetches, Elapsed: time.Since(start)}
		if targets[status] {
			result.Outcome = ReachedTarget
			return result, nil
		}
		if failures[status] {
			result.Outcome = ObservedFailure
			return result, nil
		}
		if err := sleepUntil(ctx, interval, deadline); err != nil {
			result.Outcome = TimedOut
			result.Elapsed = time.Since(start)
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, nil
		}
	}
}

// GoneProbe reports whether the awaited resource still exists. Errors other
// than "not found" must be returned, not folded into exists.
type GoneProbe func(ctx context.Context) (exists bool, err error)

// ForGone polls probe until the resource no longer exists. It reports
// ReachedTarget once the probe says gone, and TimedOut otherwise. Used by
// delete commands that wait for the deletion to finish.
func ForGone(ctx context.Context, probe GoneProbe, timeout, interval time.Duration) (Result, error) {
	fetch := func(ctx context.Context) (string, error) {
		exists, err := probe(ctx)
		if err != nil {
			return "", err
		}
		if exists {
			return "present", nil
		}
		return "gone", nil
	}
	return ForStatus(ctx, fetch, Options{
		Targets:  []string{"gone"},
		Timeout:  timeout,
		Interval: interval,
	})
}

// errDeadline distinguishes the wait budget expiring from context
// cancellation inside sleepUntil.
var errDeadline = fmt.Errorf("wait deadline reached")

// sleepUntil sleeps one interval, but never past the deadline. It returns an
// error once the deadline has been reached or the context is done.
func sleepUntil(ctx context.Context, interval time.Duration, deadline time.Time) error {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return errDeadline
	}
	sleep := interval
	if remaining < sleep {
		sleep = remaining
	}
	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	if !time.Now().Before(deadline) {
		return errDeadline
	}
	return nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
