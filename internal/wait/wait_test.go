package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceFetch returns statuses from the sequence in order, repeating the
// last one forever.
func sequenceFetch(statuses ...string) (StatusFetch, *int) {
	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		idx := calls
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		calls++
		return statuses[idx], nil
	}
	return fetch, &calls
}

func TestForStatusReachesTarget(t *testing.T) {
	fetch, calls := sequenceFetch("pending", "pending", "ready")

	result, err := ForStatus(context.Background(), fetch, Options{
		Targets:  []string{"ready"},
		Timeout:  time.Second,
		Interval: time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, ReachedTarget, result.Outcome)
	assert.Equal(t, "ready", result.Status)
	assert.Equal(t, 3, result.Fetches)
	assert.Equal(t, 3, *calls)
}

func TestForStatusZeroTimeoutDoesNotFetch(t *testing.T) {
	fetch, calls := sequenceFetch("pending")

	result, err := ForStatus(context.Background(), fetch, Options{
		Targets: []string{"ready"},
		Timeout: 0,
	})

	require.NoError(t, err)
	assert.Equal(t, ReachedTarget, result.Outcome)
	assert.Equal(t, 0, result.Fetches)
	assert.Equal(t, 0, *calls, "zero timeout must not fetch at all")

	result, err = ForStatus(context.Background(), fetch, Options{
		Targets: []string{"ready"},
		Timeout: -time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, ReachedTarget, result.Outcome)
	assert.Equal(t, 0, *calls)
}

func TestForStatusObservesFailure(t *testing.T) {
	fetch, calls := sequenceFetch("pending", "failed", "ready")

	result, err := ForStatus(context.Background(), fetch, Options{
		Targets:  []string{"ready"},
		Failures: []string{"failed"},
		Timeout:  time.Second,
		Interval: time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, ObservedFailure, result.Outcome)
	assert.Equal(t, "failed", result.Status)
	assert.Equal(t, 2, result.Fetches)
	assert.Equal(t, 2, *calls, "polling must stop at the failure status")
}

func TestForStatusTimesOut(t *testing.T) {
	fetch, _ := sequenceFetch("pending")

	// Timeout shorter than two poll intervals.
	result, err := ForStatus(context.Background(), fetch, Options{
		Targets:  []string{"ready"},
		Timeout:  30 * time.Millisecond,
		Interval: 20 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, TimedOut, result.Outcome)
	assert.Equal(t, "pending", result.Status)
	assert.LessOrEqual(t, result.Fetches, 2)
	assert.GreaterOrEqual(t, result.Fetches, 1)
}

func TestForStatusPropagatesFetchError(t *testing.T) {
	transportErr := errors.New("connection refused")
	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "", transportErr
	}

	_, err := ForStatus(context.Background(), fetch, Options{
		Targets:  []string{"ready"},
		Timeout:  time.Second,
		Interval: time.Millisecond,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, 1, calls, "fetch errors are not retried")
}

func TestForStatusContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context) (string, error) {
		cancel()
		return "pending", nil
	}

	result, err := ForStatus(ctx, fetch, Options{
		Targets:  []string{"ready"},
		Timeout:  time.Minute,
		Interval: time.Minute,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TimedOut, result.Outcome)
}

func TestForGone(t *testing.T) {
	t.Run("resource disappears", func(t *testing.T) {
		remaining := 2
		probe := func(ctx context.Context) (bool, error) {
			remaining--
			return remaining >= 0, nil
		}

		result, err := ForGone(context.Background(), probe, time.Second, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, ReachedTarget, result.Outcome)
		assert.Equal(t, 3, result.Fetches)
	})

	t.Run("still present at timeout", func(t *testing.T) {
		probe := func(ctx context.Context) (bool, error) { return true, nil }

		result, err := ForGone(context.Background(), probe, 20*time.Millisecond, 15*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, TimedOut, result.Outcome)
	})

	t.Run("probe error propagates", func(t *testing.T) {
		probeErr := errors.New("boom")
		probe := func(ctx context.Context) (bool, error) { return false, probeErr }

		_, err := ForGone(context.Background(), probe, time.Second, time.Millisecond)
		assert.ErrorIs(t, err, probeErr)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "reached target status", ReachedTarget.String())
	assert.Equal(t, "observed failure status", ObservedFailure.String())
	assert.Equal(t, "timed out", TimedOut.String())
}
