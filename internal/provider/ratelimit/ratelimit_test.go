package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketoracle/internal/provider"
	"marketoracle/internal/provider/ratelimit"
)

type stubProvider struct {
	calls int
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Fetch(_ context.Context, symbol string) (provider.Quote, error) {
	s.calls++
	return provider.Quote{Symbol: symbol, Price: 1.0}, nil
}

func TestMinInterval_DelaysSecondCall(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	m := &ratelimit.MinInterval{P: stub, Interval: 40 * time.Millisecond}

	start := time.Now()
	_, err := m.Fetch(t.Context(), "BTC")
	require.NoError(t, err)
	_, err = m.Fetch(t.Context(), "BTC")
	require.NoError(t, err)

	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	require.Equal(t, 2, stub.calls)
}

func TestMinInterval_ContextCanceled(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	m := &ratelimit.MinInterval{P: stub, Interval: time.Minute}

	_, err := m.Fetch(t.Context(), "BTC")
	require.NoError(t, err)

	// The second call would have to wait a minute; cancel instead.
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Fetch(ctx, "BTC")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, stub.calls)
}

func TestTokenBucket_BurstThenDelay(t *testing.T) {
	t.Parallel()

	// Burst of 1 at 50 tokens/sec: the first call is free, the second
	// waits ~20ms for a refill.
	stub := &stubProvider{}
	tb := &ratelimit.TokenBucketProvider{P: stub, TB: ratelimit.NewTokenBucket(50, 1)}

	start := time.Now()
	_, err := tb.Fetch(t.Context(), "AAPL")
	require.NoError(t, err)
	require.Less(t, time.Since(start), 15*time.Millisecond)

	_, err = tb.Fetch(t.Context(), "AAPL")
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	require.Equal(t, 2, stub.calls)
}

func TestTokenBucket_ContextCanceled(t *testing.T) {
	t.Parallel()

	// A near-zero refill rate makes the second token unreachable.
	stub := &stubProvider{}
	tb := &ratelimit.TokenBucketProvider{P: stub, TB: ratelimit.NewTokenBucket(0.001, 1)}

	_, err := tb.Fetch(t.Context(), "AAPL")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = tb.Fetch(ctx, "AAPL")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, stub.calls)
}
