package wallclock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Instance.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepElapses(t *testing.T) {
	start := time.Now()
	require.NoError(t, Instance.Sleep(context.Background(), 5*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestFakeAdvances(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)
	f := NewFake(base)

	require.NoError(t, f.Sleep(context.Background(), 500*time.Millisecond))
	require.NoError(t, f.Sleep(context.Background(), time.Second))

	require.Equal(t, base.Add(1500*time.Millisecond), f.Now())
	require.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, f.Sleeps())
}
