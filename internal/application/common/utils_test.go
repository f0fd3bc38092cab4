package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgInterval(t *testing.T) {
	assert.Equal(t, "30 seconds", PgInterval(30*time.Second))
	assert.Equal(t, "90 seconds", PgInterval(90*time.Second))
	assert.Equal(t, "0 seconds", PgInterval(500*time.Millisecond))
}

func TestNextBackoffWithJitter_Bounds(t *testing.T) {
	for attempts := 0; attempts < 12; attempts++ {
		base := time.Second << attempts
		if base > 30*time.Minute {
			base = 30 * time.Minute
		}
		for i := 0; i < 50; i++ {
			got := NextBackoffWithJitter(attempts)
			assert.GreaterOrEqual(t, got, base/2, "attempts=%d", attempts)
			assert.Less(t, got, base, "attempts=%d", attempts)
		}
	}
}

func TestNextBackoffWithJitter_NegativeAttempts(t *testing.T) {
	got := NextBackoffWithJitter(-5)
	assert.GreaterOrEqual(t, got, 500*time.Millisecond)
	assert.Less(t, got, time.Second)
}

func TestSleepCtx_Completes(t *testing.T) {
	err := SleepCtx(context.Background(), 5*time.Millisecond)
	assert.NoError(t, err)
}

func TestSleepCtx_ZeroDuration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// нулевая задержка не смотрит на контекст
	assert.NoError(t, SleepCtx(ctx, 0))
}

func TestSleepCtx_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- SleepCtx(ctx, time.Minute) }()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("SleepCtx did not return after cancel")
	}
}
