package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGateAdmitsUpToBurst(t *testing.T) {
	gate := NewGate(&config.Config{RateLimitMax: 3, RateLimitWindow: time.Second}, zerolog.Nop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, gate.Admit(context.Background()))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestGateDelaysBeyondWindowBudget(t *testing.T) {
	gate := NewGate(&config.Config{RateLimitMax: 2, RateLimitWindow: 200 * time.Millisecond}, zerolog.Nop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, gate.Admit(context.Background()))
	}
	// the third admission has to wait for a refill
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestGateHonorsContextCancellation(t *testing.T) {
	gate := NewGate(&config.Config{RateLimitMax: 1, RateLimitWindow: time.Hour}, zerolog.Nop())
	require.NoError(t, gate.Admit(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, gate.Admit(ctx))
}
