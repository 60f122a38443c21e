package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/config"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Gate is the single admission point for every outbound upstream call, login
// and data alike. Admission is FIFO across all concurrent callers; there is
// no per-endpoint limiter.
type Gate struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewGate(cfg *config.Config, logger zerolog.Logger) *Gate {
	interval := cfg.RateLimitWindow / time.Duration(cfg.RateLimitMax)
	return &Gate{
		limiter: rate.NewLimiter(rate.Every(interval), cfg.RateLimitMax),
		logger:  logger,
	}
}

// Admit blocks until a slot is available or the context ends.
func (g *Gate) Admit(ctx context.Context) error {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter admission: %w", err)
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		g.logger.Debug().Dur("waited", waited).Msg("upstream call delayed by rate limiter")
	}
	return nil
}
