package penalty

import (
	"sync"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/auth"
	"github.com/emersonmendes/warzone-4us/internal/config"

	"github.com/rs/zerolog"
)

// Controller is the process-wide cooldown gate armed by rate-limit
// classifications. The state is a stored deadline checked on access, so the
// penalty clears on its own without an external poke.
type Controller struct {
	mu       sync.Mutex
	until    time.Time
	cooldown time.Duration
	pool     *auth.Pool
	logger   zerolog.Logger
}

func NewController(cfg *config.Config, pool *auth.Pool, logger zerolog.Logger) *Controller {
	return &Controller{cooldown: cfg.PenaltyCooldown, pool: pool, logger: logger}
}

// Active reports whether the penalty window is in effect. All concurrent
// callers observe the same answer.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.until)
}

// Remaining is how long until the window clears; zero when inactive.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r := time.Until(c.until); r > 0 {
		return r
	}
	return 0
}

// Trigger arms the penalty window and blocks the offending credential.
func (c *Controller) Trigger(username string) {
	c.mu.Lock()
	c.until = time.Now().Add(c.cooldown)
	c.mu.Unlock()

	c.pool.Block(username)
	c.logger.Warn().
		Str("username", username).
		Dur("cooldown", c.cooldown).
		Msg("rate limit hit, suppressing upstream calls")
}
