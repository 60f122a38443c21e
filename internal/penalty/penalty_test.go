package penalty

import (
	"testing"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/auth"
	"github.com/emersonmendes/warzone-4us/internal/config"
	"github.com/emersonmendes/warzone-4us/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestController(cooldown time.Duration) (*Controller, *auth.Pool) {
	cfg := &config.Config{
		Credentials: []domain.Credential{
			{Username: "alice", Password: "pw"},
			{Username: "bob", Password: "pw"},
		},
		PenaltyCooldown: cooldown,
	}
	pool := auth.NewPool(cfg, zerolog.Nop())
	return NewController(cfg, pool, zerolog.Nop()), pool
}

func TestControllerInactiveByDefault(t *testing.T) {
	ctrl, _ := newTestController(time.Minute)
	require.False(t, ctrl.Active())
	require.Zero(t, ctrl.Remaining())
}

func TestControllerTriggerBlocksOffender(t *testing.T) {
	ctrl, pool := newTestController(time.Minute)

	ctrl.Trigger("alice")
	require.True(t, ctrl.Active())
	require.True(t, pool.Blocked("alice"))
	require.False(t, pool.Blocked("bob"))
	require.Greater(t, ctrl.Remaining(), time.Duration(0))
}

func TestControllerClearsAfterCooldown(t *testing.T) {
	ctrl, _ := newTestController(30 * time.Millisecond)

	ctrl.Trigger("alice")
	require.True(t, ctrl.Active())

	time.Sleep(50 * time.Millisecond)
	require.False(t, ctrl.Active())
	require.Zero(t, ctrl.Remaining())
}

func TestControllerTriggerWithoutOffender(t *testing.T) {
	ctrl, pool := newTestController(time.Minute)

	ctrl.Trigger("")
	require.True(t, ctrl.Active())
	require.False(t, pool.Blocked(""))
}
