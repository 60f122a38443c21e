package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DefaultRateLimitMax    = 5
	DefaultRateLimitWindow = 1 * time.Second
)

// Cooldown defaults observed against the upstream: rotation mode recovers
// quickly because the blocked credential is swapped out; a single credential
// has to sit out the full upstream window.
const (
	RotationCooldown         = 30 * time.Second
	SingleCredentialCooldown = 120 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)
