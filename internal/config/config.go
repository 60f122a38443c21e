package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/constants"
	"github.com/emersonmendes/warzone-4us/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	Credentials     []domain.Credential
	RateLimitMax    int
	RateLimitWindow time.Duration
	PenaltyCooldown time.Duration
	ExcludedModes   []string
	ServerPort      string
	ProfileBaseURL  string
	APIBaseURL      string
}

// Load reads configuration once at startup. Everything is immutable
// afterwards.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	creds, err := parseCredentials(os.Getenv("WZ_CREDENTIALS"))
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, domain.ErrNoCredentials
	}

	cfg := &Config{
		Credentials:     creds,
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", constants.DefaultRateLimitMax),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", int(constants.DefaultRateLimitWindow.Milliseconds()))) * time.Millisecond,
		PenaltyCooldown: cooldownFor(len(creds)),
		ExcludedModes:   splitList(os.Getenv("EXCLUDED_MODES")),
		ServerPort:      getEnv("SERVER_PORT", "9191"),
		ProfileBaseURL:  getEnv("PROFILE_BASE_URL", "https://profile.callofduty.com"),
		APIBaseURL:      getEnv("API_BASE_URL", "https://my.callofduty.com/api/papi-client"),
	}

	if raw := os.Getenv("PENALTY_COOLDOWN"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PENALTY_COOLDOWN %q: %w", raw, err)
		}
		cfg.PenaltyCooldown = d
	}

	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d per %s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	logger.Info().
		Int("credentials", len(cfg.Credentials)).
		Int("rate_limit_max", cfg.RateLimitMax).
		Dur("rate_limit_window", cfg.RateLimitWindow).
		Dur("penalty_cooldown", cfg.PenaltyCooldown).
		Strs("excluded_modes", cfg.ExcludedModes).
		Str("server_port", cfg.ServerPort).
		Msg("configuration loaded")

	return cfg, nil
}

// cooldownFor picks the penalty default by pool size: with a single
// credential there is nothing to rotate to, so the window matches the full
// upstream cooldown.
func cooldownFor(credentials int) time.Duration {
	if credentials <= 1 {
		return constants.SingleCredentialCooldown
	}
	return constants.RotationCooldown
}

func parseCredentials(raw string) ([]domain.Credential, error) {
	var creds []domain.Credential
	for _, entry := range splitList(raw) {
		user, pass, ok := strings.Cut(entry, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("malformed credential entry %q, want user:pass", entry)
		}
		creds = append(creds, domain.Credential{Username: user, Password: pass})
	}
	return creds, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
