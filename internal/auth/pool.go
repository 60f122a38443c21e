package auth

import (
	"math/rand"
	"sync"

	"github.com/emersonmendes/warzone-4us/internal/config"
	"github.com/emersonmendes/warzone-4us/internal/domain"

	"github.com/rs/zerolog"
)

// Pool holds the configured credentials and the set currently excluded from
// selection. Mutations are serialized; multiple in-flight batches select and
// block concurrently.
type Pool struct {
	mu      sync.Mutex
	creds   []domain.Credential
	blocked map[string]struct{}
	logger  zerolog.Logger
}

func NewPool(cfg *config.Config, logger zerolog.Logger) *Pool {
	return &Pool{
		creds:   cfg.Credentials,
		blocked: make(map[string]struct{}),
		logger:  logger,
	}
}

// Select picks a credential uniformly at random among the unblocked ones.
// When the blocklist covers every configured credential it is cleared
// entirely and selection retried, so selection never starves while at least
// one credential is configured.
func (p *Pool) Select() (domain.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) == 0 {
		return domain.Credential{}, domain.ErrNoCredentials
	}

	eligible := p.eligibleLocked()
	if len(eligible) == 0 {
		p.logger.Warn().Int("blocked", len(p.blocked)).Msg("all credentials blocked, clearing blocklist")
		p.blocked = make(map[string]struct{})
		eligible = p.eligibleLocked()
	}

	return eligible[rand.Intn(len(eligible))], nil
}

func (p *Pool) eligibleLocked() []domain.Credential {
	eligible := make([]domain.Credential, 0, len(p.creds))
	for _, c := range p.creds {
		if _, ok := p.blocked[c.Username]; !ok {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// Block excludes a credential from selection until the next blocklist reset.
func (p *Pool) Block(username string) {
	if username == "" {
		return
	}
	p.mu.Lock()
	p.blocked[username] = struct{}{}
	p.mu.Unlock()
	p.logger.Warn().Str("username", username).Msg("credential blocked")
}

// Blocked reports whether a credential is currently excluded.
func (p *Pool) Blocked(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.blocked[username]
	return ok
}

// Size is the number of configured credentials.
func (p *Pool) Size() int {
	return len(p.creds)
}
