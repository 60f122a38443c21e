package auth

import (
	"context"
	"errors"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/api"
	"github.com/emersonmendes/warzone-4us/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// LoginFlow executes the two-step upstream handshake and keeps the session
// cache warm. Concurrent callers needing a session for the same credential
// share a single login.
type LoginFlow struct {
	client   *api.Client
	sessions *SessionCache
	pool     *Pool
	group    singleflight.Group
	logger   zerolog.Logger
}

func NewLoginFlow(client *api.Client, sessions *SessionCache, pool *Pool, logger zerolog.Logger) *LoginFlow {
	return &LoginFlow{client: client, sessions: sessions, pool: pool, logger: logger}
}

// Authenticate obtains a usable session: a cached one when available,
// otherwise a fresh login with a credential selected from the pool. A
// rejected login blocks that credential and the next one is tried, bounded
// by the pool size. Transport failures are surfaced immediately.
func (f *LoginFlow) Authenticate(ctx context.Context) (domain.Session, error) {
	attempts := max(f.pool.Size(), 1)

	var lastErr error
	for i := 0; i < attempts; i++ {
		cred, err := f.pool.Select()
		if err != nil {
			return domain.Session{}, err
		}

		sess, err := f.Session(ctx, cred)
		if err == nil {
			return sess, nil
		}

		var authErr *domain.AuthError
		if !errors.As(err, &authErr) {
			return domain.Session{}, err
		}
		lastErr = err
	}
	return domain.Session{}, lastErr
}

// Session returns the cached session for a credential, logging in when none
// is cached.
func (f *LoginFlow) Session(ctx context.Context, cred domain.Credential) (domain.Session, error) {
	if sess, ok := f.sessions.Get(cred.Username); ok {
		return sess, nil
	}

	v, err, _ := f.group.Do(cred.Username, func() (any, error) {
		// another caller may have finished logging in while we queued
		if sess, ok := f.sessions.Get(cred.Username); ok {
			return sess, nil
		}
		return f.login(ctx, cred)
	})
	if err != nil {
		return domain.Session{}, err
	}
	return v.(domain.Session), nil
}

func (f *LoginFlow) login(ctx context.Context, cred domain.Credential) (domain.Session, error) {
	f.logger.Info().Str("username", cred.Username).Msg("logging in")

	token, err := f.client.FetchCSRFToken(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	value, err := f.client.SubmitLogin(ctx, cred, token)
	if err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			f.pool.Block(cred.Username)
		}
		return domain.Session{}, err
	}

	sess := domain.Session{Username: cred.Username, Token: value, CreatedAt: time.Now()}
	f.sessions.Put(sess)
	f.logger.Info().Str("username", cred.Username).Msg("session established")
	return sess, nil
}
