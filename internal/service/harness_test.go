package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/api"
	"github.com/emersonmendes/warzone-4us/internal/auth"
	"github.com/emersonmendes/warzone-4us/internal/config"
	"github.com/emersonmendes/warzone-4us/internal/domain"
	"github.com/emersonmendes/warzone-4us/internal/penalty"
	"github.com/emersonmendes/warzone-4us/internal/ratelimit"

	"github.com/rs/zerolog"
)

// fakeUpstream plays both the profile service (login handshake) and the
// stats API. Responses are keyed by player tag or match id; unknown keys get
// the upstream's datastore-miss error envelope.
type fakeUpstream struct {
	server *httptest.Server

	statsResponses  map[string]string
	matchResponses  map[string]string
	detailResponses map[string]string

	loginPosts  int
	statsCalls  int
	matchCalls  int
	detailCalls int
}

const datastoreMiss = `{"status":"error","data":{"message":"Could not load data from datastore"}}`

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{
		statsResponses:  make(map[string]string),
		matchResponses:  make(map[string]string),
		detailResponses: make(map[string]string),
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/cod/login":
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "csrf-123"})
		case path == "/do_login":
			f.loginPosts++
			http.SetCookie(w, &http.Cookie{Name: "ACT_SSO_COOKIE", Value: "sso-abc"})
		case strings.HasPrefix(path, "/stats/"):
			f.statsCalls++
			f.reply(w, f.statsResponses, pathSegment(path, "gamer"))
		case strings.Contains(path, "/fullMatch/wz/"):
			f.detailCalls++
			f.reply(w, f.detailResponses, pathSegment(path, "wz"))
		case strings.Contains(path, "/matches/wz/"):
			f.matchCalls++
			f.reply(w, f.matchResponses, pathSegment(path, "gamer"))
		default:
			http.NotFound(w, r)
		}
	}))
	return f
}

func (f *fakeUpstream) reply(w http.ResponseWriter, responses map[string]string, key string) {
	body, ok := responses[key]
	if !ok {
		body = datastoreMiss
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *fakeUpstream) totalCalls() int {
	return f.loginPosts + f.statsCalls + f.matchCalls + f.detailCalls
}

// pathSegment returns the path element following the named one.
func pathSegment(path, after string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == after && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

type harness struct {
	upstream *fakeUpstream
	pool     *auth.Pool
	sessions *auth.SessionCache
	penalty  *penalty.Controller
	stats    *StatsService
	matches  *MatchService
	details  *MatchDetailService
}

type harnessOptions struct {
	credentials   []domain.Credential
	cooldown      time.Duration
	excludedModes []string
}

func newHarness(opts harnessOptions) *harness {
	if opts.credentials == nil {
		opts.credentials = []domain.Credential{{Username: "alice", Password: "pw"}}
	}
	if opts.cooldown == 0 {
		opts.cooldown = time.Minute
	}

	upstream := newFakeUpstream()
	cfg := &config.Config{
		Credentials:     opts.credentials,
		RateLimitMax:    1000,
		RateLimitWindow: time.Second,
		PenaltyCooldown: opts.cooldown,
		ExcludedModes:   opts.excludedModes,
		ProfileBaseURL:  upstream.server.URL,
		APIBaseURL:      upstream.server.URL,
	}

	log := zerolog.Nop()
	gate := ratelimit.NewGate(cfg, log)
	client := api.NewClient(cfg, gate, log)
	pool := auth.NewPool(cfg, log)
	sessions := auth.NewSessionCache()
	login := auth.NewLoginFlow(client, sessions, pool, log)
	ctrl := penalty.NewController(cfg, pool, log)

	return &harness{
		upstream: upstream,
		pool:     pool,
		sessions: sessions,
		penalty:  ctrl,
		stats:    NewStatsService(client, login, sessions, ctrl, log),
		matches:  NewMatchService(cfg, client, login, sessions, ctrl, log),
		details:  NewMatchDetailService(client, ctrl, log),
	}
}

func (h *harness) close() {
	h.upstream.server.Close()
}
