package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/config"
	"github.com/emersonmendes/warzone-4us/internal/constants"
	"github.com/emersonmendes/warzone-4us/internal/domain"
	"github.com/emersonmendes/warzone-4us/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	loginPagePath   = "/cod/login"
	loginSubmitPath = "/do_login?new_SiteId=cod"

	statsPath        = "/stats/cod/v1/title/mw/platform/%s/gamer/%s/profile/type/mp"
	matchesPath      = "/crm/cod/v2/title/mw/platform/%s/gamer/%s/matches/wz/start/0/end/0/details"
	matchDetailsPath = "/crm/cod/v2/title/mw/platform/battle/fullMatch/wz/%s/en"
)

// Client talks to the upstream profile and stats services. Every outbound
// call passes through the global admission gate first.
type Client struct {
	http           *fasthttp.Client
	gate           *ratelimit.Gate
	profileBaseURL string
	apiBaseURL     string
	logger         zerolog.Logger
}

func NewClient(cfg *config.Config, gate *ratelimit.Gate, logger zerolog.Logger) *Client {
	return &Client{
		http: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		gate:           gate,
		profileBaseURL: strings.TrimSuffix(cfg.ProfileBaseURL, "/"),
		apiBaseURL:     strings.TrimSuffix(cfg.APIBaseURL, "/"),
		logger:         logger,
	}
}

// FetchCSRFToken loads the upstream login page and extracts the anti-forgery
// token from its cookies.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	if err := c.gate.Admit(ctx); err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.profileBaseURL + loginPagePath)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("login page request: %w", err)
	}

	token, ok := responseCookie(resp, "XSRF-TOKEN")
	if !ok {
		return "", &domain.AuthError{Reason: "missing csrf token"}
	}
	return token, nil
}

// SubmitLogin posts the credential form and returns the session cookie header
// value. The composite cookie header is required verbatim by upstream.
func (c *Client) SubmitLogin(ctx context.Context, cred domain.Credential, csrfToken string) (string, error) {
	if err := c.gate.Admit(ctx); err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.profileBaseURL + loginSubmitPath)
	req.Header.SetMethod(fasthttp.MethodPost)
	setRawCookie(req, fmt.Sprintf("new_SiteId=cod; check=true; XSRF-TOKEN=%s;", csrfToken))

	form := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(form)
	form.Set("username", cred.Username)
	form.Set("password", cred.Password)
	form.Set("remember_me", "true")
	form.Set("_csrf", csrfToken)

	body := form.QueryString()
	req.SetBody(body)
	req.Header.Set(fasthttp.HeaderContentType, "application/x-www-form-urlencoded")
	req.Header.Set(fasthttp.HeaderContentLength, strconv.Itoa(len(body)))

	if err := c.do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("login request for %s: %w", cred.Username, err)
	}

	value, ok := responseCookie(resp, "ACT_SSO_COOKIE")
	if !ok {
		return "", &domain.AuthError{Username: cred.Username, Reason: "login rejected"}
	}
	return fmt.Sprintf("ACT_SSO_COOKIE=%s; ", value), nil
}

// FetchStats retrieves a player's lifetime profile. The returned outcome is
// already classified.
func (c *Client) FetchStats(ctx context.Context, platform, player, session string) (Outcome, error) {
	url := c.apiBaseURL + fmt.Sprintf(statsPath, platform, escapeTag(player))
	return c.getJSON(ctx, url, session, "data.lifetime.mode.br_all")
}

// FetchMatches retrieves a player's recent match history.
func (c *Client) FetchMatches(ctx context.Context, platform, player, session string) (Outcome, error) {
	url := c.apiBaseURL + fmt.Sprintf(matchesPath, platform, escapeTag(player))
	return c.getJSON(ctx, url, session, "data.matches")
}

// FetchMatchDetails retrieves the full roster of one match. This endpoint
// does not require a session.
func (c *Client) FetchMatchDetails(ctx context.Context, matchID string) (Outcome, error) {
	url := c.apiBaseURL + fmt.Sprintf(matchDetailsPath, matchID)
	return c.getJSON(ctx, url, "", "data.allPlayers")
}

func (c *Client) getJSON(ctx context.Context, url, session, dataPath string) (Outcome, error) {
	if err := c.gate.Admit(ctx); err != nil {
		return Outcome{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if session != "" {
		setRawCookie(req, session)
	}

	if err := c.do(ctx, req, resp); err != nil {
		return Outcome{}, fmt.Errorf("upstream request: %w", err)
	}

	body := append([]byte(nil), resp.Body()...)
	outcome := Classify(resp.StatusCode(), body, dataPath)
	c.logger.Debug().
		Int("status", resp.StatusCode()).
		Str("kind", outcome.Kind.String()).
		Str("url", url).
		Msg("upstream response classified")
	return outcome, nil
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	return c.http.DoDeadline(req, resp, deadline)
}

// setRawCookie attaches the Cookie header byte-for-byte. Upstream matches the
// cookie line verbatim, trailing separator included, while fasthttp's cookie
// handling parses and re-serializes the pairs. With special headers bypassed
// the Host header must be restored by hand; callers set Content-Type and
// Content-Length themselves when the request carries a body.
func setRawCookie(req *fasthttp.Request, value string) {
	req.Header.DisableSpecialHeader()
	req.Header.Set(fasthttp.HeaderHost, string(req.URI().Host()))
	req.Header.Set(fasthttp.HeaderCookie, value)
}

func responseCookie(resp *fasthttp.Response, key string) (string, bool) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(key)
	if !resp.Header.Cookie(cookie) {
		return "", false
	}
	value := string(cookie.Value())
	return value, value != ""
}

// Upstream rejects "#" in gamer tags and expects it percent-encoded.
func escapeTag(player string) string {
	return strings.ReplaceAll(player, "#", "%23")
}
