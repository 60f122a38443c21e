package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RateLimitMessage is the standardized message returned whenever the upstream
// rate limit is hit or the penalty window is active.
const RateLimitMessage = "too many requests, wait a moment and try again"

var (
	ErrNoCredentials = errors.New("no credentials configured")
	ErrRateLimited   = errors.New(RateLimitMessage)
	ErrNotFound      = errors.New("not found")
)

// AuthError marks a failed login handshake. The offending credential is
// blocklisted by the login flow; callers may retry with a different one.
type AuthError struct {
	Username string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed for %s: %s", e.Username, e.Reason)
}

// Credential is one configured upstream account. Immutable for the process
// lifetime.
type Credential struct {
	Username string
	Password string
}

// Session is a cached upstream session cookie. Valid only for its owning
// credential; removed from the cache when upstream reports the owner
// unauthenticated.
type Session struct {
	Username  string
	Token     string
	CreatedAt time.Time
}

// PlayerQuery identifies one player on one platform. A batch is an ordered
// slice of queries.
type PlayerQuery struct {
	Platform string `json:"platform"`
	Player   string `json:"player"`
}

// StatRecord carries either normalized lifetime stats or a per-player error
// message, never both.
type StatRecord struct {
	Username    string  `json:"username"`
	Platform    string  `json:"platform,omitempty"`
	Level       int     `json:"level,omitempty"`
	Wins        int     `json:"wins"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Balance     int     `json:"balance"`
	GamesPlayed int     `json:"gamesPlayed"`
	KDRatio     float64 `json:"kdRatio"`
	Error       string  `json:"error,omitempty"`
}

// NewStatError builds the error variant of a StatRecord.
func NewStatError(username, message string) StatRecord {
	return StatRecord{Username: username, Error: message}
}

type MatchRecord struct {
	MatchID       string    `json:"matchId"`
	Mode          string    `json:"mode"`
	Team          string    `json:"team"`
	TeamPlacement string    `json:"teamPlacement"`
	Kills         int       `json:"kills"`
	Deaths        int       `json:"deaths"`
	PlayerCount   int       `json:"playerCount"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
	Champions     []string  `json:"champions"`
}

// PlayerLine is one participant row inside a match summary.
type PlayerLine struct {
	Username string `json:"username"`
	ClanTag  string `json:"clanTag,omitempty"`
	Team     string `json:"team"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
}

// DisplayName composes "[tag] username", omitting the brackets when the
// player has no clan tag.
func (p PlayerLine) DisplayName() string {
	if p.ClanTag == "" {
		return p.Username
	}
	return fmt.Sprintf("[%s] %s", p.ClanTag, p.Username)
}

// PlacementGroup holds the players that finished at one placement rank, in
// the order they appear in the upstream payload.
type PlacementGroup struct {
	Placement int          `json:"placement"`
	Players   []PlayerLine `json:"players"`
}

type MatchSummary struct {
	MatchID    string           `json:"matchId"`
	Team       string           `json:"team"`
	OurTeam    []PlayerLine     `json:"ourTeam"`
	MostKills  *PlayerLine      `json:"mostKills,omitempty"`
	MostDeaths *PlayerLine      `json:"mostDeaths,omitempty"`
	Placements []PlacementGroup `json:"placements"`
}

// Clan tags embed in-game color markers such as "^3".
var colorMarker = regexp.MustCompile(`\^.`)

// StripColorCodes removes in-game color markers from a clan tag.
func StripColorCodes(tag string) string {
	return strings.TrimSpace(colorMarker.ReplaceAllString(tag, ""))
}
