package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emersonmendes/warzone-4us/internal/api"
	"github.com/emersonmendes/warzone-4us/internal/auth"
	"github.com/emersonmendes/warzone-4us/internal/config"
	"github.com/emersonmendes/warzone-4us/internal/constants"
	"github.com/emersonmendes/warzone-4us/internal/domain"
	"github.com/emersonmendes/warzone-4us/internal/penalty"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

type MatchService struct {
	client   *api.Client
	login    *auth.LoginFlow
	sessions *auth.SessionCache
	penalty  *penalty.Controller
	excluded map[string]struct{}
	logger   zerolog.Logger
}

func NewMatchService(cfg *config.Config, client *api.Client, login *auth.LoginFlow, sessions *auth.SessionCache, penalty *penalty.Controller, logger zerolog.Logger) *MatchService {
	excluded := make(map[string]struct{}, len(cfg.ExcludedModes))
	for _, mode := range cfg.ExcludedModes {
		excluded[mode] = struct{}{}
	}
	return &MatchService{client: client, login: login, sessions: sessions, penalty: penalty, excluded: excluded, logger: logger}
}

// FetchLastMatches retrieves and normalizes a player's recent match history.
// Entries in excluded modes are dropped before normalization.
func (s *MatchService) FetchLastMatches(ctx context.Context, platform, player string) ([]domain.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
	defer cancel()

	if s.penalty.Active() {
		s.logger.Warn().Dur("remaining", s.penalty.Remaining()).Msg("penalty window active, match fetch suppressed")
		return nil, domain.ErrRateLimited
	}

	sess, err := s.login.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	outcome, err := s.client.FetchMatches(ctx, platform, player, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("match history fetch for %s: %w", player, err)
	}

	switch outcome.Kind {
	case api.AuthExpired:
		s.sessions.Invalidate(sess.Username)
		return nil, &domain.AuthError{Username: sess.Username, Reason: "session expired"}
	case api.RateLimited:
		s.penalty.Trigger(sess.Username)
		return nil, domain.ErrRateLimited
	case api.NotFound, api.Malformed:
		return nil, fmt.Errorf("matches for %s on %s: %w", player, platform, domain.ErrNotFound)
	}

	var records []domain.MatchRecord
	for _, m := range outcome.Body.Get("data.matches").Array() {
		mode := m.Get("mode").String()
		if _, drop := s.excluded[mode]; drop {
			continue
		}
		records = append(records, normalizeMatch(m))
	}

	s.logger.Info().Str("player", player).Int("matches", len(records)).Msg("match history fetched")
	return records, nil
}

func normalizeMatch(m gjson.Result) domain.MatchRecord {
	team := m.Get("player.team").String()

	placement := "?"
	var champions []string
	for _, rt := range m.Get("rankedTeams").Array() {
		if rt.Get("name").String() == team {
			placement = rt.Get("placement").String()
		}
		if rt.Get("placement").Int() == 1 {
			champions = roster(rt)
		}
	}

	return domain.MatchRecord{
		MatchID:       m.Get("matchID").String(),
		Mode:          m.Get("mode").String(),
		Team:          team,
		TeamPlacement: placement,
		Kills:         int(m.Get("playerStats.kills").Int()),
		Deaths:        int(m.Get("playerStats.deaths").Int()),
		PlayerCount:   int(m.Get("playerCount").Int()),
		StartedAt:     time.Unix(m.Get("utcStartSeconds").Int(), 0),
		EndedAt:       time.Unix(m.Get("utcEndSeconds").Int(), 0),
		Champions:     champions,
	}
}

func roster(team gjson.Result) []string {
	var names []string
	for _, p := range team.Get("players").Array() {
		line := domain.PlayerLine{
			Username: p.Get("username").String(),
			ClanTag:  domain.StripColorCodes(p.Get("clantag").String()),
		}
		names = append(names, line.DisplayName())
	}
	return names
}
