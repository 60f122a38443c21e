package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/emersonmendes/warzone-4us/internal/api"
	"github.com/emersonmendes/warzone-4us/internal/constants"
	"github.com/emersonmendes/warzone-4us/internal/domain"
	"github.com/emersonmendes/warzone-4us/internal/penalty"

	"github.com/rs/zerolog"
)

type MatchDetailService struct {
	client  *api.Client
	penalty *penalty.Controller
	logger  zerolog.Logger
}

func NewMatchDetailService(client *api.Client, penalty *penalty.Controller, logger zerolog.Logger) *MatchDetailService {
	return &MatchDetailService{client: client, penalty: penalty, logger: logger}
}

// FetchMatchDetails summarizes a single match from the queried team's point
// of view. The endpoint is unauthenticated but still rate-limited.
func (s *MatchDetailService) FetchMatchDetails(ctx context.Context, matchID, team string) (*domain.MatchSummary, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
	defer cancel()

	if s.penalty.Active() {
		s.logger.Warn().Dur("remaining", s.penalty.Remaining()).Msg("penalty window active, match detail fetch suppressed")
		return nil, domain.ErrRateLimited
	}

	outcome, err := s.client.FetchMatchDetails(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("match detail fetch for %s: %w", matchID, err)
	}

	switch outcome.Kind {
	case api.RateLimited:
		s.penalty.Trigger("")
		return nil, domain.ErrRateLimited
	case api.Success:
	default: // AuthExpired cannot happen on this endpoint; treat like absent data
		return nil, fmt.Errorf("match %s: %w", matchID, domain.ErrNotFound)
	}

	summary := &domain.MatchSummary{MatchID: matchID, Team: team}
	groups := make(map[int]int) // placement -> index into summary.Placements

	for _, p := range outcome.Body.Get("data.allPlayers").Array() {
		line := domain.PlayerLine{
			Username: p.Get("player.username").String(),
			ClanTag:  domain.StripColorCodes(p.Get("player.clantag").String()),
			Team:     p.Get("player.team").String(),
			Kills:    int(p.Get("playerStats.kills").Int()),
			Deaths:   int(p.Get("playerStats.deaths").Int()),
		}

		if line.Team == team {
			summary.OurTeam = append(summary.OurTeam, line)
		}

		// strictly greater, so ties keep the earliest-seen player
		if summary.MostKills == nil || line.Kills > summary.MostKills.Kills {
			kills := line
			summary.MostKills = &kills
		}
		if summary.MostDeaths == nil || line.Deaths > summary.MostDeaths.Deaths {
			deaths := line
			summary.MostDeaths = &deaths
		}

		placement := int(p.Get("playerStats.teamPlacement").Int())
		idx, ok := groups[placement]
		if !ok {
			idx = len(summary.Placements)
			groups[placement] = idx
			summary.Placements = append(summary.Placements, domain.PlacementGroup{Placement: placement})
		}
		summary.Placements[idx].Players = append(summary.Placements[idx].Players, line)
	}

	sort.Slice(summary.Placements, func(i, j int) bool {
		return summary.Placements[i].Placement < summary.Placements[j].Placement
	})

	s.logger.Info().Str("match_id", matchID).Str("team", team).Int("our_team", len(summary.OurTeam)).Msg("match detail fetched")
	return summary, nil
}
