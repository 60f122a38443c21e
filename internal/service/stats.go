package service

import (
	"context"
	"fmt"

	"github.com/emersonmendes/warzone-4us/internal/api"
	"github.com/emersonmendes/warzone-4us/internal/auth"
	"github.com/emersonmendes/warzone-4us/internal/constants"
	"github.com/emersonmendes/warzone-4us/internal/domain"
	"github.com/emersonmendes/warzone-4us/internal/penalty"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// batchState drives the per-batch state machine. Transitions to
// stateAborted are fail-fast: remaining queries are not processed.
type batchState int

const (
	stateCheckPenalty batchState = iota
	stateAuthenticating
	stateFetching
	stateAborted
	stateDone
)

type StatsService struct {
	client   *api.Client
	login    *auth.LoginFlow
	sessions *auth.SessionCache
	penalty  *penalty.Controller
	logger   zerolog.Logger
}

func NewStatsService(client *api.Client, login *auth.LoginFlow, sessions *auth.SessionCache, penalty *penalty.Controller, logger zerolog.Logger) *StatsService {
	return &StatsService{client: client, login: login, sessions: sessions, penalty: penalty, logger: logger}
}

// FetchStats resolves a batch of player queries sequentially, in input
// order. The result is structured even under partial failure; the returned
// error is reserved for missing credentials and raw transport failures.
func (s *StatsService) FetchStats(ctx context.Context, batch []domain.PlayerQuery) ([]domain.StatRecord, error) {
	if len(batch) == 0 {
		return []domain.StatRecord{}, nil
	}

	// An issued batch runs to completion on its own deadline, even if the
	// caller disconnects mid-batch.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
	defer cancel()

	batchID, _ := gonanoid.New(8)
	log := s.logger.With().Str("batch_id", batchID).Int("size", len(batch)).Logger()

	records := make([]domain.StatRecord, 0, len(batch))
	var sess domain.Session
	state := stateCheckPenalty
	i := 0

	for {
		switch state {
		case stateCheckPenalty:
			if s.penalty.Active() {
				log.Warn().Dur("remaining", s.penalty.Remaining()).Msg("penalty window active, batch suppressed")
				return []domain.StatRecord{domain.NewStatError("", domain.RateLimitMessage)}, nil
			}
			state = stateAuthenticating

		case stateAuthenticating:
			var err error
			sess, err = s.login.Authenticate(ctx)
			if err != nil {
				log.Error().Err(err).Msg("authentication failed")
				return nil, err
			}
			state = stateFetching

		case stateFetching:
			q := batch[i]
			outcome, err := s.client.FetchStats(ctx, q.Platform, q.Player, sess.Token)
			if err != nil {
				return nil, fmt.Errorf("stats fetch for %s: %w", q.Player, err)
			}

			switch outcome.Kind {
			case api.Success:
				records = append(records, normalizeStats(q, outcome.Body))
			case api.AuthExpired:
				s.sessions.Invalidate(sess.Username)
				log.Warn().Str("username", sess.Username).Int("processed", i).Msg("session expired, aborting batch")
				state = stateAborted
			case api.RateLimited:
				records = append(records, domain.NewStatError(q.Player, domain.RateLimitMessage))
				s.penalty.Trigger(sess.Username)
				state = stateAborted
			default: // NotFound, Malformed
				records = append(records, domain.NewStatError(q.Player,
					fmt.Sprintf("player %s not found for platform %s", q.Player, q.Platform)))
			}

			if state == stateFetching {
				if i++; i == len(batch) {
					state = stateDone
				}
			}

		case stateAborted:
			return records, nil

		case stateDone:
			log.Info().Int("records", len(records)).Msg("batch completed")
			return records, nil
		}
	}
}

func normalizeStats(q domain.PlayerQuery, body gjson.Result) domain.StatRecord {
	data := body.Get("data")
	props := data.Get("lifetime.mode.br_all.properties")

	username := data.Get("username").String()
	if username == "" {
		username = q.Player
	}

	kills := int(props.Get("kills").Int())
	deaths := int(props.Get("deaths").Int())

	return domain.StatRecord{
		Username:    username,
		Platform:    q.Platform,
		Level:       int(data.Get("level").Int()),
		Wins:        int(props.Get("wins").Int()),
		Kills:       kills,
		Deaths:      deaths,
		Balance:     kills - deaths,
		GamesPlayed: int(props.Get("gamesPlayed").Int()),
		KDRatio:     props.Get("kdRatio").Float(),
	}
}
