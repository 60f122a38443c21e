package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emersonmendes/warzone-4us/internal/domain"
	"github.com/emersonmendes/warzone-4us/internal/middleware"
	"github.com/emersonmendes/warzone-4us/internal/service"

	"github.com/rs/zerolog"
)

// Server is the JSON boundary consumed by the browser front-end. It renders
// the aggregation core's results; all domain behavior lives below it.
type Server struct {
	stats   *service.StatsService
	matches *service.MatchService
	details *service.MatchDetailService
	logger  zerolog.Logger
}

func New(stats *service.StatsService, matches *service.MatchService, details *service.MatchDetailService, logger zerolog.Logger) *Server {
	return &Server{stats: stats, matches: matches, details: details, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", withMethod(http.MethodPost, s.handleStats))
	mux.HandleFunc("/api/matches", withMethod(http.MethodGet, s.handleMatches))
	mux.HandleFunc("/api/matchdetails", withMethod(http.MethodGet, s.handleMatchDetails))
	mux.HandleFunc("/api/helloworld", withMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Hello World"))
	}))
	return mux
}

// withMethod emulates Go 1.22 method-qualified mux patterns on older
// toolchains: requests with a different method get 405 plus an Allow header,
// matching the newer mux's behavior.
func withMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

type statsRequest struct {
	Players []domain.PlayerQuery `json:"players"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	records, err := s.stats.FetchStats(r.Context(), req.Players)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	player := r.URL.Query().Get("player")
	if platform == "" || player == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("platform and player are required"))
		return
	}

	records, err := s.matches.FetchLastMatches(r.Context(), platform, player)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if records == nil {
		records = []domain.MatchRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleMatchDetails(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	team := r.URL.Query().Get("team")
	if matchID == "" || team == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("matchId and team are required"))
		return
	}

	summary, err := s.details.FetchMatchDetails(r.Context(), matchID, team)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// writeFailure maps core failures onto HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *domain.AuthError
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		s.writeError(w, r, http.StatusTooManyRequests, err)
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrNoCredentials):
		s.writeError(w, r, http.StatusInternalServerError, err)
	case errors.As(err, &authErr):
		s.writeError(w, r, http.StatusBadGateway, err)
	default:
		s.writeError(w, r, http.StatusBadGateway, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error().
		Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
