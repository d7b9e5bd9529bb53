package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"pingpong-tracker/internal/api"
	"pingpong-tracker/internal/auth"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server hosts the JSON API for the club tracker UI.
type Server struct {
	roster     *service.RosterService
	settlement *service.SettlementService
	standings  *service.StandingsService
	gate       *auth.Gate
	coach      *api.CoachClient
	logger     zerolog.Logger
}

func NewServer(
	roster *service.RosterService,
	settlement *service.SettlementService,
	standings *service.StandingsService,
	gate *auth.Gate,
	coach *api.CoachClient,
	logger zerolog.Logger,
) *Server {
	return &Server{
		roster:     roster,
		settlement: settlement,
		standings:  standings,
		gate:       gate,
		coach:      coach,
		logger:     logger,
	}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/athletes", s.handleRegisterAthlete).Methods(http.MethodPost)
	r.HandleFunc("/api/athletes", s.handleListAthletes).Methods(http.MethodGet)
	r.HandleFunc("/api/athletes/{id}", s.handleGetAthlete).Methods(http.MethodGet)

	r.HandleFunc("/api/matches", s.handleListMatches).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/draft/begin", s.handleBeginDraft).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/draft", s.handleSubmitDraft).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/draft", s.handleGetDraft).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/confirm", s.handleConfirmDraft).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/cancel", s.handleCancelDraft).Methods(http.MethodPost)

	r.HandleFunc("/api/overview", s.handleOverview).Methods(http.MethodGet)
	r.HandleFunc("/api/standings", s.handleTeamStats).Methods(http.MethodGet)
	r.HandleFunc("/api/teams", s.handleTeams).Methods(http.MethodGet)

	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/session", s.handleSession).Methods(http.MethodGet)

	r.HandleFunc("/api/analysis", s.handleAnalysis).Methods(http.MethodPost)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr    *domain.ValidationError
		authorizationErr *domain.AuthorizationError
		confirmationErr  *domain.ConfirmationError
	)

	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusUnprocessableEntity, validationErr.Reason
	case errors.As(err, &authorizationErr):
		status, message = http.StatusUnauthorized, authorizationErr.Reason
	case errors.As(err, &confirmationErr):
		status, message = http.StatusForbidden, confirmationErr.Reason
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	default:
		s.logger.Error().Err(err).Msg("request failed")
	}

	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
