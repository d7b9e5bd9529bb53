package server

import (
	"net/http"
	"time"

	"pingpong-tracker/internal/api"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/rank"
	"pingpong-tracker/internal/service"

	"github.com/gorilla/mux"
)

type athleteResponse struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Team          string        `json:"team"`
	Points        int           `json:"points"`
	Rank          domain.Rank   `json:"rank"`
	RankRange     string        `json:"rank_range"`
	Gender        domain.Gender `json:"gender"`
	MatchesPlayed int           `json:"matches_played"`
	Wins          int           `json:"wins"`
}

func toAthleteResponse(a *domain.Athlete) athleteResponse {
	band := rank.FromPoints(a.Points)
	return athleteResponse{
		ID:            a.ID,
		Name:          a.Name,
		Team:          a.Team,
		Points:        a.Points,
		Rank:          band,
		RankRange:     rank.Range(band),
		Gender:        a.Gender,
		MatchesPlayed: a.MatchesPlayed,
		Wins:          a.Wins,
	}
}

func toAthleteResponses(athletes []domain.Athlete) []athleteResponse {
	out := make([]athleteResponse, len(athletes))
	for i := range athletes {
		out[i] = toAthleteResponse(&athletes[i])
	}
	return out
}

type matchResponse struct {
	ID         string           `json:"id"`
	Date       string           `json:"date"`
	Type       domain.MatchType `json:"type"`
	Team1IDs   []string         `json:"team1_ids"`
	Team2IDs   []string         `json:"team2_ids"`
	Score1     int              `json:"score1"`
	Score2     int              `json:"score2"`
	WinnerSide int              `json:"winner_side"`
}

func toMatchResponse(m *domain.Match) matchResponse {
	return matchResponse{
		ID:         m.ID,
		Date:       m.Date.Format(time.DateOnly),
		Type:       m.Type,
		Team1IDs:   m.Team1IDs,
		Team2IDs:   m.Team2IDs,
		Score1:     m.Score1,
		Score2:     m.Score2,
		WinnerSide: m.WinnerSide,
	}
}

func toMatchResponses(matches []domain.Match) []matchResponse {
	out := make([]matchResponse, len(matches))
	for i := range matches {
		out[i] = toMatchResponse(&matches[i])
	}
	return out
}

type draftResponse struct {
	State      service.DraftState `json:"state"`
	HomeTeam   string             `json:"home_team,omitempty"`
	AwayTeam   string             `json:"away_team,omitempty"`
	Type       domain.MatchType   `json:"type,omitempty"`
	Team1IDs   []string           `json:"team1_ids,omitempty"`
	Team2IDs   []string           `json:"team2_ids,omitempty"`
	Score1     int                `json:"score1"`
	Score2     int                `json:"score2"`
	WinnerSide int                `json:"winner_side,omitempty"`
}

func toDraftResponse(d service.Draft) draftResponse {
	return draftResponse{
		State:      d.State,
		HomeTeam:   d.HomeTeam,
		AwayTeam:   d.AwayTeam,
		Type:       d.Type,
		Team1IDs:   d.Team1IDs,
		Team2IDs:   d.Team2IDs,
		Score1:     d.Score1,
		Score2:     d.Score2,
		WinnerSide: d.WinnerSide,
	}
}

func (s *Server) handleRegisterAthlete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string        `json:"name"`
		Team          string        `json:"team"`
		InitialPoints int           `json:"initial_points"`
		Gender        domain.Gender `json:"gender"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	athlete, err := s.roster.Register(r.Context(), service.RegisterInput{
		Name:          req.Name,
		Team:          req.Team,
		InitialPoints: req.InitialPoints,
		Gender:        req.Gender,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toAthleteResponse(athlete))
}

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.roster.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"athletes": toAthleteResponses(athletes)})
}

func (s *Server) handleGetAthlete(w http.ResponseWriter, r *http.Request) {
	athlete, err := s.roster.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAthleteResponse(athlete))
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matchesList(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": toMatchResponses(matches)})
}

func (s *Server) matchesList(r *http.Request) ([]domain.Match, error) {
	return s.standings.History(r.Context())
}

func (s *Server) handleBeginDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.settlement.Begin(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

func (s *Server) handleSubmitDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     domain.MatchType `json:"type"`
		Team1IDs []string         `json:"team1_ids"`
		Team2IDs []string         `json:"team2_ids"`
		Score1   int              `json:"score1"`
		Score2   int              `json:"score2"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	draft, err := s.settlement.Submit(r.Context(), service.SubmitInput{
		Type:     req.Type,
		Team1IDs: req.Team1IDs,
		Team2IDs: req.Team2IDs,
		Score1:   req.Score1,
		Score2:   req.Score2,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toDraftResponse(s.settlement.Draft()))
}

func (s *Server) handleConfirmDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	match, err := s.settlement.Confirm(r.Context(), req.Secret)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toMatchResponse(match))
}

func (s *Server) handleCancelDraft(w http.ResponseWriter, r *http.Request) {
	s.settlement.Cancel()
	s.writeJSON(w, http.StatusOK, toDraftResponse(s.settlement.Draft()))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.standings.Overview(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := map[string]any{
		"team_stats":     overview.TeamStats,
		"athlete_count":  overview.AthleteCount,
		"recent_matches": toMatchResponses(overview.RecentMatches),
	}
	if overview.TopAthlete != nil {
		resp["top_athlete"] = toAthleteResponse(overview.TopAthlete)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.standings.TeamStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"standings": stats})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.standings.DistinctTeams(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team   string `json:"team"`
		Secret string `json:"secret"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	session, err := s.gate.Login(r.Context(), req.Team, req.Secret)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"team": session.Team})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if session, ok := s.gate.Current(); ok {
		s.writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "team": session.Team})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team1IDs []string `json:"team1_ids"`
		Team2IDs []string `json:"team2_ids"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Team1IDs) == 0 || len(req.Team2IDs) == 0 {
		s.writeError(w, domain.Validationf("both sides need at least one athlete"))
		return
	}

	team1, err := s.matchupSide(r, req.Team1IDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	team2, err := s.matchupSide(r, req.Team2IDs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	history, err := s.matchesList(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	commentary := s.coach.AnalyzeMatchup(r.Context(), team1, team2, history)
	s.writeJSON(w, http.StatusOK, map[string]string{"commentary": commentary})
}

func (s *Server) matchupSide(r *http.Request, ids []string) ([]api.MatchupPlayer, error) {
	side := make([]api.MatchupPlayer, 0, len(ids))
	for _, id := range ids {
		athlete, err := s.roster.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		side = append(side, api.MatchupPlayer{
			Name:   athlete.Name,
			Rank:   rank.FromPoints(athlete.Points),
			Points: athlete.Points,
		})
	}
	return side, nil
}
