package auth

import (
	"context"
	"slices"
	"sync"
	"time"

	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// Session is an authenticated team identity.
type Session struct {
	Team       string
	LoggedInAt time.Time
}

// Gate holds the single process-wide session slot. A team may only log in
// if it has at least one registered athlete; a new login replaces the
// previous session.
type Gate struct {
	mu       sync.Mutex
	current  *Session
	verifier CredentialVerifier
	athletes *repository.AthleteRepository
	logger   zerolog.Logger
}

func NewGate(verifier CredentialVerifier, athletes *repository.AthleteRepository, logger zerolog.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		athletes: athletes,
		logger:   logger,
	}
}

func (g *Gate) Login(ctx context.Context, teamName, secret string) (Session, error) {
	if teamName == "" {
		return Session{}, domain.Authorizationf("team name is required")
	}

	teams, err := g.athletes.DistinctTeams(ctx)
	if err != nil {
		return Session{}, err
	}
	if !slices.Contains(teams, teamName) {
		g.logger.Warn().Str("team", teamName).Msg("login attempt for unknown team")
		return Session{}, domain.Authorizationf("team %q has no registered athletes", teamName)
	}

	if !g.verifier.Verify(teamName, secret) {
		g.logger.Warn().Str("team", teamName).Msg("login attempt with wrong secret")
		return Session{}, domain.Authorizationf("wrong password for team %q", teamName)
	}

	session := Session{Team: teamName, LoggedInAt: time.Now()}

	g.mu.Lock()
	g.current = &session
	g.mu.Unlock()

	g.logger.Info().Str("team", teamName).Msg("team logged in")
	return session, nil
}

func (g *Gate) Logout() {
	g.mu.Lock()
	if g.current != nil {
		g.logger.Info().Str("team", g.current.Team).Msg("team logged out")
	}
	g.current = nil
	g.mu.Unlock()
}

// Current returns the active session, if any.
func (g *Gate) Current() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return Session{}, false
	}
	return *g.current, true
}
