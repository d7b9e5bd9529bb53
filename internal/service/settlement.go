package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"pingpong-tracker/internal/auth"
	"pingpong-tracker/internal/constants"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type DraftState string

const (
	StateIdle                 DraftState = "idle"
	StateDrafting             DraftState = "drafting"
	StateAwaitingConfirmation DraftState = "awaiting_confirmation"
)

// Draft is the in-flight match proposal. HomeTeam is the authenticated team
// entering the result; AwayTeam is captured at submission and must
// counter-confirm before anything is committed.
type Draft struct {
	State      DraftState
	HomeTeam   string
	AwayTeam   string
	Type       domain.MatchType
	Team1IDs   []string
	Team2IDs   []string
	Score1     int
	Score2     int
	WinnerSide int
}

// SubmitInput is the caller-assembled draft content.
type SubmitInput struct {
	Type     domain.MatchType
	Team1IDs []string
	Team2IDs []string
	Score1   int
	Score2   int
}

// SettlementService validates, confirms and commits match results.
//
// States move Idle -> Drafting -> AwaitingConfirmation -> (commit) Idle.
// The single mutex guards the whole validate/confirm/commit window so two
// interleaved drafts cannot both read-modify-write the same athletes'
// points. Commit is one SQL transaction: ledger append plus point updates
// land together or not at all.
type SettlementService struct {
	mu    sync.Mutex
	draft Draft

	db       *sql.DB
	athletes *repository.AthleteRepository
	matches  *repository.MatchRepository
	gate     *auth.Gate
	verifier auth.CredentialVerifier
	logger   zerolog.Logger
}

func NewSettlementService(
	sqlDB *sql.DB,
	athletes *repository.AthleteRepository,
	matches *repository.MatchRepository,
	gate *auth.Gate,
	verifier auth.CredentialVerifier,
	logger zerolog.Logger,
) *SettlementService {
	return &SettlementService{
		draft:    Draft{State: StateIdle},
		db:       sqlDB,
		athletes: athletes,
		matches:  matches,
		gate:     gate,
		verifier: verifier,
		logger:   logger,
	}
}

// Begin opens a draft for the authenticated team.
func (s *SettlementService) Begin(ctx context.Context) (Draft, error) {
	session, ok := s.gate.Current()
	if !ok {
		return Draft{}, domain.Authorizationf("log in with a team account to enter results")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = Draft{State: StateDrafting, HomeTeam: session.Team}
	s.logger.Info().Str("home_team", session.Team).Msg("match draft opened")
	return s.draft, nil
}

// Submit validates the draft content and, on success, moves it to
// AwaitingConfirmation with the away team captured. On a validation or
// authorization failure the draft stays open for correction.
func (s *SettlementService) Submit(ctx context.Context, in SubmitInput) (Draft, error) {
	session, ok := s.gate.Current()
	if !ok {
		return Draft{}, domain.Authorizationf("log in with a team account to enter results")
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.State == StateIdle {
		s.draft = Draft{State: StateDrafting, HomeTeam: session.Team}
	}

	awayTeam, err := s.validate(ctx, session, in)
	if err != nil {
		s.logger.Debug().Err(err).Str("home_team", session.Team).Msg("draft submission rejected")
		return s.draft, err
	}

	s.draft = Draft{
		State:      StateAwaitingConfirmation,
		HomeTeam:   session.Team,
		AwayTeam:   awayTeam,
		Type:       in.Type,
		Team1IDs:   in.Team1IDs,
		Team2IDs:   in.Team2IDs,
		Score1:     in.Score1,
		Score2:     in.Score2,
		WinnerSide: winnerSide(in.Score1, in.Score2),
	}

	s.logger.Info().
		Str("home_team", session.Team).
		Str("away_team", awayTeam).
		Int("score1", in.Score1).
		Int("score2", in.Score2).
		Msg("draft awaiting away team confirmation")
	return s.draft, nil
}

// Confirm settles the draft once the away team has signed off on the score.
// A wrong secret leaves the draft in AwaitingConfirmation and may be
// retried.
func (s *SettlementService) Confirm(ctx context.Context, secret string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.State != StateAwaitingConfirmation {
		return nil, domain.Validationf("no draft is awaiting confirmation")
	}

	if !s.verifier.Verify(s.draft.AwayTeam, secret) {
		s.logger.Warn().Str("away_team", s.draft.AwayTeam).Msg("counter-confirmation failed")
		return nil, domain.Confirmationf("wrong confirmation password for team %q", s.draft.AwayTeam)
	}

	match, err := s.commit(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("match_id", match.ID).
		Str("home_team", s.draft.HomeTeam).
		Str("away_team", s.draft.AwayTeam).
		Int("winner_side", match.WinnerSide).
		Msg("match settled")
	s.draft = Draft{State: StateIdle}
	return match, nil
}

// Cancel abandons the draft from any state with no side effects.
func (s *SettlementService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.State != StateIdle {
		s.logger.Info().Str("home_team", s.draft.HomeTeam).Msg("match draft abandoned")
	}
	s.draft = Draft{State: StateIdle}
}

// Draft returns a snapshot of the current draft.
func (s *SettlementService) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// validate runs the structural checks and returns the away team name.
func (s *SettlementService) validate(ctx context.Context, session auth.Session, in SubmitInput) (string, error) {
	if !in.Type.Valid() {
		return "", domain.Validationf("unknown match type %q", in.Type)
	}
	if in.Score1 < 0 || in.Score2 < 0 {
		return "", domain.Validationf("scores must be non-negative")
	}
	if in.Score1 == in.Score2 {
		return "", domain.Validationf("table tennis has no draws, the score cannot be %d-%d", in.Score1, in.Score2)
	}

	want := in.Type.PlayersPerSide()
	if len(in.Team1IDs) != want {
		return "", domain.Validationf("%s requires %d athlete(s) per side, team 1 has %d", in.Type, want, len(in.Team1IDs))
	}
	if len(in.Team2IDs) != want {
		return "", domain.Validationf("%s requires %d athlete(s) per side, team 2 has %d", in.Type, want, len(in.Team2IDs))
	}

	seen := make(map[string]bool, len(in.Team1IDs))
	for _, id := range in.Team1IDs {
		if seen[id] {
			return "", domain.Validationf("athlete %s selected twice", id)
		}
		seen[id] = true
	}
	for _, id := range in.Team2IDs {
		if seen[id] {
			return "", domain.Validationf("athlete %s cannot play on both sides", id)
		}
		seen[id] = true
	}

	team1, err := s.athletes.GetByIDs(ctx, in.Team1IDs)
	if err != nil {
		return "", asValidation(err, "team 1")
	}
	team2, err := s.athletes.GetByIDs(ctx, in.Team2IDs)
	if err != nil {
		return "", asValidation(err, "team 2")
	}

	// The authenticated team is always the home side (team 1).
	for _, a := range team1 {
		if a.Team != session.Team {
			return "", domain.Authorizationf("you are logged in as %q and may only enter results with %q as the home side", session.Team, session.Team)
		}
	}

	// The away side must be one single team, and not the home team.
	awayTeam := team2[0].Team
	for _, a := range team2[1:] {
		if a.Team != awayTeam {
			return "", domain.Validationf("the away side must belong to a single team, got %q and %q", awayTeam, a.Team)
		}
	}
	if awayTeam == session.Team {
		return "", domain.Validationf("a team cannot play a match against itself")
	}

	return awayTeam, nil
}

func (s *SettlementService) commit(ctx context.Context) (*domain.Match, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match id: %w", err)
	}

	match := domain.Match{
		ID:         id,
		Date:       time.Now(),
		Type:       s.draft.Type,
		Team1IDs:   s.draft.Team1IDs,
		Team2IDs:   s.draft.Team2IDs,
		Score1:     s.draft.Score1,
		Score2:     s.draft.Score2,
		WinnerSide: s.draft.WinnerSide,
	}

	winnerIDs, loserIDs := match.Team1IDs, match.Team2IDs
	if match.WinnerSide == 2 {
		winnerIDs, loserIDs = match.Team2IDs, match.Team1IDs
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matches.Insert(ctx, tx, &match); err != nil {
		return nil, err
	}
	if err := s.athletes.ApplyOutcome(ctx, tx, winnerIDs, loserIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return &match, nil
}

func winnerSide(score1, score2 int) int {
	if score1 > score2 {
		return 1
	}
	return 2
}

func asValidation(err error, side string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Validationf("%s references an unregistered athlete", side)
	}
	return err
}
