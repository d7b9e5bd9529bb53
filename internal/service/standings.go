package service

import (
	"context"
	"errors"

	"pingpong-tracker/internal/constants"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StandingsService exposes the derived rankings. Everything here is
// recomputed from the roster and ledger on every read; nothing is cached,
// so the views cannot drift from the source of truth.
type StandingsService struct {
	athletes *repository.AthleteRepository
	matches  *repository.MatchRepository
	logger   zerolog.Logger
}

func NewStandingsService(athletes *repository.AthleteRepository, matches *repository.MatchRepository, logger zerolog.Logger) *StandingsService {
	return &StandingsService{athletes: athletes, matches: matches, logger: logger}
}

// TopAthlete returns the highest-scoring athlete, nil on an empty roster.
// Ties go to the earliest-registered athlete.
func (s *StandingsService) TopAthlete(ctx context.Context) (*domain.Athlete, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	top, err := s.athletes.TopAthlete(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return top, err
}

func (s *StandingsService) TeamStats(ctx context.Context) ([]domain.TeamStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.athletes.TeamStats(ctx)
}

func (s *StandingsService) DistinctTeams(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.athletes.DistinctTeams(ctx)
}

// History returns the full match ledger, most-recent-first.
func (s *StandingsService) History(ctx context.Context) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.matches.List(ctx)
}

// Overview is the dashboard aggregate.
type Overview struct {
	TopAthlete    *domain.Athlete
	TeamStats     []domain.TeamStats
	AthleteCount  int
	RecentMatches []domain.Match
}

func (s *StandingsService) Overview(ctx context.Context) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var overview Overview
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		top, err := s.TopAthlete(gCtx)
		overview.TopAthlete = top
		return err
	})
	g.Go(func() error {
		stats, err := s.athletes.TeamStats(gCtx)
		overview.TeamStats = stats
		return err
	})
	g.Go(func() error {
		count, err := s.athletes.Count(gCtx)
		overview.AthleteCount = count
		return err
	})
	g.Go(func() error {
		recent, err := s.matches.Recent(gCtx, constants.RecentMatchLimit)
		overview.RecentMatches = recent
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build overview")
		return nil, err
	}
	return &overview, nil
}
