package service

import (
	"context"
	"strings"

	"pingpong-tracker/internal/constants"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RosterService struct {
	repo   *repository.AthleteRepository
	logger zerolog.Logger
}

func NewRosterService(repo *repository.AthleteRepository, logger zerolog.Logger) *RosterService {
	return &RosterService{repo: repo, logger: logger}
}

type RegisterInput struct {
	Name          string
	Team          string
	InitialPoints int
	Gender        domain.Gender
}

// Register creates an athlete with zero match history. Registration is open,
// no session required.
func (s *RosterService) Register(ctx context.Context, in RegisterInput) (*domain.Athlete, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	in.Name = strings.TrimSpace(in.Name)
	in.Team = strings.TrimSpace(in.Team)

	if in.Name == "" {
		return nil, domain.Validationf("athlete name is required")
	}
	if in.Team == "" {
		return nil, domain.Validationf("team name is required")
	}
	if in.InitialPoints < 0 {
		return nil, domain.Validationf("initial points must be non-negative")
	}
	if in.Gender != domain.GenderMale && in.Gender != domain.GenderFemale {
		return nil, domain.Validationf("unknown gender %q", in.Gender)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	athlete := &domain.Athlete{
		ID:     id,
		Name:   in.Name,
		Team:   in.Team,
		Points: in.InitialPoints,
		Gender: in.Gender,
	}

	if err := s.repo.Insert(ctx, athlete); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("athlete_id", athlete.ID).
		Str("name", athlete.Name).
		Str("team", athlete.Team).
		Int("points", athlete.Points).
		Msg("athlete registered")
	return athlete, nil
}

// List returns the roster in insertion order, filtered by a name or team
// substring when query is non-empty.
func (s *RosterService) List(ctx context.Context, query string) ([]domain.Athlete, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if query = strings.TrimSpace(query); query != "" {
		return s.repo.Search(ctx, query)
	}
	return s.repo.List(ctx)
}

func (s *RosterService) Get(ctx context.Context, id string) (*domain.Athlete, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.GetByID(ctx, id)
}
