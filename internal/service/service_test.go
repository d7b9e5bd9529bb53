package service

import (
	"context"
	"database/sql"
	"testing"

	"pingpong-tracker/internal/auth"
	"pingpong-tracker/internal/database"
	"pingpong-tracker/internal/domain"
	"pingpong-tracker/internal/repository"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "123456"

type fixture struct {
	db         *sql.DB
	athletes   *repository.AthleteRepository
	matches    *repository.MatchRepository
	gate       *auth.Gate
	roster     *RosterService
	settlement *SettlementService
	standings  *StandingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	athletes := repository.NewAthleteRepository(db, zerolog.Nop())
	matches := repository.NewMatchRepository(db, zerolog.Nop())
	verifier := auth.NewSharedSecretVerifier(testSecret)
	gate := auth.NewGate(verifier, athletes, zerolog.Nop())

	return &fixture{
		db:         db,
		athletes:   athletes,
		matches:    matches,
		gate:       gate,
		roster:     NewRosterService(athletes, zerolog.Nop()),
		settlement: NewSettlementService(db, athletes, matches, gate, verifier, zerolog.Nop()),
		standings:  NewStandingsService(athletes, matches, zerolog.Nop()),
	}
}

func (f *fixture) addAthlete(t *testing.T, id, name, team string, points int) {
	t.Helper()
	require.NoError(t, f.athletes.Insert(context.Background(), &domain.Athlete{
		ID:     id,
		Name:   name,
		Team:   team,
		Points: points,
		Gender: domain.GenderMale,
	}))
}

func (f *fixture) loginAs(t *testing.T, team string) {
	t.Helper()
	_, err := f.gate.Login(context.Background(), team, testSecret)
	require.NoError(t, err)
}
