package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pingpong-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// Point deltas applied at settlement. Loser points floor at zero.
const (
	winPointsDelta  = 15
	lossPointsDelta = 10
)

type AthleteRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAthleteRepository(sqlDB *sql.DB, logger zerolog.Logger) *AthleteRepository {
	return &AthleteRepository{
		db:     sqlDB,
		logger: logger,
	}
}

const athleteColumns = "id, name, team, points, gender, matches_played, wins, created_at, updated_at"

func scanAthlete(row interface{ Scan(...any) error }) (*domain.Athlete, error) {
	var a domain.Athlete
	err := row.Scan(&a.ID, &a.Name, &a.Team, &a.Points, &a.Gender, &a.MatchesPlayed, &a.Wins, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AthleteRepository) Insert(ctx context.Context, a *domain.Athlete) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO athletes (`+athleteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Team, a.Points, a.Gender, a.MatchesPlayed, a.Wins, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("athlete_id", a.ID).Msg("failed to insert athlete")
		return fmt.Errorf("failed to insert athlete %s: %w", a.ID, err)
	}
	return nil
}

func (r *AthleteRepository) GetByID(ctx context.Context, id string) (*domain.Athlete, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id)

	a, err := scanAthlete(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete %s: %w", id, err)
	}
	return a, nil
}

// GetByIDs returns the athletes for the given ids in the order requested.
// A missing id yields ErrNotFound.
func (r *AthleteRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Athlete, error) {
	result := make([]domain.Athlete, 0, len(ids))
	for _, id := range ids {
		a, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, nil
}

// List returns the roster in insertion order.
func (r *AthleteRepository) List(ctx context.Context) ([]domain.Athlete, error) {
	return r.queryAthletes(ctx,
		`SELECT `+athleteColumns+` FROM athletes ORDER BY rowid`)
}

// Search filters the roster by a name or team substring, insertion order.
func (r *AthleteRepository) Search(ctx context.Context, query string) ([]domain.Athlete, error) {
	pattern := "%" + query + "%"
	return r.queryAthletes(ctx,
		`SELECT `+athleteColumns+` FROM athletes
		 WHERE name LIKE ? OR team LIKE ?
		 ORDER BY rowid`, pattern, pattern)
}

func (r *AthleteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM athletes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count athletes: %w", err)
	}
	return count, nil
}

// ApplyOutcome adjusts points and counters for one settled match inside the
// caller's transaction. Winners gain 15 points, a played match and a win;
// losers lose 10 points floored at zero and a played match. The id sets must
// be disjoint.
func (r *AthleteRepository) ApplyOutcome(ctx context.Context, tx *sql.Tx, winnerIDs, loserIDs []string) error {
	now := time.Now()

	for _, id := range winnerIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE athletes
			 SET points = points + ?, matches_played = matches_played + 1, wins = wins + 1, updated_at = ?
			 WHERE id = ?`,
			winPointsDelta, now, id)
		if err != nil {
			return fmt.Errorf("failed to apply win for athlete %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("failed to apply win for athlete %s: %w", id, domain.ErrNotFound)
		}
	}

	for _, id := range loserIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE athletes
			 SET points = MAX(0, points - ?), matches_played = matches_played + 1, updated_at = ?
			 WHERE id = ?`,
			lossPointsDelta, now, id)
		if err != nil {
			return fmt.Errorf("failed to apply loss for athlete %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("failed to apply loss for athlete %s: %w", id, domain.ErrNotFound)
		}
	}

	return nil
}

// TopAthlete returns the athlete with the most points, ties broken by
// insertion order.
func (r *AthleteRepository) TopAthlete(ctx context.Context) (*domain.Athlete, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+athleteColumns+` FROM athletes ORDER BY points DESC, rowid ASC LIMIT 1`)

	a, err := scanAthlete(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get top athlete: %w", err)
	}
	return a, nil
}

// TeamStats groups the roster by team, ordered by total points descending,
// ties broken by first appearance in the roster.
func (r *AthleteRepository) TeamStats(ctx context.Context) ([]domain.TeamStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team, SUM(points), COUNT(*)
		 FROM athletes
		 GROUP BY team
		 ORDER BY SUM(points) DESC, MIN(rowid) ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.TeamStats
	for rows.Next() {
		var s domain.TeamStats
		if err := rows.Scan(&s.Name, &s.TotalPoints, &s.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// DistinctTeams returns every team with at least one registered athlete,
// sorted lexicographically.
func (r *AthleteRepository) DistinctTeams(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT team FROM athletes ORDER BY team`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *AthleteRepository) queryAthletes(ctx context.Context, query string, args ...any) ([]domain.Athlete, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query athletes: %w", err)
	}
	defer rows.Close()

	var athletes []domain.Athlete
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		athletes = append(athletes, *a)
	}
	return athletes, rows.Err()
}
