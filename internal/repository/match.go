package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pingpong-tracker/internal/domain"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// MatchRepository is the append-only match ledger. Matches are written once
// at settlement time inside the settlement transaction and never updated or
// deleted.
type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Insert appends a match and its participants inside the caller's
// transaction.
func (r *MatchRepository) Insert(ctx context.Context, tx *sql.Tx, m *domain.Match) error {
	m.CreatedAt = time.Now()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO matches (id, match_date, match_type, score1, score2, winner_side, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Date.Format(dateLayout), m.Type, m.Score1, m.Score2, m.WinnerSide, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
	}

	for side, ids := range map[int][]string{1: m.Team1IDs, 2: m.Team2IDs} {
		for _, id := range ids {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO match_participants (match_id, athlete_id, side) VALUES (?, ?, ?)`,
				m.ID, id, side)
			if err != nil {
				return fmt.Errorf("failed to insert participant %s for match %s: %w", id, m.ID, err)
			}
		}
	}

	return nil
}

// List returns the ledger most-recent-first.
func (r *MatchRepository) List(ctx context.Context) ([]domain.Match, error) {
	return r.queryMatches(ctx, 0)
}

// Recent returns at most limit matches, most-recent-first.
func (r *MatchRepository) Recent(ctx context.Context, limit int) ([]domain.Match, error) {
	return r.queryMatches(ctx, limit)
}

func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *MatchRepository) queryMatches(ctx context.Context, limit int) ([]domain.Match, error) {
	query := `SELECT id, match_date, match_type, score1, score2, winner_side, created_at
	          FROM matches ORDER BY rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	index := make(map[string]int)
	for rows.Next() {
		var m domain.Match
		var date string
		if err := rows.Scan(&m.ID, &date, &m.Type, &m.Score1, &m.Score2, &m.WinnerSide, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse match date %q: %w", date, err)
		}
		index[m.ID] = len(matches)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []domain.Match{}, nil
	}

	if err := r.attachParticipants(ctx, matches, index); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *MatchRepository) attachParticipants(ctx context.Context, matches []domain.Match, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, athlete_id, side FROM match_participants ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var matchID, athleteID string
		var side int
		if err := rows.Scan(&matchID, &athleteID, &side); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		i, ok := index[matchID]
		if !ok {
			continue
		}
		if side == 1 {
			matches[i].Team1IDs = append(matches[i].Team1IDs, athleteID)
		} else {
			matches[i].Team2IDs = append(matches[i].Team2IDs, athleteID)
		}
	}
	return rows.Err()
}
