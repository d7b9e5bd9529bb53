package domain

import (
	"time"
)

// Rank is one of the 8 ordinal bands derived from an athlete's point total,
// A being the highest and H the lowest.
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
	RankE Rank = "E"
	RankF Rank = "F"
	RankG Rank = "G"
	RankH Rank = "H"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type MatchType string

const (
	MatchSingles MatchType = "singles"
	MatchDoubles MatchType = "doubles"
)

// PlayersPerSide returns how many athletes each side must field.
func (t MatchType) PlayersPerSide() int {
	if t == MatchDoubles {
		return 2
	}
	return 1
}

func (t MatchType) Valid() bool {
	return t == MatchSingles || t == MatchDoubles
}

type Athlete struct {
	ID            string
	Name          string
	Team          string
	Points        int
	Gender        Gender
	MatchesPlayed int
	Wins          int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Match is a committed settlement. WinnerSide is derived from the scores
// (1 when Score1 > Score2, 2 otherwise) and never client-supplied.
type Match struct {
	ID         string
	Date       time.Time
	Type       MatchType
	Team1IDs   []string
	Team2IDs   []string
	Score1     int
	Score2     int
	WinnerSide int
	CreatedAt  time.Time
}

// TeamStats is a derived projection over the roster, never stored.
type TeamStats struct {
	Name        string
	TotalPoints int
	MemberCount int
}
