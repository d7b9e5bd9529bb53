package rank

import (
	"pingpong-tracker/internal/domain"
)

// FromPoints maps a point total to its rank band. The bands are contiguous
// and exhaustive over the non-negative integers, boundaries inclusive.
func FromPoints(points int) domain.Rank {
	switch {
	case points >= 1000:
		return domain.RankA
	case points >= 900:
		return domain.RankB
	case points >= 700:
		return domain.RankC
	case points >= 600:
		return domain.RankD
	case points >= 500:
		return domain.RankE
	case points >= 400:
		return domain.RankF
	case points >= 300:
		return domain.RankG
	default:
		return domain.RankH
	}
}

// Range returns the display range for a band, e.g. "900-999".
func Range(r domain.Rank) string {
	switch r {
	case domain.RankA:
		return "1000+"
	case domain.RankB:
		return "900-999"
	case domain.RankC:
		return "700-899"
	case domain.RankD:
		return "600-699"
	case domain.RankE:
		return "500-599"
	case domain.RankF:
		return "400-499"
	case domain.RankG:
		return "300-399"
	case domain.RankH:
		return "200-299"
	default:
		return ""
	}
}
