package service

import (
	"context"
	"testing"

	"pingpong-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_Register(t *testing.T) {
	f := newFixture(t)

	athlete, err := f.roster.Register(context.Background(), RegisterInput{
		Name:          "Nguyen Van A",
		Team:          "CLB Ha Noi",
		InitialPoints: 250,
		Gender:        domain.GenderMale,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, athlete.ID)
	assert.Equal(t, 250, athlete.Points)
	assert.Equal(t, 0, athlete.MatchesPlayed)
	assert.Equal(t, 0, athlete.Wins)

	stored, err := f.roster.Get(context.Background(), athlete.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Van A", stored.Name)
}

func TestRoster_Register_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"empty name", RegisterInput{Name: "  ", Team: "CLB", InitialPoints: 100, Gender: domain.GenderMale}},
		{"empty team", RegisterInput{Name: "A", Team: "", InitialPoints: 100, Gender: domain.GenderMale}},
		{"negative points", RegisterInput{Name: "A", Team: "CLB", InitialPoints: -1, Gender: domain.GenderMale}},
		{"unknown gender", RegisterInput{Name: "A", Team: "CLB", InitialPoints: 100, Gender: "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.roster.Register(context.Background(), tt.input)
			var valErr *domain.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}

func TestRoster_List_SearchFilters(t *testing.T) {
	f := newFixture(t)
	f.addAthlete(t, "a1", "An", "Team Blue", 100)
	f.addAthlete(t, "a2", "Binh", "Team Red", 200)

	all, err := f.roster.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := f.roster.List(context.Background(), "Red")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a2", filtered[0].ID)
}

func TestRoster_Get_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.roster.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
