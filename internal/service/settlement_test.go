package service

import (
	"context"
	"testing"

	"pingpong-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singlesFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.addAthlete(t, "x", "Athlete X", "Team Blue", 500)
	f.addAthlete(t, "y", "Athlete Y", "Team Red", 600)
	return f
}

func singlesInput(score1, score2 int) SubmitInput {
	return SubmitInput{
		Type:     domain.MatchSingles,
		Team1IDs: []string{"x"},
		Team2IDs: []string{"y"},
		Score1:   score1,
		Score2:   score2,
	}
}

func TestSettlement_Begin_RequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.settlement.Begin(context.Background())

	var authErr *domain.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, StateIdle, f.settlement.Draft().State)
}

func TestSettlement_Begin_OpensDraftForHomeTeam(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	draft, err := f.settlement.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDrafting, draft.State)
	assert.Equal(t, "Team Blue", draft.HomeTeam)
}

func TestSettlement_FullFlow(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	draft, err := f.settlement.Submit(context.Background(), singlesInput(3, 1))
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConfirmation, draft.State)
	assert.Equal(t, "Team Red", draft.AwayTeam)
	assert.Equal(t, 1, draft.WinnerSide)

	match, err := f.settlement.Confirm(context.Background(), testSecret)
	require.NoError(t, err)
	assert.Equal(t, 1, match.WinnerSide)
	assert.Equal(t, StateIdle, f.settlement.Draft().State)

	// winner gains 15 points, a played match and a win
	x, err := f.athletes.GetByID(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 515, x.Points)
	assert.Equal(t, 1, x.MatchesPlayed)
	assert.Equal(t, 1, x.Wins)

	// loser drops 10 points and gains a played match only
	y, err := f.athletes.GetByID(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, 590, y.Points)
	assert.Equal(t, 1, y.MatchesPlayed)
	assert.Equal(t, 0, y.Wins)

	// the committed match heads the ledger
	ledger, err := f.matches.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, match.ID, ledger[0].ID)
	assert.Equal(t, []string{"x"}, ledger[0].Team1IDs)
	assert.Equal(t, []string{"y"}, ledger[0].Team2IDs)
}

func TestSettlement_AwaySideWins(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	draft, err := f.settlement.Submit(context.Background(), singlesInput(1, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, draft.WinnerSide)

	_, err = f.settlement.Confirm(context.Background(), testSecret)
	require.NoError(t, err)

	x, err := f.athletes.GetByID(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 490, x.Points)
	assert.Equal(t, 0, x.Wins)

	y, err := f.athletes.GetByID(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, 615, y.Points)
	assert.Equal(t, 1, y.Wins)
}

func TestSettlement_RejectsDrawScore(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), singlesInput(3, 3))

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)

	// nothing committed, nothing mutated
	count, err2 := f.matches.Count(context.Background())
	require.NoError(t, err2)
	assert.Equal(t, 0, count)
	x, err2 := f.athletes.GetByID(context.Background(), "x")
	require.NoError(t, err2)
	assert.Equal(t, 500, x.Points)
}

func TestSettlement_RejectsWrongParticipantCount(t *testing.T) {
	f := singlesFixture(t)
	f.addAthlete(t, "z", "Athlete Z", "Team Red", 700)
	f.loginAs(t, "Team Blue")

	// doubles with a single home athlete
	_, err := f.settlement.Submit(context.Background(), SubmitInput{
		Type:     domain.MatchDoubles,
		Team1IDs: []string{"x"},
		Team2IDs: []string{"y", "z"},
		Score1:   3,
		Score2:   1,
	})

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSettlement_RejectsForeignHomeSide(t *testing.T) {
	f := newFixture(t)
	f.addAthlete(t, "r", "Athlete R", "Team Red", 500)
	f.addAthlete(t, "g", "Athlete G", "Team Green", 600)
	f.addAthlete(t, "b", "Athlete B", "Team Blue", 400)
	f.loginAs(t, "Team Blue")

	// logged in as Team Blue but fielding a Team Red athlete as home side
	_, err := f.settlement.Submit(context.Background(), SubmitInput{
		Type:     domain.MatchSingles,
		Team1IDs: []string{"r"},
		Team2IDs: []string{"g"},
		Score1:   3,
		Score2:   1,
	})

	var authErr *domain.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestSettlement_RejectsMixedAwaySide(t *testing.T) {
	f := newFixture(t)
	f.addAthlete(t, "b1", "Athlete B1", "Team Blue", 500)
	f.addAthlete(t, "b2", "Athlete B2", "Team Blue", 450)
	f.addAthlete(t, "r", "Athlete R", "Team Red", 600)
	f.addAthlete(t, "g", "Athlete G", "Team Green", 550)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), SubmitInput{
		Type:     domain.MatchDoubles,
		Team1IDs: []string{"b1", "b2"},
		Team2IDs: []string{"r", "g"},
		Score1:   3,
		Score2:   1,
	})

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSettlement_RejectsPlayingOwnTeam(t *testing.T) {
	f := newFixture(t)
	f.addAthlete(t, "b1", "Athlete B1", "Team Blue", 500)
	f.addAthlete(t, "b2", "Athlete B2", "Team Blue", 450)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), singlesInputFor("b1", "b2"))

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSettlement_RejectsUnknownAthlete(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), singlesInputFor("x", "ghost"))

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSettlement_RejectsAthleteOnBothSides(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), singlesInputFor("x", "x"))

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSettlement_WrongConfirmationSecretLeavesDraftOpen(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), singlesInput(3, 1))
	require.NoError(t, err)

	_, err = f.settlement.Confirm(context.Background(), "wrong")

	var confErr *domain.ConfirmationError
	assert.ErrorAs(t, err, &confErr)
	assert.Equal(t, StateAwaitingConfirmation, f.settlement.Draft().State)

	count, err := f.matches.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// confirmation is retryable
	_, err = f.settlement.Confirm(context.Background(), testSecret)
	require.NoError(t, err)
	count, err = f.matches.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSettlement_ConfirmWithoutDraft(t *testing.T) {
	f := singlesFixture(t)

	_, err := f.settlement.Confirm(context.Background(), testSecret)

	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSettlement_CancelResetsWithoutSideEffects(t *testing.T) {
	f := singlesFixture(t)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), singlesInput(3, 1))
	require.NoError(t, err)

	f.settlement.Cancel()
	assert.Equal(t, StateIdle, f.settlement.Draft().State)

	count, err := f.matches.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	x, err := f.athletes.GetByID(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 500, x.Points)

	// cancelling an idle engine is a no-op
	f.settlement.Cancel()
	assert.Equal(t, StateIdle, f.settlement.Draft().State)
}

func TestSettlement_DoublesFlow(t *testing.T) {
	f := newFixture(t)
	f.addAthlete(t, "b1", "Athlete B1", "Team Blue", 300)
	f.addAthlete(t, "b2", "Athlete B2", "Team Blue", 310)
	f.addAthlete(t, "r1", "Athlete R1", "Team Red", 320)
	f.addAthlete(t, "r2", "Athlete R2", "Team Red", 330)
	f.loginAs(t, "Team Blue")

	_, err := f.settlement.Submit(context.Background(), SubmitInput{
		Type:     domain.MatchDoubles,
		Team1IDs: []string{"b1", "b2"},
		Team2IDs: []string{"r1", "r2"},
		Score1:   2,
		Score2:   3,
	})
	require.NoError(t, err)

	match, err := f.settlement.Confirm(context.Background(), testSecret)
	require.NoError(t, err)
	assert.Equal(t, 2, match.WinnerSide)

	for _, id := range []string{"r1", "r2"} {
		a, err := f.athletes.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 1, a.Wins, "athlete %s", id)
	}
	for _, id := range []string{"b1", "b2"} {
		a, err := f.athletes.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Wins, "athlete %s", id)
		assert.Equal(t, 1, a.MatchesPlayed, "athlete %s", id)
	}
}

func singlesInputFor(homeID, awayID string) SubmitInput {
	return SubmitInput{
		Type:     domain.MatchSingles,
		Team1IDs: []string{homeID},
		Team2IDs: []string{awayID},
		Score1:   3,
		Score2:   1,
	}
}
