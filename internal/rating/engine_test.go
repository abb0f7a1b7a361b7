package rating_test

import (
	"testing"

	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedLookup builds a Lookup from a map of player id to rating.
func fixedLookup(ratings map[int64]int) rating.Lookup {
	return func(id int64) (int, bool) {
		r, ok := ratings[id]
		return r, ok
	}
}

// subject id is 1, teammate 2, opponents 3 and 4 throughout.
func player(ratingVal int) *club.Player {
	return &club.Player{ID: 1, Name: "Subject", Rating: ratingVal, OriginalRating: ratingVal, Active: true}
}

// newMatch builds a match from the subject's perspective. The winning team is
// set from the scores, matching how matches are recorded.
func newMatch(ownScore, oppScore int) *club.Match {
	winner := club.TeamA
	if oppScore > ownScore {
		winner = club.TeamB
	}
	return &club.Match{
		TeamAPlayer1: 1, TeamAPlayer2: 2,
		TeamBPlayer1: 3, TeamBPlayer2: 4,
		TeamAScore: ownScore, TeamBScore: oppScore,
		WinningTeam: winner,
	}
}

// evenMatch is a hypothetical zero-margin match decided for the given team,
// which isolates the base win/loss score from the point-margin multiplier.
func evenMatch(winner club.Team) *club.Match {
	return &club.Match{
		TeamAPlayer1: 1, TeamAPlayer2: 2,
		TeamBPlayer1: 3, TeamBPlayer2: 4,
		TeamAScore: 21, TeamBScore: 21,
		WinningTeam: winner,
	}
}

func equalOpponents(ratingVal int) rating.Lookup {
	return fixedLookup(map[int64]int{2: ratingVal, 3: ratingVal, 4: ratingVal})
}

func TestEvaluateNoMatches(t *testing.T) {
	p := player(5)
	res := rating.Evaluate(p, nil, equalOpponents(5))

	assert.Equal(t, 0, res.TotalMatches)
	assert.Equal(t, 0, res.Wins)
	assert.Equal(t, 0, res.Losses)
	assert.Equal(t, 0, res.WinRate)
	assert.Equal(t, 0, res.PointDifference)
	assert.Nil(t, res.SuggestedRating)
	assert.Empty(t, res.RecentTrend)
	assert.Equal(t, 5, res.Target)
	assert.False(t, res.AutoUpdate)
}

func TestEvaluateInsufficientData(t *testing.T) {
	// One or two matches: statistics are reported but no assessment is made,
	// no matter how lopsided the results.
	for _, n := range []int{1, 2} {
		matches := make([]*club.Match, 0, n)
		for i := 0; i < n; i++ {
			matches = append(matches, newMatch(21, 5))
		}
		res := rating.Evaluate(player(5), matches, equalOpponents(5))

		assert.Equal(t, n, res.TotalMatches)
		assert.Equal(t, n, res.Wins)
		assert.Nil(t, res.SuggestedRating)
		assert.Equal(t, 5, res.Target)
		assert.False(t, res.AutoUpdate)
	}
}

func TestEvaluateSuggestionOnlyMode(t *testing.T) {
	// 3 or 4 matches: the engine suggests but never commits.
	for _, n := range []int{3, 4} {
		matches := make([]*club.Match, 0, n)
		for i := 0; i < n; i++ {
			matches = append(matches, evenMatch(club.TeamA))
		}
		res := rating.Evaluate(player(5), matches, equalOpponents(5))

		assert.False(t, res.AutoUpdate, "matches=%d", n)
		require.NotNil(t, res.SuggestedRating, "matches=%d", n)
		assert.Equal(t, 6, *res.SuggestedRating)
		assert.Equal(t, rating.DirectionIncrease, res.SuggestionDirection)
		assert.Contains(t, res.SuggestionReason, "average performance score 1.00")
		// The reason states how many more matches until auto-update kicks in.
		assert.Contains(t, res.SuggestionReason, "3 matches")
		if n == 4 {
			assert.Contains(t, res.SuggestionReason, "1 more match(es)")
		} else {
			assert.Contains(t, res.SuggestionReason, "2 more match(es)")
		}
		// The target still reports what would be committed.
		assert.Equal(t, 6, res.Target)
	}
}

func TestEvaluateAutoUpdateAllWinsEqualOpponents(t *testing.T) {
	// Five wins against equal-rated opponents with zero margin: every match
	// scores exactly 1.0, avgPerformance = 1.0 > 0.5, one step up.
	matches := []*club.Match{
		evenMatch(club.TeamA), evenMatch(club.TeamA), evenMatch(club.TeamA),
		evenMatch(club.TeamA), evenMatch(club.TeamA),
	}
	res := rating.Evaluate(player(5), matches, equalOpponents(5))

	assert.True(t, res.AutoUpdate)
	assert.Equal(t, 6, res.Target)
	assert.Nil(t, res.SuggestedRating, "auto-update mode emits no suggestion")
}

func TestEvaluateFourWinsOneLoss(t *testing.T) {
	// 4x winScore 1.0 and 1x lossScore -1.0 (the minimum 50% loss penalty
	// applies at zero margin): avg = (4 - 1.5)/5 = 0.5, which does NOT clear
	// the strict > 0.5 threshold.
	matches := []*club.Match{
		evenMatch(club.TeamA), evenMatch(club.TeamA), evenMatch(club.TeamA),
		evenMatch(club.TeamA), evenMatch(club.TeamB),
	}
	res := rating.Evaluate(player(5), matches, equalOpponents(5))
	assert.Equal(t, 5, res.Target)

	// With the losing match outside the window, the five analyzed wins give
	// avg = 1.0 and the rating moves up.
	matches = append([]*club.Match{evenMatch(club.TeamA)}, matches...)
	res = rating.Evaluate(player(5), matches, equalOpponents(5))
	assert.Equal(t, 6, res.Target)
	assert.Equal(t, 6, res.TotalMatches)
}

func TestEvaluateAllLossesDecreases(t *testing.T) {
	matches := []*club.Match{
		evenMatch(club.TeamB), evenMatch(club.TeamB), evenMatch(club.TeamB),
		evenMatch(club.TeamB), evenMatch(club.TeamB),
	}
	res := rating.Evaluate(player(5), matches, equalOpponents(5))

	assert.True(t, res.AutoUpdate)
	assert.Equal(t, 4, res.Target)
}

func TestEvaluateBoundsRespected(t *testing.T) {
	wins := []*club.Match{
		evenMatch(club.TeamA), evenMatch(club.TeamA), evenMatch(club.TeamA),
		evenMatch(club.TeamA), evenMatch(club.TeamA),
	}
	res := rating.Evaluate(player(club.MaxRating), wins, equalOpponents(club.MaxRating))
	assert.Equal(t, club.MaxRating, res.Target, "rating 10 cannot increase")

	losses := []*club.Match{
		evenMatch(club.TeamB), evenMatch(club.TeamB), evenMatch(club.TeamB),
		evenMatch(club.TeamB), evenMatch(club.TeamB),
	}
	res = rating.Evaluate(player(club.MinRating), losses, equalOpponents(club.MinRating))
	assert.Equal(t, club.MinRating, res.Target, "rating 1 cannot decrease")
}

func TestEvaluateSingleStepEvenWhenExtreme(t *testing.T) {
	// Crushing wins against much stronger opponents produce a huge average
	// performance, but the rating still moves exactly one step.
	matches := []*club.Match{
		newMatch(21, 0), newMatch(21, 0), newMatch(21, 0),
		newMatch(21, 0), newMatch(21, 0),
	}
	res := rating.Evaluate(player(2), matches, equalOpponents(9))
	assert.Equal(t, 3, res.Target)
}

func TestMatchScoreRatingGapAdjustments(t *testing.T) {
	// One zero-margin win against opponents averaging 2 points higher:
	// winScore = 1.0 * (1 + 2*0.25) = 1.5. Over a window of 3 identical
	// matches avg = 1.5.
	matches := []*club.Match{
		evenMatch(club.TeamA), evenMatch(club.TeamA), evenMatch(club.TeamA),
	}
	res := rating.Evaluate(player(5), matches, equalOpponents(7))
	assert.Contains(t, res.SuggestionReason, "1.50")

	// Beating weaker opponents (gap -2): 1.0 * (1 - 2*0.15) = 0.70, still
	// above the threshold, so the suggestion survives the discount.
	res = rating.Evaluate(player(5), matches, equalOpponents(3))
	assert.Contains(t, res.SuggestionReason, "0.70")
	require.NotNil(t, res.SuggestedRating)
	assert.Equal(t, 6, *res.SuggestedRating)
}

func TestMatchScoreLossAdjustments(t *testing.T) {
	losses := []*club.Match{
		evenMatch(club.TeamB), evenMatch(club.TeamB), evenMatch(club.TeamB),
	}

	// Losing to stronger opponents (gap +2) hurts less:
	// -1.0 * (1 - 2*0.2) * (1 + 0.5) = -0.9. avg = -0.9 < -0.5: suggest down.
	res := rating.Evaluate(player(5), losses, equalOpponents(7))
	require.NotNil(t, res.SuggestedRating)
	assert.Equal(t, 4, *res.SuggestedRating)
	assert.Equal(t, rating.DirectionDecrease, res.SuggestionDirection)
	assert.Contains(t, res.SuggestionReason, "-0.90")

	// Losing to weaker opponents (gap -2) hurts more:
	// -1.0 * (1 + 2*0.3) * (1 + 0.5) = -2.4.
	res = rating.Evaluate(player(5), losses, equalOpponents(3))
	assert.Contains(t, res.SuggestionReason, "-2.40")
}

func TestMatchScorePointMarginBonus(t *testing.T) {
	// Equal opponents, 21-17 win: 1.0 * (1 + min(4*0.1, 0.5)) = 1.4.
	matches := []*club.Match{newMatch(21, 17), newMatch(21, 17), newMatch(21, 17)}
	res := rating.Evaluate(player(5), matches, equalOpponents(5))
	assert.Contains(t, res.SuggestionReason, "1.40")

	// Margin bonus caps at +50%: a 21-0 win still scores 1.5.
	matches = []*club.Match{newMatch(21, 0), newMatch(21, 0), newMatch(21, 0)}
	res = rating.Evaluate(player(5), matches, equalOpponents(5))
	assert.Contains(t, res.SuggestionReason, "1.50")
}

func TestMissingOpponentTreatedAsEqualStrength(t *testing.T) {
	// No opponent records at all: every slot falls back to the subject's own
	// rating, so the gap is zero and scores reduce to the base values.
	matches := []*club.Match{
		evenMatch(club.TeamA), evenMatch(club.TeamA), evenMatch(club.TeamA),
		evenMatch(club.TeamA), evenMatch(club.TeamA),
	}
	res := rating.Evaluate(player(5), matches, fixedLookup(nil))
	assert.Equal(t, 6, res.Target)
}

func TestAggregateStatistics(t *testing.T) {
	matches := []*club.Match{
		newMatch(21, 15),
		newMatch(18, 21),
		newMatch(21, 10),
	}
	res := rating.Evaluate(player(5), matches, equalOpponents(5))

	assert.Equal(t, 3, res.TotalMatches)
	assert.Equal(t, 2, res.Wins)
	assert.Equal(t, 1, res.Losses)
	assert.Equal(t, 67, res.WinRate, "2 of 3 rounds to 67")
	assert.Equal(t, 60, res.PointsFor)
	assert.Equal(t, 46, res.PointsAgainst)
	assert.Equal(t, 14, res.PointDifference)
}

func TestRecentTrend(t *testing.T) {
	win, loss := newMatch(21, 10), newMatch(10, 21)

	res := rating.Evaluate(player(5), []*club.Match{win, win, loss}, equalOpponents(5))
	assert.Equal(t, rating.TrendImproving, res.RecentTrend, "2 of 3 recent wins rounds to 67%%")

	res = rating.Evaluate(player(5), []*club.Match{loss, loss, win}, equalOpponents(5))
	assert.Equal(t, rating.TrendDeclining, res.RecentTrend)

	// Trend looks at the most recent 3 only, regardless of total history.
	res = rating.Evaluate(player(5), []*club.Match{win, win, win, loss, loss, loss}, equalOpponents(5))
	assert.Equal(t, rating.TrendImproving, res.RecentTrend)
}

func TestRatingChangeDirection(t *testing.T) {
	p := player(6)
	prev := 5
	p.PreviousRating = &prev
	res := rating.Evaluate(p, nil, fixedLookup(nil))
	assert.Equal(t, rating.ChangeIncreased, res.RatingChangeDirection)

	p = player(4)
	p.PreviousRating = &prev
	res = rating.Evaluate(p, nil, fixedLookup(nil))
	assert.Equal(t, rating.ChangeDecreased, res.RatingChangeDirection)

	res = rating.Evaluate(player(5), nil, fixedLookup(nil))
	assert.Equal(t, rating.ChangeUnchanged, res.RatingChangeDirection)
}

func TestSortStandings(t *testing.T) {
	standings := []rating.Standing{
		{PlayerID: 1, Assessment: rating.Assessment{WinRate: 50, Wins: 5, PointDifference: 10}},
		{PlayerID: 2, Assessment: rating.Assessment{WinRate: 75, Wins: 3, PointDifference: -2}},
		{PlayerID: 3, Assessment: rating.Assessment{WinRate: 50, Wins: 5, PointDifference: 30}},
		{PlayerID: 4, Assessment: rating.Assessment{WinRate: 50, Wins: 6, PointDifference: 1}},
	}
	rating.SortStandings(standings)

	ids := []int64{standings[0].PlayerID, standings[1].PlayerID, standings[2].PlayerID, standings[3].PlayerID}
	assert.Equal(t, []int64{2, 4, 3, 1}, ids)
}
