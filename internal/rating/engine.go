// Package rating implements the club's skill-rating heuristic: a weighted
// performance score over a player's most recent matches, translated into
// either a committed one-step rating change or an advisory suggestion.
//
// The scoring constants are a behavioral contract. Changing any of them
// changes every rating in the club on the next recomputation.
package rating

import (
	"fmt"
	"math"
	"sort"

	"github.com/racketclub/courtside/internal/club"
)

const (
	// minAnalyzedMatches is the minimum history before any assessment is made.
	minAnalyzedMatches = 3
	// suggestionWindow is analyzed when 3 or 4 matches exist; the engine only
	// suggests, never commits.
	suggestionWindow = 3
	// autoUpdateWindow is analyzed once 5 matches exist; the engine may commit.
	autoUpdateWindow = 5

	strongerWinBonus   = 0.25
	weakerWinDiscount  = 0.15
	strongerLossRelief = 0.2
	weakerLossPenalty  = 0.3
	pointDiffWeight    = 0.1
	pointBonusCap      = 0.5
	minLossPenalty     = 0.5

	decisionThreshold = 0.5

	trendWindow       = 3
	trendImprovingPct = 67
	trendDecliningPct = 33
)

// Lookup resolves a player id to that player's current rating. A missing
// player reports ok=false and the engine substitutes the subject's own rating
// for that opponent slot.
type Lookup func(playerID int64) (int, bool)

// Evaluate runs the full assessment for one player: aggregate statistics over
// the entire history, then the windowed performance analysis and rating
// decision. matches must be ordered most recent first.
func Evaluate(p *club.Player, matches []*club.Match, lookup Lookup) Result {
	res := Result{Target: p.Rating}
	res.TotalMatches = len(matches)
	res.RatingChangeDirection = changeDirection(p)

	for _, m := range matches {
		team, ok := m.TeamOf(p.ID)
		if !ok {
			continue
		}
		own, opp := m.Scores(team)
		res.PointsFor += own
		res.PointsAgainst += opp
		if m.WinningTeam == team {
			res.Wins++
		} else {
			res.Losses++
		}
	}
	res.PointDifference = res.PointsFor - res.PointsAgainst
	if res.TotalMatches > 0 {
		res.WinRate = roundPct(res.Wins, res.TotalMatches)
	}
	if res.TotalMatches >= trendWindow {
		res.RecentTrend = recentTrend(p.ID, matches)
	}

	if res.TotalMatches < minAnalyzedMatches {
		// Insufficient data: statistics only, no suggestion, no adjustment.
		return res
	}

	window := suggestionWindow
	if res.TotalMatches >= autoUpdateWindow {
		window = autoUpdateWindow
		res.AutoUpdate = true
	}

	var sum float64
	for _, m := range matches[:window] {
		sum += matchScore(p, m, lookup)
	}
	avg := sum / float64(window)

	target := p.Rating
	switch {
	case avg > decisionThreshold && p.Rating < club.MaxRating:
		target = p.Rating + 1
	case avg < -decisionThreshold && p.Rating > club.MinRating:
		target = p.Rating - 1
	}
	if target > club.MaxRating {
		target = club.MaxRating
	}
	if target < club.MinRating {
		target = club.MinRating
	}
	// The decision above can only ever move one step, but clamp anyway so a
	// future formula change cannot produce a multi-level jump.
	if d := target - p.Rating; d > 1 {
		target = p.Rating + 1
	} else if d < -1 {
		target = p.Rating - 1
	}
	res.Target = target

	if !res.AutoUpdate && target != p.Rating {
		suggested := target
		res.SuggestedRating = &suggested
		if target > p.Rating {
			res.SuggestionDirection = DirectionIncrease
		} else {
			res.SuggestionDirection = DirectionDecrease
		}
		res.SuggestionReason = fmt.Sprintf(
			"average performance score %.2f over the last %d matches; %d more match(es) needed before ratings update automatically",
			avg, window, autoUpdateWindow-res.TotalMatches)
	}

	return res
}

// matchScore computes the weighted score of a single match from the player's
// perspective. Wins count for more against stronger opponents and for less
// against weaker ones; losses mirror that, scaled further by the point margin.
func matchScore(p *club.Player, m *club.Match, lookup Lookup) float64 {
	team, ok := m.TeamOf(p.ID)
	if !ok {
		return 0
	}
	opp1, opp2 := m.Opponents(team)
	avgOpponent := (ratingOrOwn(lookup, opp1, p.Rating) + ratingOrOwn(lookup, opp2, p.Rating)) / 2.0
	gap := avgOpponent - float64(p.Rating)

	own, opp := m.Scores(team)
	pointDiff := float64(own - opp)

	if m.WinningTeam == team {
		score := 1.0
		if gap > 0 {
			score *= 1 + gap*strongerWinBonus
		}
		if gap < 0 {
			score *= 1 - (-gap)*weakerWinDiscount
		}
		score *= 1 + math.Min(pointDiff*pointDiffWeight, pointBonusCap)
		return score
	}

	score := -1.0
	if gap > 0 {
		score *= 1 - gap*strongerLossRelief
	}
	if gap < 0 {
		score *= 1 + (-gap)*weakerLossPenalty
	}
	score *= 1 + math.Max(math.Abs(pointDiff)*pointDiffWeight, minLossPenalty)
	return score
}

// ratingOrOwn resolves an opponent's rating, treating a missing opponent
// record as an equal-strength opponent rather than failing.
func ratingOrOwn(lookup Lookup, playerID int64, own int) float64 {
	if r, ok := lookup(playerID); ok {
		return float64(r)
	}
	return float64(own)
}

// recentTrend classifies form over the most recent matches, independent of the
// window used for the rating decision.
func recentTrend(playerID int64, matches []*club.Match) Trend {
	wins := 0
	for _, m := range matches[:trendWindow] {
		if team, ok := m.TeamOf(playerID); ok && m.WinningTeam == team {
			wins++
		}
	}
	switch pct := roundPct(wins, trendWindow); {
	case pct >= trendImprovingPct:
		return TrendImproving
	case pct <= trendDecliningPct:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func changeDirection(p *club.Player) ChangeDirection {
	if p.PreviousRating == nil {
		return ChangeUnchanged
	}
	switch {
	case p.Rating > *p.PreviousRating:
		return ChangeIncreased
	case p.Rating < *p.PreviousRating:
		return ChangeDecreased
	default:
		return ChangeUnchanged
	}
}

func roundPct(part, total int) int {
	return int(math.Round(100 * float64(part) / float64(total)))
}

// SortStandings orders standings by win rate, then wins, then point
// difference, all descending. Ties beyond that keep their input order.
func SortStandings(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.PointDifference > b.PointDifference
	})
}
