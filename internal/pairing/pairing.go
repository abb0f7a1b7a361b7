package pairing

import (
	"math"
	"sort"

	"github.com/racketclub/courtside/internal/club"
)

// Pairing is one possible way to put four players on court: two per side,
// with the rating gap between the sides' averages. A gap of zero is a
// perfectly balanced match.
type Pairing struct {
	TeamA     [2]club.Player `json:"team_a"`
	TeamB     [2]club.Player `json:"team_b"`
	RatingGap float64        `json:"rating_gap"`
}

// Generate enumerates every pairing over the given players: each group of
// four can be split into teams three ways. The result is ordered most
// balanced first.
func Generate(players []club.Player) []Pairing {
	if len(players) < 4 {
		return nil
	}

	var pairings []Pairing
	groups := combinations(len(players))
	for _, g := range groups {
		a, b, c, d := players[g[0]], players[g[1]], players[g[2]], players[g[3]]
		// The three distinct splits of {a,b,c,d} into two pairs.
		pairings = append(pairings,
			makePairing(a, b, c, d),
			makePairing(a, c, b, d),
			makePairing(a, d, b, c),
		)
	}

	sort.SliceStable(pairings, func(i, j int) bool {
		return pairings[i].RatingGap < pairings[j].RatingGap
	})
	return pairings
}

func makePairing(a1, a2, b1, b2 club.Player) Pairing {
	avgA := float64(a1.Rating+a2.Rating) / 2
	avgB := float64(b1.Rating+b2.Rating) / 2
	return Pairing{
		TeamA:     [2]club.Player{a1, a2},
		TeamB:     [2]club.Player{b1, b2},
		RatingGap: math.Abs(avgA - avgB),
	}
}

// combinations returns every index group of size four out of n.
func combinations(n int) [][4]int {
	var out [][4]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				for l := k + 1; l < n; l++ {
					out = append(out, [4]int{i, j, k, l})
				}
			}
		}
	}
	return out
}
