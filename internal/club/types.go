package club

import (
	"database/sql"
	"sync"
)

// Rating bounds. A player's rating never leaves this range.
const (
	MinRating = 1
	MaxRating = 10
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player represents a club member.
//
// OriginalRating is the baseline set once at creation; it is the anchor for
// full recomputation when match history is edited. PreviousRating holds the
// rating immediately before the last adjustment so the UI can show deltas.
type Player struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Rating           int     `json:"rating"`
	OriginalRating   int     `json:"original_rating"`
	PreviousRating   *int    `json:"previous_rating,omitempty"`
	LastRatingUpdate *int64  `json:"last_rating_update,omitempty"`
	Active           bool    `json:"active"`
	SlackUserID      *string `json:"slack_user_id,omitempty"`
	CreatedAt        int64   `json:"created_at"`
}

// Team identifies one side of a match.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Match is a recorded 2v2 match. WinningTeam is derived from the strictly
// higher score when the match is recorded; ties are not modeled.
type Match struct {
	ID           int64 `json:"id"`
	TeamAPlayer1 int64 `json:"team_a_player1"`
	TeamAPlayer2 int64 `json:"team_a_player2"`
	TeamBPlayer1 int64 `json:"team_b_player1"`
	TeamBPlayer2 int64 `json:"team_b_player2"`
	TeamAScore   int   `json:"team_a_score"`
	TeamBScore   int   `json:"team_b_score"`
	WinningTeam  Team  `json:"winning_team"`
	PlayedAt     int64 `json:"played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// TeamOf returns which team the player belongs to.
func (m *Match) TeamOf(playerID int64) (Team, bool) {
	switch playerID {
	case m.TeamAPlayer1, m.TeamAPlayer2:
		return TeamA, true
	case m.TeamBPlayer1, m.TeamBPlayer2:
		return TeamB, true
	}
	return "", false
}

// Opponents returns the two player ids on the opposing side of the given team.
func (m *Match) Opponents(team Team) (int64, int64) {
	if team == TeamA {
		return m.TeamBPlayer1, m.TeamBPlayer2
	}
	return m.TeamAPlayer1, m.TeamAPlayer2
}

// Scores returns the score of the given team followed by the opposing score.
func (m *Match) Scores(team Team) (own, opp int) {
	if team == TeamA {
		return m.TeamAScore, m.TeamBScore
	}
	return m.TeamBScore, m.TeamAScore
}

// PlayerIDs returns all four participants in slot order.
func (m *Match) PlayerIDs() [4]int64 {
	return [4]int64{m.TeamAPlayer1, m.TeamAPlayer2, m.TeamBPlayer1, m.TeamBPlayer2}
}

// RatingAdjustment is one committed rating change within a recomputation pass.
type RatingAdjustment struct {
	PlayerID       int64
	NewRating      int
	PreviousRating int
}
