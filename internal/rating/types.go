package rating

// Direction is the advisory direction of a rating suggestion.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionMaintain Direction = "maintain"
)

// Trend classifies a player's form over their most recent matches.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ChangeDirection describes how the current rating relates to the rating
// before the last committed adjustment.
type ChangeDirection string

const (
	ChangeIncreased ChangeDirection = "increased"
	ChangeDecreased ChangeDirection = "decreased"
	ChangeUnchanged ChangeDirection = "unchanged"
)

// Assessment is the engine's full output for one player. It is computed on
// demand and never persisted; the reporting layer renders it as-is.
type Assessment struct {
	TotalMatches    int `json:"total_matches"`
	Wins            int `json:"wins"`
	Losses          int `json:"losses"`
	WinRate         int `json:"win_rate"`
	PointsFor       int `json:"points_for"`
	PointsAgainst   int `json:"points_against"`
	PointDifference int `json:"point_difference"`

	SuggestedRating     *int      `json:"suggested_rating,omitempty"`
	SuggestionDirection Direction `json:"suggestion_direction,omitempty"`
	SuggestionReason    string    `json:"suggestion_reason,omitempty"`

	RecentTrend           Trend           `json:"recent_trend,omitempty"`
	RatingChangeDirection ChangeDirection `json:"rating_change_direction"`
}

// Result is an Assessment plus the decision the orchestrator acts on. Target
// equals the player's current rating when no change is warranted; AutoUpdate
// reports whether the window was large enough to commit the target.
type Result struct {
	Assessment
	Target     int  `json:"-"`
	AutoUpdate bool `json:"-"`
}

// Change is one committed rating change, used for notifications and events.
type Change struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	From       int    `json:"from"`
	To         int    `json:"to"`
}

// Standing is one row of the club standings: a player together with their
// assessment. Standings are ordered by win rate, then wins, then point
// difference, all descending.
type Standing struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Rating     int    `json:"rating"`
	Assessment
}
