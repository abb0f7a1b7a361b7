package club

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	CreatePlayer(name string, rating int, slackUserID *string) (*Player, error)
	GetPlayer(id int64) (*Player, error)
	ListPlayers(activeOnly bool) ([]Player, error)
	UpdatePlayer(id int64, name string, active bool) error
	SetRating(id int64, newRating, previousRating int, ts int64) error
	ApplyRecomputedRatings(adjustments []RatingAdjustment, ts int64) error

	CreateMatch(m *Match) error
	GetMatch(id int64) (*Match, error)
	UpdateMatch(m *Match) error
	DeleteMatch(id int64) error
	AllMatches() ([]*Match, error)
	MatchesForPlayer(playerID int64) ([]*Match, error)

	Clear()
}
