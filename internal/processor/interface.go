package processor

import (
	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	ListPlayers(activeOnly bool) ([]club.Player, error)
	GetPlayer(id int64) (*club.Player, error)
	AllMatches() ([]*club.Match, error)
	MatchesForPlayer(playerID int64) ([]*club.Match, error)
	ApplyRecomputedRatings(adjustments []club.RatingAdjustment, ts int64) error
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
