package notifier

import (
	"time"

	"github.com/racketclub/courtside/internal/rating"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// SendRatingChanges announces committed rating changes to the club channel.
	SendRatingChanges(changes []rating.Change, dryRun bool) error
	// SendStandings posts the current standings to the club channel.
	SendStandings(standings []rating.Standing, dryRun bool) error
	// SendOTP delivers a one-time passcode directly to the given user.
	SendOTP(slackUserID, code string, expiresAt time.Time, dryRun bool) error
}
