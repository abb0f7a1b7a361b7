package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/racketclub/courtside/internal/metrics"
	"github.com/racketclub/courtside/internal/notifier"
	"github.com/racketclub/courtside/internal/rating"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(channelID string, message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel, timestamp, err := s.api.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channel)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channel, "timestamp", timestamp)
	return nil
}

// SendRatingChanges announces committed rating changes to the club channel.
func (s *Notifier) SendRatingChanges(changes []rating.Change, dryRun bool) error {
	if len(changes) == 0 {
		return nil
	}
	msg := s.formatRatingChanges(changes)
	return s.sendMessage(s.channelID, msg, dryRun)
}

// SendStandings posts the current standings to the club channel.
func (s *Notifier) SendStandings(standings []rating.Standing, dryRun bool) error {
	msg := s.formatStandings(standings)
	return s.sendMessage(s.channelID, msg, dryRun)
}

// SendOTP delivers a one-time passcode as a direct message to the given user.
func (s *Notifier) SendOTP(slackUserID, code string, expiresAt time.Time, dryRun bool) error {
	msg := s.formatOTP(code, expiresAt)
	return s.sendMessage(slackUserID, msg, dryRun)
}
