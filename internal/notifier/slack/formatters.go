package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/racketclub/courtside/internal/rating"
	"github.com/slack-go/slack"
)

// formatRatingChanges creates the Slack message announcing rating changes using Block Kit.
func (s *Notifier) formatRatingChanges(changes []rating.Change) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📊 Rating updates 📊", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var lines []string
	for _, c := range changes {
		arrow := "⬆️"
		if c.To < c.From {
			arrow = "⬇️"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %d → %d", arrow, c.PlayerName, c.From, c.To))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates the Slack message for the club standings using Block Kit.
func (s *Notifier) formatStandings(standings []rating.Standing) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Club standings 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No matches recorded yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for i, st := range standings {
		medal := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		lines = append(lines, fmt.Sprintf("%s %s, rating %d, %d%% (%dW/%dL, %+d points)",
			medal, st.PlayerName, st.Rating, st.WinRate, st.Wins, st.Losses, st.PointDifference))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatOTP creates the direct message carrying a one-time passcode.
func (s *Notifier) formatOTP(code string, expiresAt time.Time) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🔐 Your sign-in code", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	body := fmt.Sprintf("Your one-time code is %s\nIt expires at %s.", code, expiresAt.Format("15:04"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", body, true, false), nil, nil))

	var contextElements []slack.MixedElement
	contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", "If you did not request this code, you can ignore this message.", true, false))
	blocks = append(blocks, slack.NewContextBlock("", contextElements...))

	return slack.NewBlockMessage(blocks...)
}
