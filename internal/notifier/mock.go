package notifier

import (
	"sync"
	"time"

	"github.com/racketclub/courtside/internal/rating"
)

// OTPCall records one SendOTP invocation.
type OTPCall struct {
	SlackUserID string
	Code        string
	ExpiresAt   time.Time
}

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendRatingChangesCalls [][]rating.Change
	SendStandingsCalls     [][]rating.Standing
	SendOTPCalls           []OTPCall

	// Error injectors; when set, the corresponding method returns the error.
	SendRatingChangesErr error
	SendStandingsErr     error
	SendOTPErr           error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingChangesCalls = nil
	m.SendStandingsCalls = nil
	m.SendOTPCalls = nil
}

func (m *Mock) SendRatingChanges(changes []rating.Change, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendRatingChangesErr != nil {
		return m.SendRatingChangesErr
	}
	m.SendRatingChangesCalls = append(m.SendRatingChangesCalls, changes)
	return nil
}

func (m *Mock) SendStandings(standings []rating.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendStandingsErr != nil {
		return m.SendStandingsErr
	}
	m.SendStandingsCalls = append(m.SendStandingsCalls, standings)
	return nil
}

func (m *Mock) SendOTP(slackUserID, code string, expiresAt time.Time, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendOTPErr != nil {
		return m.SendOTPErr
	}
	m.SendOTPCalls = append(m.SendOTPCalls, OTPCall{SlackUserID: slackUserID, Code: code, ExpiresAt: expiresAt})
	return nil
}

// LastOTP returns the most recent SendOTP call, if any.
func (m *Mock) LastOTP() (OTPCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SendOTPCalls) == 0 {
		return OTPCall{}, false
	}
	return m.SendOTPCalls[len(m.SendOTPCalls)-1], true
}
