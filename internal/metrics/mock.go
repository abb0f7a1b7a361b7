package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	recomputeRuns      int
	ratingChanges      int
	recomputeDurations []float64
	otpIssued          int
	otpVerified        int
	otpRejected        int
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		recomputeDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRecomputeRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeRuns++
}

func (m *Mock) AddRatingChanges(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingChanges += count
}

func (m *Mock) ObserveRecomputeDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeDurations = append(m.recomputeDurations, seconds)
}

func (m *Mock) IncOTPIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otpIssued++
}

func (m *Mock) IncOTPVerified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otpVerified++
}

func (m *Mock) IncOTPRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otpRejected++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// RecomputeRuns returns the number of times IncRecomputeRuns was called.
func (m *Mock) RecomputeRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeRuns
}

// RatingChanges returns the accumulated rating change count.
func (m *Mock) RatingChanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingChanges
}

// OTPIssued returns the number of times IncOTPIssued was called.
func (m *Mock) OTPIssued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otpIssued
}

// OTPVerified returns the number of times IncOTPVerified was called.
func (m *Mock) OTPVerified() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otpVerified
}

// OTPRejected returns the number of times IncOTPRejected was called.
func (m *Mock) OTPRejected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otpRejected
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
