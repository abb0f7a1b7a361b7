package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRecomputeRuns()
	AddRatingChanges(count int)
	ObserveRecomputeDuration(seconds float64)
	IncOTPIssued()
	IncOTPVerified()
	IncOTPRejected()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(seconds float64)
}
