package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	RecomputeRuns      prometheus.Counter
	RatingChanges      prometheus.Counter
	RecomputeDuration  prometheus.Histogram
	OTPIssued          prometheus.Counter
	OTPVerified        prometheus.Counter
	OTPRejected        prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RecomputeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_rating_recompute_runs_total",
			Help: "The total number of full rating recomputation passes.",
		}),
		RatingChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_rating_changes_total",
			Help: "The total number of committed rating changes.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_rating_recompute_duration_seconds",
			Help:    "The duration of full rating recomputation passes.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		OTPIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_otp_issued_total",
			Help: "The total number of one-time passcodes issued.",
		}),
		OTPVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_otp_verified_total",
			Help: "The total number of one-time passcodes successfully verified.",
		}),
		OTPRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_otp_rejected_total",
			Help: "The total number of one-time passcode verifications rejected.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RecomputeRuns,
		s.RatingChanges,
		s.RecomputeDuration,
		s.OTPIssued,
		s.OTPVerified,
		s.OTPRejected,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRecomputeRuns() {
	s.RecomputeRuns.Inc()
}

func (s *Service) AddRatingChanges(count int) {
	s.RatingChanges.Add(float64(count))
}

func (s *Service) ObserveRecomputeDuration(seconds float64) {
	s.RecomputeDuration.Observe(seconds)
}

func (s *Service) IncOTPIssued() {
	s.OTPIssued.Inc()
}

func (s *Service) IncOTPVerified() {
	s.OTPVerified.Inc()
}

func (s *Service) IncOTPRejected() {
	s.OTPRejected.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
