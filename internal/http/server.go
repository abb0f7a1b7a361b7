package http

import (
	"net/http"

	"github.com/racketclub/courtside/internal/auth"
	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/config"
	"github.com/racketclub/courtside/internal/metrics"
	"github.com/racketclub/courtside/internal/notifier"
	"github.com/racketclub/courtside/internal/processor"
	"github.com/racketclub/courtside/internal/pubsub"
)

func NewServer(store club.ClubStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, otpStore *auth.Store, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		OTP:            otpStore,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Mutating routes additionally require a valid session token.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("POST /players", Chain(s.CreatePlayerHandler(), paramsMiddleware, authMiddleware))
	s.Router.Handle("GET /players/{id}", Chain(s.GetPlayerHandler(), paramsMiddleware))
	s.Router.Handle("PUT /players/{id}", Chain(s.UpdatePlayerHandler(), paramsMiddleware, authMiddleware))
	s.Router.Handle("GET /players/{id}/assessment", Chain(s.AssessmentHandler(), paramsMiddleware))

	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches", Chain(s.CreateMatchHandler(), paramsMiddleware, authMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("PUT /matches/{id}", Chain(s.UpdateMatchHandler(), paramsMiddleware, authMiddleware))
	s.Router.Handle("DELETE /matches/{id}", Chain(s.DeleteMatchHandler(), paramsMiddleware, authMiddleware))

	s.Router.Handle("GET /standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("POST /standings/announce", Chain(s.AnnounceStandingsHandler(), paramsMiddleware, authMiddleware))
	s.Router.Handle("GET /pairings", Chain(s.PairingsHandler(), paramsMiddleware))

	s.Router.Handle("POST /auth/request-otp", Chain(s.RequestOTPHandler(), paramsMiddleware))
	s.Router.Handle("POST /auth/verify-otp", Chain(s.VerifyOTPHandler(), paramsMiddleware))

	s.Router.Handle("POST /recompute", Chain(s.RecomputeHandler(), paramsMiddleware, authMiddleware))
	s.Router.Handle("POST /clear", Chain(s.ClearStoreHandler(), paramsMiddleware, authMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
