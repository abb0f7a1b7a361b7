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

type Server struct {
	Store          club.ClubStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	OTP            *auth.Store
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
