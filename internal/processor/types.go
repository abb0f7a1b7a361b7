package processor

import (
	"sync"

	"github.com/racketclub/courtside/internal/metrics"
	"github.com/racketclub/courtside/internal/pubsub"
)

// Processor orchestrates rating recomputation, player assessments and
// standings. The mutex serializes recomputation passes so concurrent match
// mutations cannot interleave partial rating states.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	mu       sync.Mutex
}
