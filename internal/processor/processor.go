package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/metrics"
	"github.com/racketclub/courtside/internal/pubsub"
	"github.com/racketclub/courtside/internal/rating"
)

// ErrPlayerNotFound is returned when an assessment is requested for an unknown player.
var ErrPlayerNotFound = errors.New("player not found")

// ratingUpdatesTopic carries committed rating changes for downstream consumers.
const ratingUpdatesTopic = "rating-updates"

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// RecomputeAll recomputes every player's rating from scratch: each player is
// reset to their original rating and the full match history is replayed
// through the engine. The result depends only on the stored history, so
// running it twice in a row lands on the same ratings. All adjustments are
// committed in a single transaction.
//
// With dryRun set, nothing is persisted and notifications are logged instead
// of sent; the returned changes describe what a real run would commit.
func (p *Processor) RecomputeAll(dryRun bool) ([]rating.Change, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	log.Info("Starting rating recomputation", "dryRun", dryRun)

	players, err := p.store.ListPlayers(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	matches, err := p.store.AllMatches()
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}

	// The replay starts from a clean slate: every opponent is seen at their
	// original rating, not whatever the last pass left behind.
	resetRatings := make(map[int64]int, len(players))
	for _, pl := range players {
		resetRatings[pl.ID] = pl.OriginalRating
	}
	lookup := func(playerID int64) (int, bool) {
		r, ok := resetRatings[playerID]
		return r, ok
	}

	byPlayer := bucketMatches(matches)

	var adjustments []club.RatingAdjustment
	var changes []rating.Change
	for _, pl := range players {
		snapshot := pl
		snapshot.Rating = pl.OriginalRating
		snapshot.PreviousRating = nil

		res := rating.Evaluate(&snapshot, byPlayer[pl.ID], lookup)
		if !res.AutoUpdate || res.Target == pl.OriginalRating {
			continue
		}
		adjustments = append(adjustments, club.RatingAdjustment{
			PlayerID:       pl.ID,
			NewRating:      res.Target,
			PreviousRating: pl.OriginalRating,
		})
		changes = append(changes, rating.Change{
			PlayerID:   pl.ID,
			PlayerName: pl.Name,
			From:       pl.OriginalRating,
			To:         res.Target,
		})
	}

	if !dryRun {
		if err := p.store.ApplyRecomputedRatings(adjustments, time.Now().Unix()); err != nil {
			return nil, fmt.Errorf("failed to apply recomputed ratings: %w", err)
		}
	}

	p.metrics.IncRecomputeRuns()
	p.metrics.AddRatingChanges(len(changes))
	p.metrics.ObserveRecomputeDuration(time.Since(start).Seconds())

	if len(changes) > 0 {
		if err := p.notifier.SendRatingChanges(changes, dryRun); err != nil {
			log.Error("Failed to send rating change notification", "error", err)
		}
		if !dryRun {
			if err := p.pubsub.SendMessage(ratingUpdatesTopic, changes); err != nil {
				log.Error("Failed to publish rating updates", "error", err)
			}
		}
	}

	log.Info("Rating recomputation finished", "players", len(players), "matches", len(matches), "changes", len(changes))
	return changes, nil
}

// AssessPlayer runs the engine for one player against their current state and
// match history. Nothing is persisted.
func (p *Processor) AssessPlayer(id int64) (*rating.Result, error) {
	pl, err := p.store.GetPlayer(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	if pl == nil {
		return nil, ErrPlayerNotFound
	}

	matches, err := p.store.MatchesForPlayer(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for player %d: %w", id, err)
	}

	lookup, err := p.currentRatings()
	if err != nil {
		return nil, err
	}

	res := rating.Evaluate(pl, matches, lookup)
	return &res, nil
}

// Standings assesses every active player and returns them ordered by win
// rate, wins and point difference.
func (p *Processor) Standings() ([]rating.Standing, error) {
	players, err := p.store.ListPlayers(true)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	matches, err := p.store.AllMatches()
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}

	lookup, err := p.currentRatings()
	if err != nil {
		return nil, err
	}

	byPlayer := bucketMatches(matches)

	standings := make([]rating.Standing, 0, len(players))
	for i := range players {
		pl := &players[i]
		res := rating.Evaluate(pl, byPlayer[pl.ID], lookup)
		standings = append(standings, rating.Standing{
			PlayerID:   pl.ID,
			PlayerName: pl.Name,
			Rating:     pl.Rating,
			Assessment: res.Assessment,
		})
	}

	rating.SortStandings(standings)
	return standings, nil
}

func (p *Processor) currentRatings() (rating.Lookup, error) {
	players, err := p.store.ListPlayers(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	ratings := make(map[int64]int, len(players))
	for _, pl := range players {
		ratings[pl.ID] = pl.Rating
	}
	return func(playerID int64) (int, bool) {
		r, ok := ratings[playerID]
		return r, ok
	}, nil
}

// bucketMatches groups matches per participant, preserving the most recent
// first ordering of the input.
func bucketMatches(matches []*club.Match) map[int64][]*club.Match {
	byPlayer := make(map[int64][]*club.Match)
	for _, m := range matches {
		for _, id := range m.PlayerIDs() {
			byPlayer[id] = append(byPlayer[id], m)
		}
	}
	return byPlayer
}
