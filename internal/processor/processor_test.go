package processor_test

import (
	"errors"
	"testing"

	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/database"
	"github.com/racketclub/courtside/internal/metrics"
	"github.com/racketclub/courtside/internal/notifier"
	"github.com/racketclub/courtside/internal/processor"
	"github.com/racketclub/courtside/internal/pubsub"
	"github.com/racketclub/courtside/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    club.ClubStore
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.Mock
	proc     *processor.Processor
	teardown func()
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	store := club.New(db)
	notifierMock := notifier.NewMock()
	metricsMock := metrics.NewMock()
	pubsubMock := pubsub.NewMock("test-project")

	return &testEnv{
		store:    store,
		notifier: notifierMock,
		metrics:  metricsMock,
		pubsub:   pubsubMock,
		proc:     processor.New(store, notifierMock, metricsMock, pubsubMock),
		teardown: dbTeardown,
	}
}

// fourPlayers creates four players at the given rating. The first two always
// play as team A, the last two as team B.
func fourPlayers(t *testing.T, store club.ClubStore, ratingVal int) []int64 {
	t.Helper()

	ids := make([]int64, 4)
	for i, name := range []string{"A1", "A2", "B1", "B2"} {
		p, err := store.CreatePlayer(name, ratingVal, nil)
		require.NoError(t, err)
		ids[i] = p.ID
	}
	return ids
}

// teamAWins records a match team A wins with no point margin, so the rating
// gap is the only scoring input.
func teamAWins(t *testing.T, store club.ClubStore, ids []int64, playedAt int64) {
	t.Helper()

	require.NoError(t, store.CreateMatch(&club.Match{
		TeamAPlayer1: ids[0], TeamAPlayer2: ids[1],
		TeamBPlayer1: ids[2], TeamBPlayer2: ids[3],
		TeamAScore: 21, TeamBScore: 21,
		WinningTeam: club.TeamA,
		PlayedAt:    playedAt,
	}))
}

func TestRecomputeAllAutoUpdates(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	for i := 0; i < 5; i++ {
		teamAWins(t, env.store, ids, int64(1000+i))
	}

	changes, err := env.proc.RecomputeAll(false)
	require.NoError(t, err)
	require.Len(t, changes, 4)

	byID := make(map[int64]rating.Change)
	for _, c := range changes {
		byID[c.PlayerID] = c
	}
	assert.Equal(t, 6, byID[ids[0]].To, "five straight wins against equals moves the rating up one step")
	assert.Equal(t, 5, byID[ids[0]].From)
	assert.Equal(t, 4, byID[ids[2]].To, "five straight losses moves the rating down one step")

	winner, err := env.store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 6, winner.Rating)
	require.NotNil(t, winner.PreviousRating)
	assert.Equal(t, 5, *winner.PreviousRating)
	assert.NotNil(t, winner.LastRatingUpdate)

	loser, err := env.store.GetPlayer(ids[2])
	require.NoError(t, err)
	assert.Equal(t, 4, loser.Rating)

	require.Len(t, env.notifier.SendRatingChangesCalls, 1)
	assert.Len(t, env.notifier.SendRatingChangesCalls[0], 4)

	sent := env.pubsub.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "rating-updates", sent[0].Topic)

	assert.Equal(t, 1, env.metrics.RecomputeRuns())
	assert.Equal(t, 4, env.metrics.RatingChanges())
}

func TestRecomputeAllIsIdempotent(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	for i := 0; i < 5; i++ {
		teamAWins(t, env.store, ids, int64(1000+i))
	}

	first, err := env.proc.RecomputeAll(false)
	require.NoError(t, err)
	second, err := env.proc.RecomputeAll(false)
	require.NoError(t, err)

	assert.Equal(t, first, second, "recomputation depends only on the stored history")

	winner, err := env.store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 6, winner.Rating, "a second pass must not compound the adjustment")
}

func TestRecomputeSuggestionWindowDoesNotMutate(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	for i := 0; i < 3; i++ {
		teamAWins(t, env.store, ids, int64(1000+i))
	}

	changes, err := env.proc.RecomputeAll(false)
	require.NoError(t, err)
	assert.Empty(t, changes, "three matches only warrant a suggestion, never a committed change")
	assert.Empty(t, env.notifier.SendRatingChangesCalls)

	winner, err := env.store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Rating)

	res, err := env.proc.AssessPlayer(ids[0])
	require.NoError(t, err)
	require.NotNil(t, res.SuggestedRating)
	assert.Equal(t, 6, *res.SuggestedRating)
	assert.Equal(t, rating.DirectionIncrease, res.SuggestionDirection)
}

func TestRecomputeDryRunDoesNotPersist(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	for i := 0; i < 5; i++ {
		teamAWins(t, env.store, ids, int64(1000+i))
	}

	changes, err := env.proc.RecomputeAll(true)
	require.NoError(t, err)
	assert.Len(t, changes, 4, "a dry run still reports what would change")

	winner, err := env.store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Rating, "a dry run must not touch stored ratings")

	assert.Empty(t, env.pubsub.SentMessages(), "a dry run must not publish events")
}

type failingStore struct {
	processor.Store
}

func (f *failingStore) ApplyRecomputedRatings(adjustments []club.RatingAdjustment, ts int64) error {
	return errors.New("disk full")
}

func TestRecomputeFailureSendsNothing(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	for i := 0; i < 5; i++ {
		teamAWins(t, env.store, ids, int64(1000+i))
	}

	proc := processor.New(&failingStore{Store: env.store}, env.notifier, env.metrics, env.pubsub)

	_, err := proc.RecomputeAll(false)
	require.Error(t, err)

	assert.Empty(t, env.notifier.SendRatingChangesCalls, "nothing is announced when the commit fails")
	assert.Empty(t, env.pubsub.SentMessages())

	winner, err := env.store.GetPlayer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Rating)
}

func TestAssessPlayerNotFound(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	_, err := env.proc.AssessPlayer(999)
	assert.ErrorIs(t, err, processor.ErrPlayerNotFound)
}

func TestAssessPlayerNoMatches(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	p, err := env.store.CreatePlayer("Alice", 5, nil)
	require.NoError(t, err)

	res, err := env.proc.AssessPlayer(p.ID)
	require.NoError(t, err)
	assert.Zero(t, res.TotalMatches)
	assert.Nil(t, res.SuggestedRating)
	assert.False(t, res.AutoUpdate)
}

func TestStandingsOrdering(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	for i := 0; i < 2; i++ {
		teamAWins(t, env.store, ids, int64(1000+i))
	}

	standings, err := env.proc.Standings()
	require.NoError(t, err)
	require.Len(t, standings, 4)

	// Winners first, losers last; each pair ties internally.
	assert.Equal(t, 100, standings[0].WinRate)
	assert.Equal(t, 100, standings[1].WinRate)
	assert.Equal(t, 0, standings[2].WinRate)
	assert.Equal(t, 0, standings[3].WinRate)
}

func TestStandingsExcludesInactivePlayers(t *testing.T) {
	env := setup(t)
	defer env.teardown()

	ids := fourPlayers(t, env.store, 5)
	require.NoError(t, env.store.UpdatePlayer(ids[3], "B2", false))

	standings, err := env.proc.Standings()
	require.NoError(t, err)
	assert.Len(t, standings, 3)
}
