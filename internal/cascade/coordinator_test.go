package cascade

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

// failingSignalRepository wraps a working store but fails bulk removals.
type failingSignalRepository struct {
	repositories.SignalRepository
	err error
}

func (r *failingSignalRepository) RemoveAllForUser(uint) (int64, error) {
	return 0, r.err
}

func (r *failingSignalRepository) RemoveAllForItem(string) (int64, error) {
	return 0, r.err
}

func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestOnUserDeletedRemovesEverything(t *testing.T) {
	votes := repositories.NewMemorySignalRepository(models.SignalVote)
	interests := repositories.NewMemorySignalRepository(models.SignalInterest)
	follows := repositories.NewMemoryFollowRepository()
	scores := feed.NewScoreCache(votes)
	coordinator := NewCoordinator(votes, interests, follows, scores, testLogEntry())

	require.NoError(t, votes.Put(1, "p1", true))
	require.NoError(t, interests.Put(1, "p2", true))
	require.NoError(t, follows.AddEdge(1, 2))
	require.NoError(t, follows.AddEdge(3, 1))

	require.NoError(t, coordinator.OnUserDeleted(1))

	tally, err := votes.TallyByUser(1)
	require.NoError(t, err)
	assert.Empty(t, tally.TruePostIDs)

	tally, err = interests.TallyByUser(1)
	require.NoError(t, err)
	assert.Empty(t, tally.TruePostIDs)

	following, err := follows.Following(1)
	require.NoError(t, err)
	assert.Empty(t, following)

	followers, err := follows.Followers(1)
	require.NoError(t, err)
	assert.Empty(t, followers)

	// User 3's outgoing view no longer references the deleted user
	following, err = follows.Following(3)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestOnUserDeletedIsBestEffort(t *testing.T) {
	boom := errors.New("vote store unavailable")
	votes := &failingSignalRepository{
		SignalRepository: repositories.NewMemorySignalRepository(models.SignalVote),
		err:              boom,
	}
	interests := repositories.NewMemorySignalRepository(models.SignalInterest)
	follows := repositories.NewMemoryFollowRepository()
	scores := feed.NewScoreCache(votes)
	coordinator := NewCoordinator(votes, interests, follows, scores, testLogEntry())

	require.NoError(t, interests.Put(1, "p1", true))
	require.NoError(t, follows.AddEdge(1, 2))

	err := coordinator.OnUserDeleted(1)
	require.Error(t, err)

	var partial *repositories.PartialCascadeError
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Errs, 1)
	assert.ErrorIs(t, partial.Errs[0], boom)

	// The failed step did not block the later ones
	tally, tallyErr := interests.TallyByUser(1)
	require.NoError(t, tallyErr)
	assert.Empty(t, tally.TruePostIDs)

	following, followErr := follows.Following(1)
	require.NoError(t, followErr)
	assert.Empty(t, following)
}

func TestOnPostDeletedRemovesSignalsAndInvalidates(t *testing.T) {
	votes := repositories.NewMemorySignalRepository(models.SignalVote)
	interests := repositories.NewMemorySignalRepository(models.SignalInterest)
	follows := repositories.NewMemoryFollowRepository()
	scores := feed.NewScoreCache(votes)
	coordinator := NewCoordinator(votes, interests, follows, scores, testLogEntry())

	require.NoError(t, votes.Put(1, "p1", true))
	require.NoError(t, interests.Put(2, "p1", true))
	require.NoError(t, follows.AddEdge(1, 2))

	// Prime the cache so the delete has something to invalidate
	score, err := scores.VoteScore("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)

	require.NoError(t, coordinator.OnPostDeleted("p1"))

	tally, err := votes.TallyByItem("p1")
	require.NoError(t, err)
	assert.Empty(t, tally.TrueUserIDs)

	tally, err = interests.TallyByItem("p1")
	require.NoError(t, err)
	assert.Empty(t, tally.TrueUserIDs)

	score, err = scores.VoteScore("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), score)

	// The follow graph is untouched by post deletion
	isFollowing, err := follows.IsFollowing(1, 2)
	require.NoError(t, err)
	assert.True(t, isFollowing)
}

func TestOnPostDeletedCollectsFailures(t *testing.T) {
	boom := errors.New("interest store unavailable")
	votes := repositories.NewMemorySignalRepository(models.SignalVote)
	interests := &failingSignalRepository{
		SignalRepository: repositories.NewMemorySignalRepository(models.SignalInterest),
		err:              boom,
	}
	scores := feed.NewScoreCache(votes)
	coordinator := NewCoordinator(votes, interests, repositories.NewMemoryFollowRepository(), scores, testLogEntry())

	require.NoError(t, votes.Put(1, "p1", true))

	err := coordinator.OnPostDeleted("p1")
	var partial *repositories.PartialCascadeError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, partial.Errs[0], boom)

	// Vote removal still went through
	up, countErr := votes.CountTrue("p1")
	require.NoError(t, countErr)
	assert.Equal(t, int64(0), up)
}
