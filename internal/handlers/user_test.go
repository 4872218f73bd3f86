package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterhq/fritter/backend/internal/cascade"
	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

type userFixture struct {
	handler   *UserHandler
	users     *repositories.MemoryUserRepository
	posts     *repositories.MemoryPostRepository
	follows   *repositories.MemoryFollowRepository
	votes     *repositories.MemorySignalRepository
	interests *repositories.MemorySignalRepository
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	posts := repositories.NewMemoryPostRepository()
	follows := repositories.NewMemoryFollowRepository()
	votes := repositories.NewMemorySignalRepository(models.SignalVote)
	interests := repositories.NewMemorySignalRepository(models.SignalInterest)
	require.NoError(t, users.CreateUser(&models.User{ID: 1, Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, users.CreateUser(&models.User{ID: 2, Username: "bob", Email: "bob@example.com"}))

	log := logrus.New()
	log.SetOutput(io.Discard)
	scores := feed.NewScoreCache(votes)
	coordinator := cascade.NewCoordinator(votes, interests, follows, scores, logrus.NewEntry(log))
	return &userFixture{
		handler:   NewUserHandler(users, posts, coordinator),
		users:     users,
		posts:     posts,
		follows:   follows,
		votes:     votes,
		interests: interests,
	}
}

func TestDeleteAccountCascadesSignalsOnOwnPosts(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	// Alice authors a post; bob votes on it and marks interest
	post := &models.Post{AuthorID: 1, Content: "alice's post"}
	require.NoError(t, f.posts.CreatePost(ctx, post))
	require.NoError(t, f.votes.Put(2, post.ID, true))
	require.NoError(t, f.interests.Put(2, post.ID, true))

	// Bob's vote on someone else's post must survive
	other := &models.Post{AuthorID: 2, Content: "bob's post"}
	require.NoError(t, f.posts.CreatePost(ctx, other))
	require.NoError(t, f.votes.Put(2, other.ID, true))

	c, rec := newFeedContext("/profile", 1)
	require.NoError(t, f.handler.DeleteUser(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Bob's signals keyed by the deleted post went with it
	voteTally, err := f.votes.TallyByItem(post.ID)
	require.NoError(t, err)
	assert.Empty(t, voteTally.TrueUserIDs)
	assert.Empty(t, voteTally.FalseUserIDs)

	interestTally, err := f.interests.TallyByItem(post.ID)
	require.NoError(t, err)
	assert.Empty(t, interestTally.TrueUserIDs)

	bobTally, err := f.votes.TallyByUser(2)
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID}, bobTally.TruePostIDs, "signals on other authors' posts survive")

	// Alice's posts and record are gone
	_, err = f.posts.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = f.users.GetUserByID(1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteAccountRemovesOwnSignalsAndEdges(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	post := &models.Post{AuthorID: 2, Content: "bob's post"}
	require.NoError(t, f.posts.CreatePost(ctx, post))
	require.NoError(t, f.votes.Put(1, post.ID, true))
	require.NoError(t, f.follows.AddEdge(1, 2))
	require.NoError(t, f.follows.AddEdge(2, 1))

	c, rec := newFeedContext("/profile", 1)
	require.NoError(t, f.handler.DeleteUser(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	tally, err := f.votes.TallyByItem(post.ID)
	require.NoError(t, err)
	assert.Empty(t, tally.TrueUserIDs)

	following, err := f.follows.Following(2)
	require.NoError(t, err)
	assert.Empty(t, following)

	// Bob's post is untouched by alice's deletion
	_, err = f.posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
}
