package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

type feedFixture struct {
	handler *FeedHandler
	posts   *repositories.MemoryPostRepository
	follows *repositories.MemoryFollowRepository
	votes   *repositories.MemorySignalRepository
	users   *repositories.MemoryUserRepository
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	posts := repositories.NewMemoryPostRepository()
	follows := repositories.NewMemoryFollowRepository()
	votes := repositories.NewMemorySignalRepository(models.SignalVote)
	users := repositories.NewMemoryUserRepository()
	require.NoError(t, users.CreateUser(&models.User{ID: 1, Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, users.CreateUser(&models.User{ID: 2, Username: "bob", Email: "bob@example.com"}))

	composer := feed.NewComposer(posts, follows, feed.NewScoreCache(votes))
	return &feedFixture{
		handler: NewFeedHandler(composer, users),
		posts:   posts,
		follows: follows,
		votes:   votes,
		users:   users,
	}
}

type feedResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Posts []EnrichedPost `json:"posts"`
	} `json:"data"`
}

func newFeedContext(target string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func TestGetFollowingFeedEnrichesAuthors(t *testing.T) {
	f := newFeedFixture(t)
	require.NoError(t, f.follows.AddEdge(1, 2))
	require.NoError(t, f.posts.CreatePost(context.Background(), &models.Post{
		ID: "p1", AuthorID: 2, Content: "hi", CreatedAt: time.Now(),
	}))

	c, rec := newFeedContext("/feed/following", 1)
	require.NoError(t, f.handler.GetFollowingFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Posts, 1)
	assert.Equal(t, "p1", body.Data.Posts[0].ID)
	assert.Equal(t, "bob", body.Data.Posts[0].Author.Username)
}

func TestGetFollowingFeedEmpty(t *testing.T) {
	f := newFeedFixture(t)
	require.NoError(t, f.posts.CreatePost(context.Background(), &models.Post{
		ID: "p1", AuthorID: 2, Content: "hi", CreatedAt: time.Now(),
	}))

	c, rec := newFeedContext("/feed/following", 1)
	require.NoError(t, f.handler.GetFollowingFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data.Posts)
}

func TestGetRecommendedFeedToleratesDeletedAuthor(t *testing.T) {
	f := newFeedFixture(t)
	require.NoError(t, f.posts.CreatePost(context.Background(), &models.Post{
		ID: "p1", AuthorID: 2, Content: "orphaned", CreatedAt: time.Now(),
	}))
	require.NoError(t, f.users.DeleteUser(2))

	c, rec := newFeedContext("/feed/recommended", 1)
	require.NoError(t, f.handler.GetRecommendedFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Posts, 1)
	assert.Empty(t, body.Data.Posts[0].Author.Username)
}

func TestFeedRequiresAuthentication(t *testing.T) {
	f := newFeedFixture(t)

	for _, fn := range []func(echo.Context) error{f.handler.GetFollowingFeed, f.handler.GetRecommendedFeed} {
		c, _ := newFeedContext("/feed", 0)
		err := fn(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}
}
