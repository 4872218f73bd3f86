package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

type followFixture struct {
	handler *FollowHandler
	follows *repositories.MemoryFollowRepository
	users   *repositories.MemoryUserRepository
}

func newFollowFixture(t *testing.T) *followFixture {
	t.Helper()
	follows := repositories.NewMemoryFollowRepository()
	users := repositories.NewMemoryUserRepository()
	require.NoError(t, users.CreateUser(&models.User{ID: 1, Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, users.CreateUser(&models.User{ID: 2, Username: "bob", Email: "bob@example.com"}))
	return &followFixture{
		handler: NewFollowHandler(follows, users),
		follows: follows,
		users:   users,
	}
}

// newTestContext builds an authenticated Echo context for /users/:id paths.
func newTestContext(method, target string, userID uint, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(paramID)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func TestFollowUser(t *testing.T) {
	f := newFollowFixture(t)
	c, rec := newTestContext(http.MethodPost, "/users/2/follow", 1, "2")

	require.NoError(t, f.handler.FollowUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	isFollowing, err := f.follows.IsFollowing(1, 2)
	require.NoError(t, err)
	assert.True(t, isFollowing)

	// Follow records exist on both sides after the first edge
	for _, id := range []uint{1, 2} {
		has, err := f.follows.HasRecord(id)
		require.NoError(t, err)
		assert.True(t, has)
	}
}

func TestFollowUserSelf(t *testing.T) {
	f := newFollowFixture(t)
	c, _ := newTestContext(http.MethodPost, "/users/1/follow", 1, "1")

	err := f.handler.FollowUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Equal(t, "You cannot follow yourself.", httpErr.Message)
}

func TestFollowUserTwice(t *testing.T) {
	f := newFollowFixture(t)
	require.NoError(t, f.follows.AddEdge(1, 2))

	c, _ := newTestContext(http.MethodPost, "/users/2/follow", 1, "2")
	err := f.handler.FollowUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Equal(t, "You are already following this user.", httpErr.Message)
}

func TestFollowUnknownUser(t *testing.T) {
	f := newFollowFixture(t)
	c, _ := newTestContext(http.MethodPost, "/users/99/follow", 1, "99")

	err := f.handler.FollowUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestFollowUnauthenticated(t *testing.T) {
	f := newFollowFixture(t)
	c, _ := newTestContext(http.MethodPost, "/users/2/follow", 0, "2")

	err := f.handler.FollowUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestUnfollowUser(t *testing.T) {
	f := newFollowFixture(t)
	require.NoError(t, f.follows.AddEdge(1, 2))

	c, rec := newTestContext(http.MethodDelete, "/users/2/follow", 1, "2")
	require.NoError(t, f.handler.UnfollowUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	isFollowing, err := f.follows.IsFollowing(1, 2)
	require.NoError(t, err)
	assert.False(t, isFollowing)
}

func TestUnfollowNotFollowed(t *testing.T) {
	f := newFollowFixture(t)
	c, _ := newTestContext(http.MethodDelete, "/users/2/follow", 1, "2")

	err := f.handler.UnfollowUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Equal(t, "You are not following this user.", httpErr.Message)
}

func TestGetFollowingUsernames(t *testing.T) {
	f := newFollowFixture(t)
	require.NoError(t, f.follows.AddEdge(1, 2))

	c, rec := newTestContext(http.MethodGet, "/users/1/following", 1, "1")
	require.NoError(t, f.handler.GetFollowing(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"bob"}, body.Data)
}

func TestGetFollowersUsernames(t *testing.T) {
	f := newFollowFixture(t)
	require.NoError(t, f.follows.AddEdge(1, 2))

	c, rec := newTestContext(http.MethodGet, "/users/2/followers", 1, "2")
	require.NoError(t, f.handler.GetFollowers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"alice"}, body.Data)
}
