package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

// SignalHandler handles HTTP requests for one opinion relation. The vote
// and interest APIs have the same shape; only the path segment, the two
// verb names and cache invalidation differ.
type SignalHandler struct {
	signalRepository repositories.SignalRepository
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	scores           *feed.ScoreCache // nil when the relation does not feed ranking

	basePath  string
	trueVerb  string
	falseVerb string
	label     string
}

// NewVoteHandler creates the handler for the vote relation. Vote
// mutations invalidate the recommendation score cache.
func NewVoteHandler(signalRepo repositories.SignalRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, scores *feed.ScoreCache) *SignalHandler {
	return &SignalHandler{
		signalRepository: signalRepo,
		postRepository:   postRepo,
		userRepository:   userRepo,
		scores:           scores,
		basePath:         "/votes",
		trueVerb:         "upvote",
		falseVerb:        "downvote",
		label:            "Vote",
	}
}

// NewInterestHandler creates the handler for the interest relation.
// Interest signals are stored and exposed but do not enter ranking.
func NewInterestHandler(signalRepo repositories.SignalRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *SignalHandler {
	return &SignalHandler{
		signalRepository: signalRepo,
		postRepository:   postRepo,
		userRepository:   userRepo,
		basePath:         "/interests",
		trueVerb:         "interested",
		falseVerb:        "not-interested",
		label:            "Interest",
	}
}

// RegisterSignalRoutes registers the relation's routes
func (h *SignalHandler) RegisterSignalRoutes(g *echo.Group) {
	g.PUT(h.basePath+"/:post_id/"+h.trueVerb, func(c echo.Context) error { return h.putSignal(c, true) })
	g.PUT(h.basePath+"/:post_id/"+h.falseVerb, func(c echo.Context) error { return h.putSignal(c, false) })
	g.DELETE(h.basePath+"/:post_id", h.RevokeSignal)
	g.GET(h.basePath+"/users/:id", h.GetSignalsByUser)
	g.GET(h.basePath+"/posts/:post_id", h.GetSignalsForPost)
}

// putSignal creates or overwrites the acting user's signal for a post
func (h *SignalHandler) putSignal(c echo.Context, value bool) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	// Verify post exists
	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if err := h.signalRepository.Put(currentUserID, postID, value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if h.scores != nil {
		h.scores.Invalidate(postID)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": h.label + " updated successfully"})
}

// RevokeSignal removes the acting user's signal for a post
func (h *SignalHandler) RevokeSignal(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	// The precondition check lives here, not in the store
	if _, err := h.signalRepository.Get(currentUserID, postID); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "You have not expressed an opinion on this post.")
	}

	removed, err := h.signalRepository.Remove(currentUserID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !removed {
		return echo.NewHTTPError(http.StatusForbidden, h.label+" removal failed")
	}
	if h.scores != nil {
		h.scores.Invalidate(postID)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": h.label + " removed successfully"})
}

// GetSignalsByUser returns the post IDs a user has signaled, partitioned
// by value
func (h *SignalHandler) GetSignalsByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if _, err := h.userRepository.GetUserByID(uint(userID)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	tally, err := h.signalRepository.TallyByUser(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		h.trueVerb:  tally.TruePostIDs,
		h.falseVerb: tally.FalsePostIDs,
	})
}

// GetSignalsForPost returns the usernames that signaled a post,
// partitioned by value
func (h *SignalHandler) GetSignalsForPost(c echo.Context) error {
	postID := c.Param("post_id")
	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	tally, err := h.signalRepository.TallyByItem(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	trueUsernames, err := h.userRepository.GetUsernames(tally.TrueUserIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	falseUsernames, err := h.userRepository.GetUsernames(tally.FalseUserIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		h.trueVerb:  trueUsernames,
		h.falseVerb: falseUsernames,
	})
}
