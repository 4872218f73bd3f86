package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	composer       *feed.Composer
	userRepository repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(composer *feed.Composer, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{
		composer:       composer,
		userRepository: userRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed/following", h.GetFollowingFeed)
	g.GET("/feed/recommended", h.GetRecommendedFeed)
}

// EnrichedPost is a post with its author's public profile attached
type EnrichedPost struct {
	models.Post
	Author models.UserCompact `json:"author"`
}

// GetFollowingFeed returns the chronological feed of posts by followed
// users
func (h *FeedHandler) GetFollowingFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	posts, err := h.composer.FollowingFeed(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": h.enrich(c.Request().Context(), posts)},
	})
}

// GetRecommendedFeed returns the scored, globally ranked feed
func (h *FeedHandler) GetRecommendedFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	posts, err := h.composer.RecommendedFeed(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": h.enrich(c.Request().Context(), posts)},
	})
}

// enrich attaches author profiles to posts. Missing authors (deleted
// users) leave a zero-valued compact profile rather than failing the
// feed.
func (h *FeedHandler) enrich(_ context.Context, posts []models.Post) []EnrichedPost {
	authors := map[uint]models.UserCompact{}
	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		author, ok := authors[p.AuthorID]
		if !ok {
			if user, err := h.userRepository.GetUserByID(p.AuthorID); err == nil {
				author = user.ToCompact()
			}
			authors[p.AuthorID] = author
		}
		enriched[i] = EnrichedPost{Post: p, Author: author}
	}
	return enriched
}
