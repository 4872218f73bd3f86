package feed

import (
	"context"
	"sort"

	"github.com/fritterhq/fritter/backend/internal/models"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

// followBoost is added to a post's score when the requester follows its
// author.
const followBoost = 10

// Composer builds the two read-side feeds. It holds no state of its own:
// both feeds are pure functions of the follow graph, the vote signals and
// the post catalog at read time. Interest signals are stored and
// queryable but intentionally not part of the ranking.
type Composer struct {
	posts   repositories.PostRepository
	follows repositories.FollowRepository
	scores  *ScoreCache
}

// NewComposer creates a new Composer
func NewComposer(posts repositories.PostRepository, follows repositories.FollowRepository, scores *ScoreCache) *Composer {
	return &Composer{posts: posts, follows: follows, scores: scores}
}

// FollowingFeed returns the posts authored by users the requester
// follows, newest first. Ties on creation time are broken by ascending
// post ID so the order is reproducible. A user who never interacted with
// the graph gets an empty feed.
func (c *Composer) FollowingFeed(ctx context.Context, userID uint) ([]models.Post, error) {
	following, err := c.follows.Following(userID)
	if err != nil {
		return nil, err
	}
	posts, err := c.posts.GetPostsByAuthors(ctx, following)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

// RecommendedFeed scores the full catalog for the requester and returns
// it best first:
//
//	score(p) = upvotes(p) - downvotes(p) + 10 if p's author is followed
//
// Ties are broken by ascending post ID. A user with no follow record gets
// a pure vote-score ranking.
func (c *Composer) RecommendedFeed(ctx context.Context, userID uint) ([]models.Post, error) {
	posts, err := c.posts.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	following, err := c.follows.Following(userID)
	if err != nil {
		return nil, err
	}
	followed := make(map[uint]bool, len(following))
	for _, id := range following {
		followed[id] = true
	}

	scores := make(map[string]int64, len(posts))
	for _, post := range posts {
		score, err := c.scores.VoteScore(post.ID)
		if err != nil {
			return nil, err
		}
		if followed[post.AuthorID] {
			score += followBoost
		}
		scores[post.ID] = score
	}

	sort.Slice(posts, func(i, j int) bool {
		if scores[posts[i].ID] != scores[posts[j].ID] {
			return scores[posts[i].ID] > scores[posts[j].ID]
		}
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}
