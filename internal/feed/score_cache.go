package feed

import (
	"sync"

	"github.com/fritterhq/fritter/backend/internal/repositories"
)

// ScoreCache is a derived, rebuildable cache of net vote scores keyed by
// post ID. Entries are computed lazily from the vote store and must be
// invalidated on every vote mutation; a stale entry is a bug in the
// caller, not in the cache. The follow boost is per-requester and never
// cached.
type ScoreCache struct {
	votes repositories.SignalRepository

	mu     sync.RWMutex
	scores map[string]int64
}

// NewScoreCache creates a cache over the vote relation
func NewScoreCache(votes repositories.SignalRepository) *ScoreCache {
	return &ScoreCache{votes: votes, scores: map[string]int64{}}
}

// VoteScore returns upvotes minus downvotes for the post, rebuilding the
// entry from the vote store on a miss.
func (c *ScoreCache) VoteScore(postID string) (int64, error) {
	c.mu.RLock()
	score, ok := c.scores[postID]
	c.mu.RUnlock()
	if ok {
		return score, nil
	}

	up, err := c.votes.CountTrue(postID)
	if err != nil {
		return 0, err
	}
	down, err := c.votes.CountFalse(postID)
	if err != nil {
		return 0, err
	}
	score = up - down

	c.mu.Lock()
	c.scores[postID] = score
	c.mu.Unlock()
	return score, nil
}

// Invalidate drops the entry for one post.
func (c *ScoreCache) Invalidate(postID string) {
	c.mu.Lock()
	delete(c.scores, postID)
	c.mu.Unlock()
}

// InvalidateAll drops every entry. Used after bulk signal removal, where
// the set of affected posts is not known up front.
func (c *ScoreCache) InvalidateAll() {
	c.mu.Lock()
	c.scores = map[string]int64{}
	c.mu.Unlock()
}
