package cascade

import (
	"github.com/sirupsen/logrus"

	"github.com/fritterhq/fritter/backend/internal/feed"
	"github.com/fritterhq/fritter/backend/internal/repositories"
)

// Coordinator orchestrates multi-relation cleanup when a user or a post
// is deleted. Cascades are best-effort: completed steps are never rolled
// back, failures are collected and surfaced as a
// *repositories.PartialCascadeError, and deletion is never blocked by an
// inconsistent edge or signal.
type Coordinator struct {
	votes     repositories.SignalRepository
	interests repositories.SignalRepository
	follows   repositories.FollowRepository
	scores    *feed.ScoreCache
	log       *logrus.Entry
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	votes repositories.SignalRepository,
	interests repositories.SignalRepository,
	follows repositories.FollowRepository,
	scores *feed.ScoreCache,
	log *logrus.Entry,
) *Coordinator {
	return &Coordinator{
		votes:     votes,
		interests: interests,
		follows:   follows,
		scores:    scores,
		log:       log,
	}
}

// OnUserDeleted removes the user's vote signals, then interest signals,
// then every follow edge referencing the user plus their follow record.
// The three steps touch disjoint storage; the order only isolates
// failures. The caller owns deleting the user's posts and the user
// record afterwards.
func (c *Coordinator) OnUserDeleted(userID uint) error {
	var failed []error

	if _, err := c.votes.RemoveAllForUser(userID); err != nil {
		failed = append(failed, err)
	}
	if _, err := c.interests.RemoveAllForUser(userID); err != nil {
		failed = append(failed, err)
	}
	if err := c.follows.RemoveAllReferences(userID); err != nil {
		if partial, ok := err.(*repositories.PartialCascadeError); ok {
			failed = append(failed, partial.Errs...)
		} else {
			failed = append(failed, err)
		}
	}

	// Removed votes may touch any number of posts.
	c.scores.InvalidateAll()

	if len(failed) > 0 {
		err := &repositories.PartialCascadeError{Errs: failed}
		c.log.WithFields(logrus.Fields{
			"user_id":      userID,
			"failed_steps": len(failed),
		}).Warn("user deletion cascade left residue: ", err)
		return err
	}
	return nil
}

// OnPostDeleted removes the vote and interest signals keyed by the post.
// The follow graph is untouched.
func (c *Coordinator) OnPostDeleted(postID string) error {
	var failed []error

	if _, err := c.votes.RemoveAllForItem(postID); err != nil {
		failed = append(failed, err)
	}
	if _, err := c.interests.RemoveAllForItem(postID); err != nil {
		failed = append(failed, err)
	}

	c.scores.Invalidate(postID)

	if len(failed) > 0 {
		err := &repositories.PartialCascadeError{Errs: failed}
		c.log.WithFields(logrus.Fields{
			"post_id":      postID,
			"failed_steps": len(failed),
		}).Warn("post deletion cascade left residue: ", err)
		return err
	}
	return nil
}
