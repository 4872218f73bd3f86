package models

import "time"

// Follow is one directed edge of the follow graph. A single row carries
// both sides of the relation, so an edge insert or delete is atomic and
// the following/followers views can never disagree.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowRecord marks that a user has interacted with the follow graph.
// It is created lazily on first interaction and deleted, after all edges
// referencing the user, when the user is deleted. Users without a record
// are treated as having an empty follow set.
type FollowRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}
