package models

import "time"

// SignalKind selects which opinion relation a Signal belongs to.
type SignalKind string

const (
	SignalVote     SignalKind = "vote"
	SignalInterest SignalKind = "interest"
)

// Signal is a per-user, per-post boolean opinion in one relation.
// For the vote relation Value true means upvote; for the interest
// relation it means interested.
type Signal struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Kind      SignalKind `json:"kind" gorm:"uniqueIndex:idx_kind_user_post;index:idx_kind_post"`
	UserID    uint       `json:"user_id" gorm:"uniqueIndex:idx_kind_user_post"`
	PostID    string     `json:"post_id" gorm:"uniqueIndex:idx_kind_user_post;index:idx_kind_post"` // Post catalog ID (MongoDB ObjectID as string)
	Value     bool       `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserTally partitions one user's signals in a relation by value.
type UserTally struct {
	TruePostIDs  []string `json:"true_post_ids"`
	FalsePostIDs []string `json:"false_post_ids"`
}

// PostTally partitions one post's signals in a relation by value.
type PostTally struct {
	TrueUserIDs  []uint `json:"true_user_ids"`
	FalseUserIDs []uint `json:"false_user_ids"`
}
