package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fritterhq/fritter/backend/internal/models"
)

// FollowRepository defines the store for the bidirectional follow graph.
// Edges live in a single table keyed by (follower, following), so each
// edge mutation is a single-row write and the following/followers views
// stay mutually consistent by construction.
type FollowRepository interface {
	// EnsureRecord idempotently creates an empty FollowRecord. Callers
	// must ensure records exist for both sides before edge operations.
	EnsureRecord(userID uint) error
	HasRecord(userID uint) (bool, error)
	// AddEdge inserts the directed edge follower -> followee. Fails with
	// ErrSelfFollow on a self-loop and ErrAlreadyFollowing on a duplicate.
	AddEdge(followerID, followeeID uint) error
	// RemoveEdge deletes the edge, failing with ErrNotFollowing if absent.
	RemoveEdge(followerID, followeeID uint) error
	IsFollowing(followerID, followeeID uint) (bool, error)
	Following(userID uint) ([]uint, error)
	Followers(userID uint) ([]uint, error)
	// RemoveAllReferences removes every edge touching the user, then the
	// user's FollowRecord. Best-effort: the record is deleted even when
	// edge removal fails, and the partial failure is returned as a
	// *PartialCascadeError.
	RemoveAllReferences(userID uint) error
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) EnsureRecord(userID uint) error {
	record := models.FollowRecord{UserID: userID}
	err := r.db.Where("user_id = ?", userID).FirstOrCreate(&record).Error
	return errors.Wrap(err, "ensure follow record")
}

func (r *PostgresFollowRepository) HasRecord(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.FollowRecord{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check follow record")
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) AddEdge(followerID, followeeID uint) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	// Single-statement insert: concurrent duplicates land on the unique
	// index, and the loser sees zero affected rows instead of an error.
	follow := models.Follow{FollowerID: followerID, FollowingID: followeeID}
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(&follow)
	if res.Error != nil {
		return errors.Wrap(res.Error, "add follow edge")
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyFollowing
	}
	return nil
}

func (r *PostgresFollowRepository) RemoveEdge(followerID, followeeID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followeeID).Delete(&models.Follow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "remove follow edge")
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followeeID).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check follow edge")
	}
	return count > 0, nil
}

// Following returns the set of users userID follows. A user without a
// FollowRecord simply has no edges; the result is an empty set, not an
// error.
func (r *PostgresFollowRepository) Following(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, errors.Wrap(err, "list following")
}

func (r *PostgresFollowRepository) Followers(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, errors.Wrap(err, "list followers")
}

func (r *PostgresFollowRepository) RemoveAllReferences(userID uint) error {
	var failed []error

	followers, err := r.Followers(userID)
	if err != nil {
		failed = append(failed, err)
	}
	for _, followerID := range followers {
		if err := r.RemoveEdge(followerID, userID); err != nil {
			failed = append(failed, err)
		}
	}

	following, err := r.Following(userID)
	if err != nil {
		failed = append(failed, err)
	}
	for _, followeeID := range following {
		if err := r.RemoveEdge(userID, followeeID); err != nil {
			failed = append(failed, err)
		}
	}

	// The record goes away regardless of edge failures.
	if err := r.db.Where("user_id = ?", userID).Delete(&models.FollowRecord{}).Error; err != nil {
		failed = append(failed, errors.Wrap(err, "delete follow record"))
	}

	if len(failed) > 0 {
		return &PartialCascadeError{Errs: failed}
	}
	return nil
}
