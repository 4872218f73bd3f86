package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fritterhq/fritter/backend/internal/models"
)

// SignalRepository defines the store for one opinion relation. The same
// contract backs both relations; a repository instance is bound to a
// single models.SignalKind at construction.
type SignalRepository interface {
	// Kind reports which relation this repository holds.
	Kind() models.SignalKind
	// Get returns the signal for (userID, postID), or ErrNotFound.
	Get(userID uint, postID string) (*models.Signal, error)
	// Put creates or overwrites the signal. Idempotent under repeated
	// identical calls; never fails on duplicates.
	Put(userID uint, postID string, value bool) error
	// Remove deletes the signal and reports whether one existed.
	Remove(userID uint, postID string) (bool, error)
	// TallyByUser partitions all of the user's signals by value.
	TallyByUser(userID uint) (*models.UserTally, error)
	// TallyByItem partitions all of the post's signals by value.
	TallyByItem(postID string) (*models.PostTally, error)
	CountTrue(postID string) (int64, error)
	CountFalse(postID string) (int64, error)
	// RemoveAllForUser and RemoveAllForItem are cascade primitives; only
	// the cascade coordinator calls them. Both return the removed count.
	RemoveAllForUser(userID uint) (int64, error)
	RemoveAllForItem(postID string) (int64, error)
}

// PostgresSignalRepository implements SignalRepository for PostgreSQL
type PostgresSignalRepository struct {
	db   *gorm.DB
	kind models.SignalKind
}

// NewPostgresSignalRepository creates a repository bound to one relation kind
func NewPostgresSignalRepository(db *gorm.DB, kind models.SignalKind) *PostgresSignalRepository {
	return &PostgresSignalRepository{db: db, kind: kind}
}

func (r *PostgresSignalRepository) Kind() models.SignalKind {
	return r.kind
}

func (r *PostgresSignalRepository) Get(userID uint, postID string) (*models.Signal, error) {
	var signal models.Signal
	err := r.db.Where("kind = ? AND user_id = ? AND post_id = ?", r.kind, userID, postID).First(&signal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get signal")
	}
	return &signal, nil
}

func (r *PostgresSignalRepository) Put(userID uint, postID string, value bool) error {
	signal := models.Signal{
		Kind:   r.kind,
		UserID: userID,
		PostID: postID,
		Value:  value,
	}
	// Single-statement upsert keeps the put linearizable per key.
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&signal).Error
	return errors.Wrap(err, "put signal")
}

func (r *PostgresSignalRepository) Remove(userID uint, postID string) (bool, error) {
	res := r.db.Where("kind = ? AND user_id = ? AND post_id = ?", r.kind, userID, postID).Delete(&models.Signal{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "remove signal")
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresSignalRepository) TallyByUser(userID uint) (*models.UserTally, error) {
	var signals []models.Signal
	if err := r.db.Where("kind = ? AND user_id = ?", r.kind, userID).Find(&signals).Error; err != nil {
		return nil, errors.Wrap(err, "tally signals by user")
	}
	tally := &models.UserTally{TruePostIDs: []string{}, FalsePostIDs: []string{}}
	for _, s := range signals {
		if s.Value {
			tally.TruePostIDs = append(tally.TruePostIDs, s.PostID)
		} else {
			tally.FalsePostIDs = append(tally.FalsePostIDs, s.PostID)
		}
	}
	return tally, nil
}

func (r *PostgresSignalRepository) TallyByItem(postID string) (*models.PostTally, error) {
	var signals []models.Signal
	if err := r.db.Where("kind = ? AND post_id = ?", r.kind, postID).Find(&signals).Error; err != nil {
		return nil, errors.Wrap(err, "tally signals by item")
	}
	tally := &models.PostTally{TrueUserIDs: []uint{}, FalseUserIDs: []uint{}}
	for _, s := range signals {
		if s.Value {
			tally.TrueUserIDs = append(tally.TrueUserIDs, s.UserID)
		} else {
			tally.FalseUserIDs = append(tally.FalseUserIDs, s.UserID)
		}
	}
	return tally, nil
}

func (r *PostgresSignalRepository) CountTrue(postID string) (int64, error) {
	return r.countByValue(postID, true)
}

func (r *PostgresSignalRepository) CountFalse(postID string) (int64, error) {
	return r.countByValue(postID, false)
}

// countByValue is served by the (kind, post_id) index; called once per
// candidate post per feed request.
func (r *PostgresSignalRepository) countByValue(postID string, value bool) (int64, error) {
	var count int64
	err := r.db.Model(&models.Signal{}).
		Where("kind = ? AND post_id = ? AND value = ?", r.kind, postID, value).
		Count(&count).Error
	return count, errors.Wrap(err, "count signals")
}

func (r *PostgresSignalRepository) RemoveAllForUser(userID uint) (int64, error) {
	res := r.db.Where("kind = ? AND user_id = ?", r.kind, userID).Delete(&models.Signal{})
	return res.RowsAffected, errors.Wrap(res.Error, "remove signals for user")
}

func (r *PostgresSignalRepository) RemoveAllForItem(postID string) (int64, error) {
	res := r.db.Where("kind = ? AND post_id = ?", r.kind, postID).Delete(&models.Signal{})
	return res.RowsAffected, errors.Wrap(res.Error, "remove signals for item")
}
