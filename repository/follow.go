package repository

import (
	"postboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	// Follow subscribes user to author. Following someone twice is a
	// no-op: the insert ignores the unique (user_id, author_id) conflict.
	Follow(userID, authorID uint64) error
	// Unfollow removes the subscription if present; removing a missing
	// one is not an error.
	Unfollow(userID, authorID uint64) error
	Exists(userID, authorID uint64) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(userID, authorID uint64) error {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
}

func (r *followRepository) Unfollow(userID, authorID uint64) error {
	return r.db.
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
}

func (r *followRepository) Exists(userID, authorID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}
