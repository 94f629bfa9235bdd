package repository

import (
	"postboard/models"

	"gorm.io/gorm"
)

// Listings are always newest first by creation time; the id is a tie
// breaker for posts created within the same second.
const postOrder = "created_at DESC, id DESC"

type PostRepository interface {
	Create(post *models.Post) error
	// Update rewrites the editable fields only. The id, author and
	// creation time never change.
	Update(post *models.Post) error
	ByID(id uint64) (*models.Post, error)
	ListAll() ([]models.Post, error)
	ListByGroup(groupID uint64) ([]models.Post, error)
	ListByAuthor(userID uint64) ([]models.Post, error)
	// ListFeed returns posts authored by users the given user follows.
	ListFeed(userID uint64) ([]models.Post, error)
	CountByAuthor(userID uint64) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) Update(post *models.Post) error {
	return r.db.Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image_path", "updated_at").
		Updates(map[string]interface{}{
			"text":       post.Text,
			"group_id":   post.GroupID,
			"image_path": post.ImagePath,
		}).Error
}

func (r *postRepository) ByID(id uint64) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("User").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListAll() ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Preload("Group").Order(postOrder).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByGroup(groupID uint64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Preload("Group").
		Where("group_id = ?", groupID).
		Order(postOrder).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(userID uint64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Preload("Group").
		Where("user_id = ?", userID).
		Order(postOrder).Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListFeed(userID uint64) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Preload("Group").
		Where("user_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)).
		Order(postOrder).Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthor(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
