package repository

import (
	"postboard/models"

	"gorm.io/gorm"
)

type GroupRepository interface {
	Create(group *models.Group) error
	ByID(id uint64) (*models.Group, error)
	BySlug(slug string) (*models.Group, error)
	List() ([]models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *groupRepository) ByID(id uint64) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) BySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Order("title ASC").Find(&groups).Error
	return groups, err
}
