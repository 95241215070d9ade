package repository

import (
	"learning_system_backend/internal/model"

	"gorm.io/gorm"
)

type SyllabusRepository struct {
	DB *gorm.DB
}

func NewSyllabusRepository(db *gorm.DB) *SyllabusRepository {
	return &SyllabusRepository{DB: db}
}

func (r *SyllabusRepository) Create(item *model.SyllabusItem) error {
	return r.DB.Create(item).Error
}

func (r *SyllabusRepository) FindByID(id uint) (*model.SyllabusItem, error) {
	var item model.SyllabusItem
	err := r.DB.First(&item, id).Error
	return &item, err
}

func (r *SyllabusRepository) Update(item *model.SyllabusItem) error {
	return r.DB.Save(item).Error
}

func (r *SyllabusRepository) List(classID string) ([]model.SyllabusItem, error) {
	var items []model.SyllabusItem
	query := r.DB.Model(&model.SyllabusItem{})
	if classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	err := query.Order("due_date asc, id asc").Find(&items).Error
	return items, err
}

// Topics returns the syllabus topics of a class and subject, used as AI context.
func (r *SyllabusRepository) Topics(classID, subject string) ([]string, error) {
	var topics []string
	query := r.DB.Model(&model.SyllabusItem{})
	if classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	err := query.Order("id asc").Pluck("topic", &topics).Error
	return topics, err
}
