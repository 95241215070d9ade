package repository

import (
	"learning_system_backend/internal/model"

	"gorm.io/gorm"
)

type ChangeRequestRepository struct {
	DB *gorm.DB
}

func NewChangeRequestRepository(db *gorm.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{DB: db}
}

func (r *ChangeRequestRepository) Create(cr *model.ChangeRequest) error {
	return r.DB.Create(cr).Error
}

func (r *ChangeRequestRepository) FindByID(id uint) (*model.ChangeRequest, error) {
	var cr model.ChangeRequest
	err := r.DB.First(&cr, id).Error
	return &cr, err
}

func (r *ChangeRequestRepository) Update(cr *model.ChangeRequest) error {
	return r.DB.Save(cr).Error
}

func (r *ChangeRequestRepository) List() ([]model.ChangeRequest, error) {
	var crs []model.ChangeRequest
	err := r.DB.Order("created_at desc").Find(&crs).Error
	return crs, err
}

func (r *ChangeRequestRepository) ListByUser(userID uint) ([]model.ChangeRequest, error) {
	var crs []model.ChangeRequest
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&crs).Error
	return crs, err
}
