package repository

import (
	"context"
	"learning_system_backend/internal/model"

	"gorm.io/gorm"
)

type WeakAreaRepository struct {
	DB *gorm.DB
}

func NewWeakAreaRepository(db *gorm.DB) *WeakAreaRepository {
	return &WeakAreaRepository{DB: db}
}

// ReplaceForStudent swaps the student's stored weak areas for areas atomically:
// readers see either the old set or the new one.
func (r *WeakAreaRepository) ReplaceForStudent(ctx context.Context, studentID uint, areas []model.WeakArea) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).Delete(&model.WeakArea{}).Error; err != nil {
			return err
		}
		if len(areas) == 0 {
			return nil
		}
		return tx.Create(&areas).Error
	})
}

func (r *WeakAreaRepository) ListByStudent(ctx context.Context, studentID uint) ([]model.WeakArea, error) {
	var areas []model.WeakArea
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("topic asc").
		Find(&areas).Error
	return areas, err
}
