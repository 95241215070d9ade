package service

import (
	"errors"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type CreateSyllabusItemReq struct {
	ClassID string     `json:"classId" binding:"required"`
	Subject string     `json:"subject" binding:"required"`
	Topic   string     `json:"topic" binding:"required"`
	DueDate *time.Time `json:"dueDate"`
}

type UpdateSyllabusItemReq struct {
	Topic       *string    `json:"topic"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
}

type SyllabusService struct {
	Repo *repository.SyllabusRepository
}

func NewSyllabusService(repo *repository.SyllabusRepository) *SyllabusService {
	return &SyllabusService{Repo: repo}
}

func (s *SyllabusService) Create(teacherID uint, req CreateSyllabusItemReq) (*model.SyllabusItem, error) {
	item := &model.SyllabusItem{
		ClassID:   req.ClassID,
		Subject:   req.Subject,
		Topic:     req.Topic,
		Status:    "pending",
		DueDate:   req.DueDate,
		TeacherID: &teacherID,
	}
	if err := s.Repo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *SyllabusService) List(classID string) ([]model.SyllabusItem, error) {
	return s.Repo.List(classID)
}

// Update applies a partial change. Marking an item completed without a
// completion time stamps it with the current time.
func (s *SyllabusService) Update(id uint, req UpdateSyllabusItemReq) (*model.SyllabusItem, error) {
	item, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSyllabusItemNotFound
		}
		return nil, err
	}

	if req.Topic != nil {
		item.Topic = *req.Topic
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.DueDate != nil {
		item.DueDate = req.DueDate
	}
	if req.CompletedAt != nil {
		item.CompletedAt = req.CompletedAt
	} else if req.Status != nil && *req.Status == model.SyllabusCompleted {
		now := time.Now()
		item.CompletedAt = &now
	}

	if err := s.Repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Topics lists syllabus topics for use as AI context.
func (s *SyllabusService) Topics(classID, subject string) ([]string, error) {
	return s.Repo.Topics(classID, subject)
}
