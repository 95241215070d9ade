package repository

import (
	"context"
	"learning_system_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateScored persists the finalized attempt and every response in one transaction.
func (r *AttemptRepository) CreateScored(ctx context.Context, attempt *model.QuizAttempt, responses []model.QuizResponse, submittedAt time.Time, score float64) error {
	attempt.SubmittedAt = &submittedAt
	attempt.Score = &score

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Responses").Create(attempt).Error; err != nil {
			return err
		}

		for i := range responses {
			responses[i].AttemptID = attempt.ID
		}
		if len(responses) == 0 {
			return nil
		}
		return tx.Create(&responses).Error
	})
}

func (r *AttemptRepository) FindByID(ctx context.Context, id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := r.DB.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("started_at asc, id asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListResponses(ctx context.Context, attemptID uint) ([]model.QuizResponse, error) {
	var responses []model.QuizResponse
	err := r.DB.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("id asc").
		Find(&responses).Error
	return responses, err
}

func (r *AttemptRepository) ListResponsesForAttempts(ctx context.Context, attemptIDs []uint) ([]model.QuizResponse, error) {
	var responses []model.QuizResponse
	if len(attemptIDs) == 0 {
		return responses, nil
	}
	err := r.DB.WithContext(ctx).
		Where("attempt_id IN ?", attemptIDs).
		Order("attempt_id asc, id asc").
		Find(&responses).Error
	return responses, err
}
