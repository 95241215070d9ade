package repository

import (
	"context"
	"learning_system_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// CreateWithQuestions writes the quiz and all of its questions in one transaction.
func (r *QuizRepository) CreateWithQuestions(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions").Create(quiz).Error; err != nil {
			return err
		}
		if len(quiz.Questions) == 0 {
			return nil
		}
		for i := range quiz.Questions {
			quiz.Questions[i].QuizID = quiz.ID
		}
		return tx.Create(&quiz.Questions).Error
	})
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindWithQuestions(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) List(ctx context.Context, classID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		})
	if classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	err := query.Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

// ListQuestions returns the questions of a quiz in their stored order.
func (r *QuizRepository) ListQuestions(ctx context.Context, quizID uint) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) FindQuestionsByIDs(ctx context.Context, ids []uint) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	if len(ids) == 0 {
		return qs, nil
	}
	err := r.DB.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}
