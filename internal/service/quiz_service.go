package service

import (
	"context"
	"errors"
	"fmt"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/quiz"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/logger"
	"learning_system_backend/pkg/monitoring"
	"learning_system_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerateQuizReq describes a quiz to synthesize. NumQuestions has already been
// range checked by the caller; a negative value yields an empty quiz.
type GenerateQuizReq struct {
	ClassID      string   `json:"classId" binding:"required"`
	Subject      string   `json:"subject" binding:"required"`
	Topics       []string `json:"topics"`
	NumQuestions *int     `json:"numQuestions"`
}

// SubmitAttemptReq maps question id to the chosen option. JSON object keys are
// decimal question ids.
type SubmitAttemptReq struct {
	Answers map[uint]string `json:"answers"`
}

type AttemptResult struct {
	Attempt   *model.QuizAttempt   `json:"attempt"`
	Responses []model.QuizResponse `json:"responses"`
}

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
}

func NewQuizService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository) *QuizService {
	return &QuizService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
	}
}

// GenerateQuiz synthesizes count questions and stores them with the quiz in one
// transaction, so either the whole quiz is visible or none of it is.
func (s *QuizService) GenerateQuiz(ctx context.Context, req GenerateQuizReq, count int, creatorID uint) (q *model.Quiz, err error) {
	ctx, span := tracing.Start(ctx, "QuizService.GenerateQuiz",
		attribute.String("class.id", req.ClassID),
		attribute.Int("quiz.count", count),
	)
	defer func() { tracing.End(span, err) }()

	topics := req.Topics
	if topics == nil {
		topics = []string{}
	}

	q = &model.Quiz{
		ClassID:       req.ClassID,
		Subject:       req.Subject,
		GeneratedFrom: datatypes.NewJSONType(model.GenerationSource{Topics: topics}),
		CreatorID:     creatorID,
		Questions:     quiz.Generate(quiz.NewRand(), topics, count),
	}

	if err = s.QuizRepo.CreateWithQuestions(ctx, q); err != nil {
		return nil, fmt.Errorf("store quiz: %w", err)
	}

	monitoring.QuizzesGenerated.Inc()
	monitoring.QuestionsGenerated.Add(float64(len(q.Questions)))
	logger.Log.Info("Quiz generated",
		zap.Uint("quizId", q.ID),
		zap.String("classId", q.ClassID),
		zap.Int("questions", len(q.Questions)),
	)
	return q, nil
}

// StripAnswers blanks the correct answer of every question so the quiz can be
// shown to students.
func StripAnswers(quizzes ...*model.Quiz) {
	for _, q := range quizzes {
		for i := range q.Questions {
			q.Questions[i].Answer = ""
		}
	}
}

func (s *QuizService) ListQuizzes(ctx context.Context, classID string, withAnswers bool) ([]model.Quiz, error) {
	quizzes, err := s.QuizRepo.List(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !withAnswers {
		for i := range quizzes {
			StripAnswers(&quizzes[i])
		}
	}
	return quizzes, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id uint, withAnswers bool) (*model.Quiz, error) {
	q, err := s.QuizRepo.FindWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !withAnswers {
		StripAnswers(q)
	}
	return q, nil
}

// SubmitAttempt scores answers against the quiz's current questions and stores the
// attempt with all of its responses atomically. Every call records a new attempt.
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID, studentID uint, answers quiz.AnswerSheet) (result *AttemptResult, err error) {
	ctx, span := tracing.Start(ctx, "QuizService.SubmitAttempt",
		attribute.Int64("quiz.id", int64(quizID)),
		attribute.Int64("student.id", int64(studentID)),
	)
	defer func() { tracing.End(span, err) }()

	if _, err = s.QuizRepo.FindByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = util.ErrQuizNotFound
			return nil, err
		}
		return nil, err
	}

	questions, err := s.QuizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	responses, correct, score := quiz.Score(questions, answers)

	attempt := &model.QuizAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		StartedAt: time.Now(),
	}
	if err = s.AttemptRepo.CreateScored(ctx, attempt, responses, time.Now(), score); err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}

	monitoring.AttemptScores.Observe(score)
	logger.Log.Info("Quiz attempt scored",
		zap.Uint("quizId", quizID),
		zap.Uint("studentId", studentID),
		zap.Uint("attemptId", attempt.ID),
		zap.Int("correct", correct),
		zap.Int("total", len(questions)),
	)
	return &AttemptResult{Attempt: attempt, Responses: responses}, nil
}

// GetAttempt returns a stored attempt with its responses in submission order.
func (s *QuizService) GetAttempt(ctx context.Context, id uint) (*AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	responses, err := s.AttemptRepo.ListResponses(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AttemptResult{Attempt: attempt, Responses: responses}, nil
}

func (s *QuizService) ListAttempts(ctx context.Context, studentID uint) ([]model.QuizAttempt, error) {
	return s.AttemptRepo.ListByStudent(ctx, studentID)
}
