package service

import (
	"context"
	"fmt"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/quiz"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/locker"
	"learning_system_backend/pkg/logger"
	"learning_system_backend/pkg/monitoring"
	"learning_system_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type WeakAreaService struct {
	QuizRepo     *repository.QuizRepository
	AttemptRepo  *repository.AttemptRepository
	WeakAreaRepo *repository.WeakAreaRepository
	Locker       locker.Locker
	LockWait     time.Duration
}

func NewWeakAreaService(
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
	weakAreaRepo *repository.WeakAreaRepository,
	lk locker.Locker,
	lockWait time.Duration,
) *WeakAreaService {
	return &WeakAreaService{
		QuizRepo:     quizRepo,
		AttemptRepo:  attemptRepo,
		WeakAreaRepo: weakAreaRepo,
		Locker:       lk,
		LockWait:     lockWait,
	}
}

func lockKey(studentID uint) string {
	return fmt.Sprintf("weak-areas:%d", studentID)
}

// Recompute rebuilds the student's weak areas from their full response history
// and replaces the stored set. Runs for the same student are serialised. A
// student without attempts gets an empty result and their stored rows are kept.
func (s *WeakAreaService) Recompute(ctx context.Context, studentID uint) (areas []model.WeakArea, err error) {
	ctx, span := tracing.Start(ctx, "WeakAreaService.Recompute",
		attribute.Int64("student.id", int64(studentID)),
	)
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		monitoring.WeakAreaRecomputes.WithLabelValues(result).Inc()
		tracing.End(span, err)
	}()

	lockCtx := ctx
	if s.LockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.LockWait)
		defer cancel()
	}
	unlock, err := s.Locker.Lock(lockCtx, lockKey(studentID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	attempts, err := s.AttemptRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return []model.WeakArea{}, nil
	}

	attemptIDs := make([]uint, len(attempts))
	for i, a := range attempts {
		attemptIDs[i] = a.ID
	}
	responses, err := s.AttemptRepo.ListResponsesForAttempts(ctx, attemptIDs)
	if err != nil {
		return nil, err
	}

	history, err := s.resolveTopics(ctx, responses)
	if err != nil {
		return nil, err
	}

	areas = quiz.AggregateWeakAreas(studentID, history)
	if err = s.WeakAreaRepo.ReplaceForStudent(ctx, studentID, areas); err != nil {
		return nil, fmt.Errorf("replace weak areas: %w", err)
	}

	logger.Log.Debug("Weak areas recomputed",
		zap.Uint("studentId", studentID),
		zap.Int("attempts", len(attempts)),
		zap.Int("topics", len(areas)),
	)
	return areas, nil
}

// resolveTopics joins each response with its question's topic. A response whose
// question no longer exists is an error rather than being skipped.
func (s *WeakAreaService) resolveTopics(ctx context.Context, responses []model.QuizResponse) ([]quiz.ResponseRecord, error) {
	ids := make([]uint, 0, len(responses))
	seen := make(map[uint]struct{}, len(responses))
	for _, r := range responses {
		if _, ok := seen[r.QuestionID]; !ok {
			seen[r.QuestionID] = struct{}{}
			ids = append(ids, r.QuestionID)
		}
	}

	questions, err := s.QuizRepo.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	topics := make(map[uint]string, len(questions))
	for _, q := range questions {
		topics[q.ID] = q.Topic
	}

	history := make([]quiz.ResponseRecord, 0, len(responses))
	for _, r := range responses {
		topic, ok := topics[r.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", util.ErrQuestionNotFound, r.QuestionID)
		}
		history = append(history, quiz.ResponseRecord{
			QuestionID: r.QuestionID,
			Topic:      topic,
			Correct:    r.Correct,
		})
	}
	return history, nil
}

// List returns the stored weak areas without recomputing them.
func (s *WeakAreaService) List(ctx context.Context, studentID uint) ([]model.WeakArea, error) {
	return s.WeakAreaRepo.ListByStudent(ctx, studentID)
}
