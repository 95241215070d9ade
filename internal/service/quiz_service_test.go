package service_test

import (
	"context"
	"errors"
	"testing"

	"learning_system_backend/internal/model"
	"learning_system_backend/internal/quiz"
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"
)

func generate(t *testing.T, f *fixture, topics []string, n int) *model.Quiz {
	t.Helper()
	q, err := f.quiz.GenerateQuiz(context.Background(), service.GenerateQuizReq{
		ClassID: "10A",
		Subject: "Math",
		Topics:  topics,
	}, n, 1)
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	return q
}

func TestGenerateQuiz_StoresQuizAndQuestions(t *testing.T) {
	f := newFixture(t)
	q := generate(t, f, []string{"fractions", "decimals"}, 4)

	if q.ID == 0 {
		t.Fatal("quiz was not assigned an id")
	}
	if got := q.GeneratedFrom.Data().Topics; len(got) != 2 || got[0] != "fractions" || got[1] != "decimals" {
		t.Errorf("generatedFrom = %v", got)
	}

	stored, err := f.quiz.GetQuiz(context.Background(), q.ID, true)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if len(stored.Questions) != 4 {
		t.Fatalf("stored %d questions, want 4", len(stored.Questions))
	}
	counts := map[string]int{}
	for i, qq := range stored.Questions {
		if qq.QuizID != q.ID || qq.Position != i {
			t.Errorf("question %d: quizId=%d position=%d", i, qq.QuizID, qq.Position)
		}
		counts[qq.Topic]++
	}
	if counts["fractions"] != 2 || counts["decimals"] != 2 {
		t.Errorf("topic distribution %v, want two of each", counts)
	}
}

func TestGenerateQuiz_ZeroAndNegativeCounts(t *testing.T) {
	f := newFixture(t)
	for _, n := range []int{0, -3} {
		q := generate(t, f, []string{"fractions"}, n)
		stored, err := f.quiz.GetQuiz(context.Background(), q.ID, true)
		if err != nil {
			t.Fatalf("GetQuiz: %v", err)
		}
		if len(stored.Questions) != 0 {
			t.Errorf("count %d stored %d questions", n, len(stored.Questions))
		}
	}
}

func TestGetQuiz_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.quiz.GetQuiz(context.Background(), 42, true); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}

func TestListQuizzes_HidesAnswersFromStudents(t *testing.T) {
	f := newFixture(t)
	generate(t, f, []string{"fractions"}, 2)

	hidden, err := f.quiz.ListQuizzes(context.Background(), "10A", false)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(hidden) != 1 || len(hidden[0].Questions) != 2 {
		t.Fatalf("unexpected listing %+v", hidden)
	}
	for _, qq := range hidden[0].Questions {
		if qq.Answer != "" {
			t.Errorf("answer leaked: %q", qq.Answer)
		}
	}

	shown, err := f.quiz.ListQuizzes(context.Background(), "10A", true)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if shown[0].Questions[0].Answer != quiz.CorrectOption("fractions") {
		t.Errorf("teacher view lost the answer")
	}

	other, err := f.quiz.ListQuizzes(context.Background(), "11B", true)
	if err != nil || len(other) != 0 {
		t.Errorf("class filter returned %d quizzes, err %v", len(other), err)
	}
}

func TestSubmitAttempt_HalfCorrect(t *testing.T) {
	f := newFixture(t)
	q := generate(t, f, []string{"fractions", "decimals"}, 4)
	qs := q.Questions

	answers := quiz.AnswerSheet{
		qs[0].ID: qs[0].Answer,
		qs[1].ID: wrongOption(qs[1]),
		qs[2].ID: qs[2].Answer,
		qs[3].ID: wrongOption(qs[3]),
	}
	result, err := f.quiz.SubmitAttempt(context.Background(), q.ID, 7, answers)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	a := result.Attempt
	if a.ID == 0 || a.StudentID != 7 || a.QuizID != q.ID {
		t.Errorf("unexpected attempt %+v", a)
	}
	if a.Score == nil || *a.Score != 0.5 {
		t.Errorf("score = %v, want 0.5", a.Score)
	}
	if a.SubmittedAt == nil || a.SubmittedAt.Before(a.StartedAt) {
		t.Errorf("submittedAt %v not after startedAt %v", a.SubmittedAt, a.StartedAt)
	}

	if len(result.Responses) != 4 {
		t.Fatalf("got %d responses, want 4", len(result.Responses))
	}
	correct := 0
	for i, r := range result.Responses {
		if r.QuestionID != qs[i].ID || r.AttemptID != a.ID {
			t.Errorf("response %d: %+v", i, r)
		}
		if r.Feedback != qs[i].Explanation {
			t.Errorf("response %d feedback %q", i, r.Feedback)
		}
		if r.Correct {
			correct++
		}
	}
	if correct != 2 {
		t.Errorf("correct = %d, want 2", correct)
	}

	var stored model.QuizAttempt
	if err := f.db.First(&stored, a.ID).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if stored.Score == nil || *stored.Score != 0.5 || stored.SubmittedAt == nil {
		t.Errorf("stored attempt not finalized: %+v", stored)
	}
	var n int64
	f.db.Model(&model.QuizResponse{}).Where("attempt_id = ?", a.ID).Count(&n)
	if n != 4 {
		t.Errorf("stored %d responses, want 4", n)
	}
}

func TestSubmitAttempt_UnansweredCountsAsWrong(t *testing.T) {
	f := newFixture(t)
	q := generate(t, f, []string{"fractions"}, 3)

	result, err := f.quiz.SubmitAttempt(context.Background(), q.ID, 7, nil)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if *result.Attempt.Score != 0 {
		t.Errorf("score = %v, want 0", *result.Attempt.Score)
	}
	for _, r := range result.Responses {
		if r.Choice != "" || r.Correct {
			t.Errorf("unexpected response %+v", r)
		}
	}
}

func TestSubmitAttempt_EmptyQuizScoresZero(t *testing.T) {
	f := newFixture(t)
	q := generate(t, f, nil, 0)

	result, err := f.quiz.SubmitAttempt(context.Background(), q.ID, 7, quiz.AnswerSheet{99: "anything"})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if *result.Attempt.Score != 0 || len(result.Responses) != 0 {
		t.Errorf("got score %v with %d responses", *result.Attempt.Score, len(result.Responses))
	}
}

func TestSubmitAttempt_UnknownQuiz(t *testing.T) {
	f := newFixture(t)
	_, err := f.quiz.SubmitAttempt(context.Background(), 404, 7, quiz.AnswerSheet{})
	if !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}

	var n int64
	f.db.Model(&model.QuizAttempt{}).Count(&n)
	if n != 0 {
		t.Errorf("%d attempts stored for a missing quiz", n)
	}
}

func TestSubmitAttempt_RepeatCreatesNewAttempt(t *testing.T) {
	f := newFixture(t)
	q := generate(t, f, []string{"fractions"}, 2)

	first, err := f.quiz.SubmitAttempt(context.Background(), q.ID, 7, nil)
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	answers := quiz.AnswerSheet{}
	for _, qq := range q.Questions {
		answers[qq.ID] = qq.Answer
	}
	second, err := f.quiz.SubmitAttempt(context.Background(), q.ID, 7, answers)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}

	if first.Attempt.ID == second.Attempt.ID {
		t.Fatal("attempts share an id")
	}
	if *first.Attempt.Score != 0 || *second.Attempt.Score != 1 {
		t.Errorf("scores %v and %v, want 0 and 1", *first.Attempt.Score, *second.Attempt.Score)
	}

	attempts, err := f.quiz.ListAttempts(context.Background(), 7)
	if err != nil || len(attempts) != 2 {
		t.Fatalf("ListAttempts = %d, %v", len(attempts), err)
	}
}

func TestGetAttempt(t *testing.T) {
	f := newFixture(t)
	q := generate(t, f, []string{"fractions"}, 2)
	qs := q.Questions

	submitted, err := f.quiz.SubmitAttempt(context.Background(), q.ID, 7, quiz.AnswerSheet{qs[0].ID: qs[0].Answer})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	got, err := f.quiz.GetAttempt(context.Background(), submitted.Attempt.ID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if got.Attempt.StudentID != 7 || got.Attempt.Score == nil || *got.Attempt.Score != 0.5 {
		t.Errorf("unexpected attempt %+v", got.Attempt)
	}
	if len(got.Responses) != 2 || !got.Responses[0].Correct || got.Responses[1].Choice != "" {
		t.Errorf("unexpected responses %+v", got.Responses)
	}

	if _, err := f.quiz.GetAttempt(context.Background(), 999); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("missing attempt: err = %v", err)
	}
}
