package quiz_test

import (
	"encoding/json"
	"slices"
	"testing"

	"learning_system_backend/internal/quiz"
)

func wrong(qid uint, topic string) quiz.ResponseRecord {
	return quiz.ResponseRecord{QuestionID: qid, Topic: topic}
}

func right(qid uint, topic string) quiz.ResponseRecord {
	return quiz.ResponseRecord{QuestionID: qid, Topic: topic, Correct: true}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		incorrect int
		want      float64
	}{
		{0, 0},
		{1, 0.2},
		{2, 0.4},
		{5, 1.0},
		{12, 1.0},
	}
	for _, tt := range tests {
		if got := quiz.Severity(tt.incorrect); got != tt.want {
			t.Errorf("Severity(%d) = %v, want %v", tt.incorrect, got, tt.want)
		}
	}
}

func TestAggregateWeakAreas_FiveErrorsSaturates(t *testing.T) {
	var history []quiz.ResponseRecord
	for i := uint(1); i <= 5; i++ {
		history = append(history, wrong(i, "algebra"))
	}
	history = append(history, right(6, "geometry"))

	areas := quiz.AggregateWeakAreas(3, history)
	if len(areas) != 1 {
		t.Fatalf("expected one weak area, got %d", len(areas))
	}
	if areas[0].Topic != "algebra" || areas[0].Severity != 1.0 || areas[0].StudentID != 3 {
		t.Errorf("unexpected weak area %+v", areas[0])
	}
	if got := areas[0].Evidence.Data().Questions; !slices.Equal(got, []uint{1, 2, 3, 4, 5}) {
		t.Errorf("unexpected evidence %v", got)
	}
}

func TestAggregateWeakAreas_TwoErrors(t *testing.T) {
	areas := quiz.AggregateWeakAreas(1, []quiz.ResponseRecord{wrong(1, "algebra"), wrong(2, "algebra"), right(3, "algebra")})
	if len(areas) != 1 || areas[0].Severity != 0.4 {
		t.Fatalf("expected severity 0.4, got %+v", areas)
	}
}

func TestAggregateWeakAreas_CumulativeAcrossAttemptsWithDistinctEvidence(t *testing.T) {
	// the same question missed in three attempts counts three times but appears once in evidence
	history := []quiz.ResponseRecord{wrong(4, "sets"), wrong(4, "sets"), wrong(4, "sets"), wrong(2, "sets")}
	areas := quiz.AggregateWeakAreas(1, history)
	if areas[0].Severity != quiz.Severity(4) {
		t.Errorf("expected severity for 4 errors, got %v", areas[0].Severity)
	}
	if got := areas[0].Evidence.Data().Questions; !slices.Equal(got, []uint{2, 4}) {
		t.Errorf("expected distinct sorted evidence, got %v", got)
	}
}

func TestAggregateWeakAreas_EmptyTopicFallsBack(t *testing.T) {
	areas := quiz.AggregateWeakAreas(1, []quiz.ResponseRecord{wrong(1, "")})
	if len(areas) != 1 || areas[0].Topic != quiz.FallbackTopic {
		t.Fatalf("expected fallback topic, got %+v", areas)
	}
}

func TestAggregateWeakAreas_AllCorrectYieldsNothing(t *testing.T) {
	areas := quiz.AggregateWeakAreas(1, []quiz.ResponseRecord{right(1, "a"), right(2, "b")})
	if areas == nil || len(areas) != 0 {
		t.Errorf("expected empty non-nil result, got %v", areas)
	}
}

func TestAggregateWeakAreas_DeterministicOutput(t *testing.T) {
	history := []quiz.ResponseRecord{wrong(9, "z"), wrong(1, "a"), wrong(5, "m"), wrong(3, "a")}
	first, _ := json.Marshal(quiz.AggregateWeakAreas(2, history))
	slices.Reverse(history)
	second, _ := json.Marshal(quiz.AggregateWeakAreas(2, history))
	if string(first) != string(second) {
		t.Errorf("output depends on input order:\n%s\n%s", first, second)
	}
}
