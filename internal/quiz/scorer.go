package quiz

import "learning_system_backend/internal/model"

// AnswerSheet maps question id to the option string a student chose.
type AnswerSheet map[uint]string

// Choice returns the submitted option, or "" when the question was left unanswered.
func (a AnswerSheet) Choice(questionID uint) string {
	if a == nil {
		return ""
	}
	return a[questionID]
}

// Score builds one response per question, in the order given. A choice is correct only
// when it equals the answer exactly; unanswered questions count against the score.
// Responses are returned without an attempt id.
func Score(questions []model.QuizQuestion, answers AnswerSheet) ([]model.QuizResponse, int, float64) {
	responses := make([]model.QuizResponse, 0, len(questions))
	correct := 0
	for _, q := range questions {
		choice := answers.Choice(q.ID)
		ok := choice == q.Answer
		if ok {
			correct++
		}
		responses = append(responses, model.QuizResponse{
			QuestionID: q.ID,
			Choice:     choice,
			Correct:    ok,
			Feedback:   q.Explanation,
		})
	}

	return responses, correct, Ratio(correct, len(questions))
}

// Ratio is correct/total with an empty quiz scoring 0.
func Ratio(correct, total int) float64 {
	return float64(correct) / float64(max(total, 1))
}
