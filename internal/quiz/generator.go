// Package quiz holds the pure quiz logic: question synthesis, attempt scoring
// and weak-area aggregation. Nothing here touches the database.
package quiz

import (
	"fmt"
	"learning_system_backend/internal/model"
	"math/rand/v2"
)

const (
	// DefaultTopic replaces an empty topic list at generation time.
	DefaultTopic = "general principle"
	// OptionsPerQuestion is one correct answer plus three distractors.
	OptionsPerQuestion = 4
)

var promptTemplates = [...]string{
	"Which of the following is true about %s?",
	"Identify the best explanation for %s.",
	"Select the correct statement related to %s.",
	"A common mistake about %s is?",
}

// NewRand returns a source seeded independently for a single generation.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// CorrectOption is the answer every question about topic carries.
func CorrectOption(topic string) string {
	return fmt.Sprintf("Core fact about %s", topic)
}

func shuffle[T any](rng *rand.Rand, s []T) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// SynthesizeOptions returns the correct option and three distractors in random order.
func SynthesizeOptions(rng *rand.Rand, topic string) []string {
	distractors := []string{
		fmt.Sprintf("Irrelevant detail about %s", topic),
		fmt.Sprintf("Common misconception about %s", topic),
		fmt.Sprintf("Edge case related to %s", topic),
	}
	shuffle(rng, distractors)

	options := make([]string, 0, OptionsPerQuestion)
	options = append(options, CorrectOption(topic))
	options = append(options, distractors...)
	shuffle(rng, options)
	return options
}

// Generate synthesizes count unsaved questions. Topics are shuffled once and then
// assigned round-robin, so asking for more questions than topics repeats topics.
// A non-positive count yields no questions.
func Generate(rng *rand.Rand, topics []string, count int) []model.QuizQuestion {
	if count <= 0 {
		return []model.QuizQuestion{}
	}

	pool := make([]string, len(topics))
	copy(pool, topics)
	if len(pool) == 0 {
		pool = []string{DefaultTopic}
	}
	shuffle(rng, pool)

	questions := make([]model.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		topic := pool[i%len(pool)]
		tmpl := promptTemplates[rng.IntN(len(promptTemplates))]
		questions = append(questions, model.QuizQuestion{
			Position:    i,
			Prompt:      fmt.Sprintf(tmpl, topic),
			Options:     SynthesizeOptions(rng, topic),
			Answer:      CorrectOption(topic),
			Explanation: fmt.Sprintf("We expect recall of key concept for %s.", topic),
			Topic:       topic,
		})
	}
	return questions
}
