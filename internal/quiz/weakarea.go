package quiz

import (
	"learning_system_backend/internal/model"
	"slices"
	"sort"

	"gorm.io/datatypes"
)

const (
	// SeverityThreshold is the number of incorrect responses at which severity saturates.
	SeverityThreshold = 5
	// FallbackTopic labels questions stored without a topic.
	FallbackTopic = "general"
)

// ResponseRecord is one historical response joined with its question's topic.
type ResponseRecord struct {
	QuestionID uint
	Topic      string
	Correct    bool
}

// Severity ramps linearly with the cumulative incorrect count and caps at 1.
func Severity(incorrect int) float64 {
	return min(1.0, float64(incorrect)/SeverityThreshold)
}

// AggregateWeakAreas folds a student's whole response history into one row per topic
// with at least one incorrect response. Rows come back sorted by topic.
func AggregateWeakAreas(studentID uint, history []ResponseRecord) []model.WeakArea {
	incorrect := make(map[string]int)
	evidence := make(map[string]map[uint]struct{})

	for _, r := range history {
		if r.Correct {
			continue
		}
		topic := r.Topic
		if topic == "" {
			topic = FallbackTopic
		}
		incorrect[topic]++
		if evidence[topic] == nil {
			evidence[topic] = make(map[uint]struct{})
		}
		evidence[topic][r.QuestionID] = struct{}{}
	}

	topics := make([]string, 0, len(incorrect))
	for t := range incorrect {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	areas := make([]model.WeakArea, 0, len(topics))
	for _, t := range topics {
		ids := make([]uint, 0, len(evidence[t]))
		for id := range evidence[t] {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		areas = append(areas, model.WeakArea{
			StudentID: studentID,
			Topic:     t,
			Severity:  Severity(incorrect[t]),
			Evidence:  datatypes.NewJSONType(model.WeakAreaEvidence{Questions: ids}),
		})
	}
	return areas
}
