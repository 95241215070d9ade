package model

import (
	"time"

	"gorm.io/datatypes"
)

// GenerationSource records what a quiz was generated from.
type GenerationSource struct {
	Topics []string `json:"topics"`
}

// Quiz is generated once per request; its question set is fixed at creation.
// swagger:model Quiz
type Quiz struct {
	BaseModel
	ClassID       string                               `gorm:"size:50;index;not null" json:"classId"`
	Subject       string                               `gorm:"size:100;not null" json:"subject"`
	GeneratedFrom datatypes.JSONType[GenerationSource] `json:"generatedFrom" swaggertype:"object"`
	CreatorID     uint                                 `gorm:"index" json:"creatorId"`
	Questions     []QuizQuestion                       `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion always has Answer among Options.
// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID      uint                        `gorm:"index;not null" json:"quizId"`
	Position    int                         `gorm:"default:0" json:"position"`
	Prompt      string                      `gorm:"type:text;not null" json:"prompt"`
	Options     datatypes.JSONSlice[string] `json:"options" swaggertype:"array,string"`
	Answer      string                      `gorm:"type:text;not null" json:"answer,omitempty"`
	Explanation string                      `gorm:"type:text" json:"explanation"`
	Topic       string                      `gorm:"size:255" json:"topic"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAttempt is finalized exactly once, when SubmittedAt and Score are set.
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	QuizID      uint           `gorm:"index;not null" json:"quizId"`
	StudentID   uint           `gorm:"index;not null" json:"studentId"`
	StartedAt   time.Time      `json:"startedAt"`
	SubmittedAt *time.Time     `json:"submittedAt"`
	Score       *float64       `json:"score"`
	Responses   []QuizResponse `gorm:"foreignKey:AttemptID" json:"-"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// swagger:model QuizResponse
type QuizResponse struct {
	BaseModel
	AttemptID  uint   `gorm:"index;not null" json:"attemptId"`
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Choice     string `gorm:"type:text" json:"choice"`
	Correct    bool   `json:"correct"`
	Feedback   string `gorm:"type:text" json:"feedback"`
}

func (QuizResponse) TableName() string {
	return "quiz_responses"
}
