package model

import "time"

const SyllabusCompleted = "completed"

// swagger:model SyllabusItem
type SyllabusItem struct {
	BaseModel
	ClassID     string     `gorm:"size:50;index;not null" json:"classId"`
	Subject     string     `gorm:"size:100;not null" json:"subject"`
	Topic       string     `gorm:"size:255;not null" json:"topic"`
	Status      string     `gorm:"size:20;default:'pending'" json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	TeacherID   *uint      `gorm:"index" json:"teacherId"`
}

func (SyllabusItem) TableName() string {
	return "syllabus_items"
}
