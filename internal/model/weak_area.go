package model

import "gorm.io/datatypes"

// WeakAreaEvidence lists the distinct questions answered incorrectly, ascending.
type WeakAreaEvidence struct {
	Questions []uint `json:"questions"`
}

// WeakArea is a derived row: every recompute replaces all rows of the student.
// The composite key keeps repeated recomputes over the same history byte-identical.
// swagger:model WeakArea
type WeakArea struct {
	StudentID uint                                 `gorm:"primaryKey;autoIncrement:false" json:"studentId"`
	Topic     string                               `gorm:"primaryKey;size:191" json:"topic"`
	Severity  float64                              `gorm:"not null;default:0" json:"severity"`
	Evidence  datatypes.JSONType[WeakAreaEvidence] `json:"evidence" swaggertype:"object"`
}

func (WeakArea) TableName() string {
	return "weak_areas"
}
