package model

import (
	"gorm.io/datatypes"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Student, Teacher, Admin:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Name       string                      `gorm:"size:100;not null" json:"name"`
	Email      string                      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone      string                      `gorm:"size:30" json:"phone"`
	Password   string                      `gorm:"size:100;not null" json:"-"`
	Role       UserRole                    `gorm:"size:20;default:'student';index" json:"role"`
	Department string                      `gorm:"size:100;index" json:"department"`
	Branch     string                      `gorm:"size:100" json:"branch"`
	Classes    datatypes.JSONSlice[string] `json:"classes"`
	Subjects   datatypes.JSONSlice[string] `json:"subjects"`
	RollNo     string                      `gorm:"size:50;index" json:"rollNo"`
	Active     bool                        `gorm:"default:true" json:"active"`
}

func (User) TableName() string {
	return "users"
}
