package model

import "gorm.io/datatypes"

type ChangeStatus string

const (
	ChangePending  ChangeStatus = "pending"
	ChangeApproved ChangeStatus = "approved"
	ChangeDenied   ChangeStatus = "denied"
)

// ChangeRequest is a user's request to have their profile edited by an admin.
// swagger:model ChangeRequest
type ChangeRequest struct {
	BaseModel
	UserID           uint           `gorm:"index;not null" json:"userId"`
	RequestedChanges datatypes.JSON `json:"requestedChanges" swaggertype:"object"`
	Status           ChangeStatus   `gorm:"size:20;default:'pending'" json:"status"`
	ReviewerID       *uint          `json:"reviewerId"`
	ReviewerNote     string         `gorm:"type:text" json:"reviewerNote"`
}

func (ChangeRequest) TableName() string {
	return "change_requests"
}
