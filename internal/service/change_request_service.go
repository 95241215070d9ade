package service

import (
	"errors"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReviewChangeReq struct {
	Status       model.ChangeStatus `json:"status" binding:"required,oneof=approved denied"`
	ReviewerNote string             `json:"reviewerNote"`
}

type ChangeRequestService struct {
	Repo *repository.ChangeRequestRepository
}

func NewChangeRequestService(repo *repository.ChangeRequestRepository) *ChangeRequestService {
	return &ChangeRequestService{Repo: repo}
}

func (s *ChangeRequestService) Submit(userID uint, changes datatypes.JSON) (*model.ChangeRequest, error) {
	if len(changes) == 0 {
		changes = datatypes.JSON("{}")
	}
	cr := &model.ChangeRequest{
		UserID:           userID,
		RequestedChanges: changes,
		Status:           model.ChangePending,
	}
	if err := s.Repo.Create(cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *ChangeRequestService) List() ([]model.ChangeRequest, error) {
	return s.Repo.List()
}

func (s *ChangeRequestService) ListMine(userID uint) ([]model.ChangeRequest, error) {
	return s.Repo.ListByUser(userID)
}

// Review records the admin's decision. The requested changes are not applied
// automatically; the admin edits the profile separately.
func (s *ChangeRequestService) Review(id, reviewerID uint, req ReviewChangeReq) (*model.ChangeRequest, error) {
	cr, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChangeRequestNotFound
		}
		return nil, err
	}

	cr.Status = req.Status
	cr.ReviewerID = &reviewerID
	cr.ReviewerNote = req.ReviewerNote
	if err := s.Repo.Update(cr); err != nil {
		return nil, err
	}
	return cr, nil
}
