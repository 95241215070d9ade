package service

import (
	"errors"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"

	"gorm.io/gorm"
)

// CreateUserReq is what an admin submits to create an account.
type CreateUserReq struct {
	Name       string         `json:"name" binding:"required"`
	Email      string         `json:"email" binding:"required,email"`
	Phone      string         `json:"phone"`
	Password   string         `json:"password" binding:"required,min=6"`
	Role       model.UserRole `json:"role" binding:"required"`
	Department string         `json:"department"`
	Branch     string         `json:"branch"`
	Classes    []string       `json:"classes"`
	Subjects   []string       `json:"subjects"`
	RollNo     string         `json:"rollNo"`
}

// UpdateUserReq is a partial update; nil fields are left untouched.
type UpdateUserReq struct {
	Name       *string         `json:"name"`
	Phone      *string         `json:"phone"`
	Role       *model.UserRole `json:"role"`
	Department *string         `json:"department"`
	Branch     *string         `json:"branch"`
	Classes    *[]string       `json:"classes"`
	Subjects   *[]string       `json:"subjects"`
	RollNo     *string         `json:"rollNo"`
	Active     *bool           `json:"active"`
}

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) CreateUser(req CreateUserReq) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, util.ErrInvalidRole
	}

	_, err := s.UserRepo.FindByEmail(req.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   hashed,
		Role:       req.Role,
		Department: req.Department,
		Branch:     req.Branch,
		Classes:    req.Classes,
		Subjects:   req.Subjects,
		RollNo:     req.RollNo,
		Active:     true,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers applies the caller's visibility: admins see everyone, teachers only
// students, and anyone else is refused.
func (s *UserService) ListUsers(caller *util.Claims, role model.UserRole, department string) ([]model.User, error) {
	filter := repository.UserFilter{Role: role, Department: department}

	switch caller.Role {
	case model.Admin:
	case model.Teacher:
		if role != "" && role != model.Student {
			return []model.User{}, nil
		}
		filter.Role = model.Student
	default:
		return nil, util.ErrPermissionDenied
	}

	return s.UserRepo.List(filter)
}

func (s *UserService) UpdateUser(id uint, req UpdateUserReq) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, util.ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Branch != nil {
		user.Branch = *req.Branch
	}
	if req.Classes != nil {
		user.Classes = *req.Classes
	}
	if req.Subjects != nil {
		user.Subjects = *req.Subjects
	}
	if req.RollNo != nil {
		user.RollNo = *req.RollNo
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
