package repository

import (
	"learning_system_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// UserFilter narrows List; zero values are ignored.
type UserFilter struct {
	Role       model.UserRole
	Department string
}

func (r *UserRepository) List(filter UserFilter) ([]model.User, error) {
	var users []model.User
	query := r.DB.Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	err := query.Order("id asc").Find(&users).Error
	return users, err
}
