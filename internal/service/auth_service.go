package service

import (
	"errors"
	"fmt"
	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Login checks the credentials and returns a signed access token.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}
	if !user.Active {
		return "", util.ErrUserInactive
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// EnsureAdmin creates the bootstrap admin account if no user holds its email yet.
func (s *AuthService) EnsureAdmin() error {
	email := s.Cfg.Admin.Email
	if email == "" {
		return nil
	}

	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := HashPassword(s.Cfg.Admin.Password)
	if err != nil {
		return err
	}
	admin := &model.User{
		Name:     "Administrator",
		Email:    email,
		Password: hashed,
		Role:     model.Admin,
		Active:   true,
	}
	if err := s.UserRepo.Create(admin); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	logger.Log.Info("Default admin created", zap.String("email", email))
	return nil
}
