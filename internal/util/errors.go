package util

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserInactive          = errors.New("user inactive")
	ErrInvalidCredentials    = errors.New("incorrect email or password")
	ErrEmailRegistered       = errors.New("email already exists")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrQuizNotFound          = errors.New("quiz not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrChangeRequestNotFound = errors.New("change request not found")
	ErrSyllabusItemNotFound  = errors.New("syllabus item not found")
	ErrThreadNotFound        = errors.New("thread not found")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidScope          = errors.New("invalid chat scope")
)
