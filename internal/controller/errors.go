package controller

import (
	"errors"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/locker"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrChangeRequestNotFound),
		errors.Is(err, util.ErrSyllabusItemNotFound),
		errors.Is(err, util.ErrThreadNotFound):
		util.NotFoundWithMessage(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidRole),
		errors.Is(err, util.ErrInvalidScope),
		errors.Is(err, util.ErrEmailRegistered):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrUserInactive):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, locker.ErrLockTimeout):
		util.Conflict(ctx, "weak areas are being recomputed, retry shortly")
	default:
		util.LogInternalError(ctx, err)
	}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}
