package controller

import (
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserService.GetUserByID(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateUserReq true "New user"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Router /api/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req service.CreateUserReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.CreateUser(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// @Summary List users
// @Description Admins see every user, teachers only students.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter"
// @Param department query string false "Department filter"
// @Success 200 {object} util.Response{data=[]model.User}
// @Failure 403 {object} util.Response
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	role := model.UserRole(ctx.Query("role"))
	if role != "" && !role.Valid() {
		util.BadRequest(ctx, util.ErrInvalidRole.Error())
		return
	}

	users, err := c.UserService.ListUsers(claims, role, ctx.Query("department"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body service.UpdateUserReq true "Fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [patch]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateUserReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateUser(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
