package controller

import (
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type ChangeRequestController struct {
	Service *service.ChangeRequestService
}

func NewChangeRequestController(svc *service.ChangeRequestService) *ChangeRequestController {
	return &ChangeRequestController{Service: svc}
}

type SubmitChangeRequest struct {
	RequestedChanges datatypes.JSON `json:"requestedChanges" binding:"required" swaggertype:"object"`
}

// @Summary Request a profile change
// @Tags change-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitChangeRequest true "Requested changes"
// @Success 201 {object} util.Response{data=model.ChangeRequest}
// @Router /api/change-requests [post]
func (c *ChangeRequestController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cr, err := c.Service.Submit(claims.UserID, req.RequestedChanges)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, cr)
}

// @Summary List all change requests
// @Tags change-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.ChangeRequest}
// @Router /api/change-requests [get]
func (c *ChangeRequestController) List(ctx *gin.Context) {
	crs, err := c.Service.List()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, crs)
}

// @Summary List my change requests
// @Tags change-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.ChangeRequest}
// @Router /api/change-requests/mine [get]
func (c *ChangeRequestController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	crs, err := c.Service.ListMine(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, crs)
}

// @Summary Review a change request
// @Tags change-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Change request ID"
// @Param body body service.ReviewChangeReq true "Decision"
// @Success 200 {object} util.Response{data=model.ChangeRequest}
// @Failure 404 {object} util.Response
// @Router /api/change-requests/{id}/review [post]
func (c *ChangeRequestController) Review(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.ReviewChangeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cr, err := c.Service.Review(id, claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, cr)
}
