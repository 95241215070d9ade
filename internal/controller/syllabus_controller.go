package controller

import (
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SyllabusController struct {
	Service *service.SyllabusService
}

func NewSyllabusController(svc *service.SyllabusService) *SyllabusController {
	return &SyllabusController{Service: svc}
}

// @Summary Add a syllabus item
// @Tags syllabus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateSyllabusItemReq true "Item"
// @Success 201 {object} util.Response{data=model.SyllabusItem}
// @Router /api/syllabus [post]
func (c *SyllabusController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateSyllabusItemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// @Summary List syllabus items
// @Tags syllabus
// @Produce json
// @Security BearerAuth
// @Param classId query string false "Class filter"
// @Success 200 {object} util.Response{data=[]model.SyllabusItem}
// @Router /api/syllabus [get]
func (c *SyllabusController) List(ctx *gin.Context) {
	items, err := c.Service.List(ctx.Query("classId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// @Summary Update a syllabus item
// @Tags syllabus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body service.UpdateSyllabusItemReq true "Fields to change"
// @Success 200 {object} util.Response{data=model.SyllabusItem}
// @Failure 404 {object} util.Response
// @Router /api/syllabus/{id} [patch]
func (c *SyllabusController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateSyllabusItemReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.Update(id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, item)
}
