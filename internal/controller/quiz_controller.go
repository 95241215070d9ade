package controller

import (
	"fmt"
	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/quiz"
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService     *service.QuizService
	WeakAreaService *service.WeakAreaService
	ExportService   *service.QuizExportService
	Cfg             config.QuizConfig
}

func NewQuizController(
	quizService *service.QuizService,
	weakAreaService *service.WeakAreaService,
	exportService *service.QuizExportService,
	cfg config.QuizConfig,
) *QuizController {
	return &QuizController{
		QuizService:     quizService,
		WeakAreaService: weakAreaService,
		ExportService:   exportService,
		Cfg:             cfg,
	}
}

// questionCount resolves the requested number of questions against the configured bounds.
func (c *QuizController) questionCount(req service.GenerateQuizReq) (int, error) {
	if req.NumQuestions == nil {
		return c.Cfg.DefaultQuestions, nil
	}
	n := *req.NumQuestions
	if n < 0 || n > c.Cfg.MaxQuestions {
		return 0, fmt.Errorf("numQuestions must be between 0 and %d", c.Cfg.MaxQuestions)
	}
	return n, nil
}

// @Summary Generate a quiz
// @Description Synthesizes multiple-choice questions from the given topics and stores them as a new quiz.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GenerateQuizReq true "Quiz parameters"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Router /api/quizzes/generate [post]
func (c *QuizController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GenerateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	n, err := c.questionCount(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.GenerateQuiz(ctx.Request.Context(), req, n, claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary List quizzes
// @Description Students receive questions without the correct answer.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param classId query string false "Class filter"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListQuizzes(ctx.Request.Context(), ctx.Query("classId"), claims.HasRole(model.Teacher))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary Get a quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	q, err := c.QuizService.GetQuiz(ctx.Request.Context(), id, claims.HasRole(model.Teacher))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Submit a quiz attempt
// @Description Scores the answers (question id to chosen option) and stores the attempt with per-question feedback.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param body body service.SubmitAttemptReq true "Answers"
// @Success 201 {object} util.Response{data=service.AttemptResult}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/attempts [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.SubmitAttemptReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitAttempt(ctx.Request.Context(), id, claims.UserID, quiz.AnswerSheet(req.Answers))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary List my attempts
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /api/quizzes/attempts/mine [get]
func (c *QuizController) MyAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.QuizService.ListAttempts(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary Get an attempt
// @Description Students may only read their own attempts.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/attempts/{attemptId} [get]
func (c *QuizController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "attemptId")
	if !ok {
		return
	}

	result, err := c.QuizService.GetAttempt(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !claims.HasRole(model.Teacher) && result.Attempt.StudentID != claims.UserID {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, result)
}

// @Summary Export a quiz as PDF
// @Description Renders the quiz with an answer key, stores it and returns its URL.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=service.QuizExport}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/export [get]
func (c *QuizController) Export(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	export, err := c.ExportService.Export(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, export)
}

// studentParam reads :studentId and refuses students asking about someone else.
func studentParam(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	id, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return 0, false
	}
	if !claims.HasRole(model.Teacher) && claims.UserID != id {
		util.Forbidden(ctx)
		return 0, false
	}
	return id, true
}

// @Summary Recompute weak areas
// @Description Rebuilds the student's weak areas from every submitted attempt and returns them sorted by topic.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} util.Response{data=[]model.WeakArea}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quizzes/analytics/weak-areas/{studentId} [get]
func (c *QuizController) WeakAreas(ctx *gin.Context) {
	studentID, ok := studentParam(ctx)
	if !ok {
		return
	}

	areas, err := c.WeakAreaService.Recompute(ctx.Request.Context(), studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, areas)
}

// @Summary Stored weak areas
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} util.Response{data=[]model.WeakArea}
// @Router /api/quizzes/analytics/weak-areas/{studentId}/stored [get]
func (c *QuizController) StoredWeakAreas(ctx *gin.Context) {
	studentID, ok := studentParam(ctx)
	if !ok {
		return
	}

	areas, err := c.WeakAreaService.List(ctx.Request.Context(), studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, areas)
}
