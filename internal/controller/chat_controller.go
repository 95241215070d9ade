package controller

import (
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
	Hub         *service.ChatHub
}

func NewChatController(chatService *service.ChatService, hub *service.ChatHub) *ChatController {
	return &ChatController{ChatService: chatService, Hub: hub}
}

// @Summary Create a chat thread
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateThreadReq true "Thread"
// @Success 201 {object} util.Response{data=model.ChatThread}
// @Failure 400 {object} util.Response
// @Router /api/chat/threads [post]
func (c *ChatController) CreateThread(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateThreadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	thread, err := c.ChatService.CreateThread(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, thread)
}

// @Summary List chat threads
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param scope query string false "class, teacher or ai"
// @Success 200 {object} util.Response{data=[]model.ChatThread}
// @Router /api/chat/threads [get]
func (c *ChatController) ListThreads(ctx *gin.Context) {
	threads, err := c.ChatService.ListThreads(model.ChatScope(ctx.Query("scope")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, threads)
}

type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// @Summary Post a message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param body body PostMessageRequest true "Message"
// @Success 201 {object} util.Response{data=model.ChatMessage}
// @Failure 404 {object} util.Response
// @Router /api/chat/threads/{id}/messages [post]
func (c *ChatController) PostMessage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	threadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	msg, err := c.ChatService.PostMessage(threadID, claims.UserID, claims.Role, req.Body)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, msg)
}

// @Summary List messages of a thread
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param after query int false "Only messages with a larger id"
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} util.Response{data=[]model.ChatMessage}
// @Failure 404 {object} util.Response
// @Router /api/chat/threads/{id}/messages [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	threadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	after := util.MustParseUint(ctx.DefaultQuery("after", "0"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))

	msgs, err := c.ChatService.ListMessages(threadID, after, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, msgs)
}

// @Summary Live thread connection
// @Description Upgrades to a websocket. Frames {"body": "..."} are stored and broadcast to every connection on the thread.
// @Tags chat
// @Security BearerAuth
// @Param threadId path int true "Thread ID"
// @Param token query string false "JWT when headers cannot be set"
// @Router /api/chat/ws/{threadId} [get]
func (c *ChatController) Connect(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	threadID, ok := parseIDParam(ctx, "threadId")
	if !ok {
		return
	}
	if _, err := c.ChatService.GetThread(threadID); err != nil {
		respondError(ctx, err)
		return
	}

	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, threadID, claims.UserID, claims.Role)
}

// @Summary Ask the AI assistant
// @Description Without a configured API key the reply comes from a deterministic stub.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AIChatReq true "Question"
// @Success 200 {object} util.Response{data=service.AIChatResp}
// @Router /api/chat/ai [post]
func (c *ChatController) AskAI(ctx *gin.Context) {
	var req service.AIChatReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.ChatService.AskAI(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}
