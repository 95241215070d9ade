package service

import (
	"context"
	"errors"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultMessagePage = 100

type CreateThreadReq struct {
	Scope    model.ChatScope `json:"scope" binding:"required"`
	Subject  string          `json:"subject"`
	Audience datatypes.JSON  `json:"audience" swaggertype:"object"`
}

type AIChatReq struct {
	Message         string   `json:"message" binding:"required"`
	SyllabusContext []string `json:"syllabusContext"`
	ClassID         string   `json:"classId"`
	Subject         string   `json:"subject"`
}

type AIChatResp struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
}

type ChatService struct {
	ChatRepo     *repository.ChatRepository
	SyllabusRepo *repository.SyllabusRepository
	Hub          *ChatHub
	AI           *AIService
}

// NewChatService wires the service as the hub's sink so websocket frames are
// stored the same way as HTTP posts.
func NewChatService(chatRepo *repository.ChatRepository, syllabusRepo *repository.SyllabusRepository, hub *ChatHub, ai *AIService) *ChatService {
	s := &ChatService{
		ChatRepo:     chatRepo,
		SyllabusRepo: syllabusRepo,
		Hub:          hub,
		AI:           ai,
	}
	if hub != nil {
		hub.Sink = s
	}
	return s
}

func (s *ChatService) CreateThread(ownerID uint, req CreateThreadReq) (*model.ChatThread, error) {
	if !req.Scope.Valid() {
		return nil, util.ErrInvalidScope
	}
	audience := req.Audience
	if len(audience) == 0 {
		audience = datatypes.JSON("{}")
	}

	thread := &model.ChatThread{
		Scope:    req.Scope,
		Subject:  req.Subject,
		OwnerID:  &ownerID,
		Audience: audience,
	}
	if err := s.ChatRepo.CreateThread(thread); err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *ChatService) ListThreads(scope model.ChatScope) ([]model.ChatThread, error) {
	if scope != "" && !scope.Valid() {
		return nil, util.ErrInvalidScope
	}
	return s.ChatRepo.ListThreads(scope)
}

func (s *ChatService) GetThread(id uint) (*model.ChatThread, error) {
	thread, err := s.ChatRepo.GetThread(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrThreadNotFound
		}
		return nil, err
	}
	return thread, nil
}

// PostMessage stores the message and pushes it to the thread's live connections.
func (s *ChatService) PostMessage(threadID, senderID uint, role model.UserRole, body string) (*model.ChatMessage, error) {
	if _, err := s.GetThread(threadID); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		ThreadID: threadID,
		SenderID: senderID,
		Role:     role,
		Body:     body,
	}
	if err := s.ChatRepo.SaveMessage(msg); err != nil {
		return nil, err
	}

	if s.Hub != nil {
		s.Hub.Broadcast(threadID, WSMessage{Type: "MESSAGE", Data: msg})
	}
	return msg, nil
}

func (s *ChatService) ListMessages(threadID, afterID uint, limit int) ([]model.ChatMessage, error) {
	if _, err := s.GetThread(threadID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultMessagePage {
		limit = defaultMessagePage
	}
	return s.ChatRepo.GetMessages(threadID, afterID, limit)
}

// AskAI answers with the assistant. When no context is supplied but a class is
// named, that class's syllabus topics are used instead.
func (s *ChatService) AskAI(ctx context.Context, req AIChatReq) (*AIChatResp, error) {
	syllabus := req.SyllabusContext
	if len(syllabus) == 0 && req.ClassID != "" && s.SyllabusRepo != nil {
		topics, err := s.SyllabusRepo.Topics(req.ClassID, req.Subject)
		if err != nil {
			logger.Log.Warn("Failed to load syllabus context", zap.Error(err), zap.String("classId", req.ClassID))
		} else {
			syllabus = topics
		}
	}

	reply, provider, err := s.AI.Ask(ctx, req.Message, syllabus)
	if err != nil {
		return nil, err
	}
	return &AIChatResp{Reply: reply, Provider: provider}, nil
}
