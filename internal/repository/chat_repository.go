package repository

import (
	"learning_system_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) CreateThread(thread *model.ChatThread) error {
	return r.DB.Create(thread).Error
}

func (r *ChatRepository) GetThread(id uint) (*model.ChatThread, error) {
	var thread model.ChatThread
	err := r.DB.First(&thread, id).Error
	return &thread, err
}

func (r *ChatRepository) ListThreads(scope model.ChatScope) ([]model.ChatThread, error) {
	var threads []model.ChatThread
	query := r.DB.Model(&model.ChatThread{})
	if scope != "" {
		query = query.Where("scope = ?", scope)
	}
	err := query.Order("created_at desc").Find(&threads).Error
	return threads, err
}

func (r *ChatRepository) SaveMessage(msg *model.ChatMessage) error {
	return r.DB.Create(msg).Error
}

// GetMessages returns up to limit messages of a thread, oldest first, with id > afterID.
func (r *ChatRepository) GetMessages(threadID uint, afterID uint, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	query := r.DB.Preload("Sender").Where("thread_id = ?", threadID)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("id asc").Find(&msgs).Error
	return msgs, err
}
