package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error)
	GetLastMessages(ctx context.Context, chatIDs []string) (map[string]models.Message, error)
	AdvanceStatus(ctx context.Context, chatID, readerID string, target models.MessageStatus) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// GetMessagesByChatID returns the chat's messages, newest first
func (r *messageRepository) GetMessagesByChatID(ctx context.Context, chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).
		Order("created_at DESC").Order("id DESC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	return messages, nil
}

// GetLastMessages returns the newest message of each chat that has one
func (r *messageRepository) GetLastMessages(ctx context.Context, chatIDs []string) (map[string]models.Message, error) {
	result := make(map[string]models.Message, len(chatIDs))
	if len(chatIDs) == 0 {
		return result, nil
	}
	var messages []models.Message
	err := r.db.WithContext(ctx).Where("chat_id IN ?", chatIDs).
		Order("created_at DESC").Order("id DESC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("get last messages: %w", err)
	}
	for _, m := range messages {
		if _, ok := result[m.ChatID]; !ok {
			result[m.ChatID] = m
		}
	}
	return result, nil
}

// AdvanceStatus moves every message not sent by readerID that is still
// before target up to target. Messages already at or past target are untouched.
func (r *messageRepository) AdvanceStatus(ctx context.Context, chatID, readerID string, target models.MessageStatus) (int64, error) {
	from := models.StatusesBefore(target)
	if len(from) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND status IN ?", chatID, readerID, from).
		UpdateColumn("status", target)
	if res.Error != nil {
		return 0, fmt.Errorf("advance message status: %w", res.Error)
	}
	return res.RowsAffected, nil
}
