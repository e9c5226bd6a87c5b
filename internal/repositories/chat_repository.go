package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat and participant operations
type ChatRepository interface {
	CreateChat(ctx context.Context, chat *models.Chat) (bool, error)
	GetChatByID(ctx context.Context, id string) (*models.Chat, error)
	GetChatByPairKey(ctx context.Context, pairKey string) (*models.Chat, error)
	LockChat(ctx context.Context, id string) (*models.Chat, error)
	GetChatsByUserID(ctx context.Context, userID string) ([]models.Chat, error)
	TouchChat(ctx context.Context, chatID string, at time.Time) error
	IncrementUnreadExcept(ctx context.Context, chatID, senderID string) error
	ResetUnread(ctx context.Context, chatID, userID string) error
	SumUnread(ctx context.Context, userID string) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewPostgresChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func withParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("user_id ASC")
	})
}

// CreateChat inserts the chat and its participants unless a chat with the
// same pair key exists. It reports whether the chat was inserted.
func (r *chatRepository) CreateChat(ctx context.Context, chat *models.Chat) (bool, error) {
	participants := chat.Participants
	chat.Participants = nil
	defer func() { chat.Participants = participants }()

	db := r.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pair_key"}}, DoNothing: true}).Create(chat)
	if res.Error != nil {
		return false, fmt.Errorf("create chat: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	for i := range participants {
		participants[i].ChatID = chat.ID
	}
	if err := db.Create(&participants).Error; err != nil {
		return false, fmt.Errorf("create chat participants: %w", err)
	}
	return true, nil
}

func (r *chatRepository) GetChatByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := withParticipants(r.db.WithContext(ctx)).First(&chat, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "chat")
	}
	return &chat, nil
}

func (r *chatRepository) GetChatByPairKey(ctx context.Context, pairKey string) (*models.Chat, error) {
	var chat models.Chat
	if err := withParticipants(r.db.WithContext(ctx)).Where("pair_key = ?", pairKey).First(&chat).Error; err != nil {
		return nil, notFound(err, "chat")
	}
	return &chat, nil
}

// LockChat loads the chat with participants and row-locks the chat
func (r *chatRepository) LockChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := withParticipants(forUpdate(r.db.WithContext(ctx))).First(&chat, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "chat")
	}
	return &chat, nil
}

// GetChatsByUserID returns the user's chats, most recent activity first
func (r *chatRepository) GetChatsByUserID(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	db := r.db.WithContext(ctx)
	err := withParticipants(db).
		Where("id IN (?)", db.Model(&models.ChatParticipant{}).Select("chat_id").Where("user_id = ?", userID)).
		Order("last_message_at DESC").Order("id DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("get chats: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) TouchChat(ctx context.Context, chatID string, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", chatID).UpdateColumn("last_message_at", at).Error; err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

// IncrementUnreadExcept bumps the unread counter of every participant but the sender
func (r *chatRepository) IncrementUnreadExcept(ctx context.Context, chatID, senderID string) error {
	err := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id <> ?", chatID, senderID).
		UpdateColumn("unread_count", counterExpr("unread_count", 1)).Error
	if err != nil {
		return fmt.Errorf("increment unread: %w", err)
	}
	return nil
}

func (r *chatRepository) ResetUnread(ctx context.Context, chatID, userID string) error {
	err := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		UpdateColumn("unread_count", 0).Error
	if err != nil {
		return fmt.Errorf("reset unread: %w", err)
	}
	return nil
}

// SumUnread totals the user's unread counters across all chats
func (r *chatRepository) SumUnread(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(unread_count), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum unread: %w", err)
	}
	return total, nil
}
