package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// ChatPolicy decides who may open a chat with whom
type ChatPolicy struct {
	// RequireMutualFollow additionally requires the other user to follow the requester.
	RequireMutualFollow bool
}

// ChatService keeps one chat per user pair, per-participant unread counters
// and the sent -> delivered -> seen progression of messages.
type ChatService struct {
	store  *repositories.Store
	media  *MediaService
	policy ChatPolicy
	now    Clock
	log    *zap.Logger
}

func NewChatService(store *repositories.Store, media *MediaService, policy ChatPolicy, now Clock, log *zap.Logger) *ChatService {
	return &ChatService{store: store, media: media, policy: policy, now: now, log: log}
}

// GetOrCreateChat returns the chat between requesterID and otherID,
// creating it on first use.
func (s *ChatService) GetOrCreateChat(ctx context.Context, requesterID, otherID string) (*models.Chat, error) {
	if requesterID == otherID {
		return nil, apperr.InvalidArgument("cannot chat with yourself")
	}

	var chat *models.Chat
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetUserByID(ctx, otherID); err != nil {
			return err
		}
		if err := s.checkCanChat(ctx, tx, requesterID, otherID); err != nil {
			return err
		}

		key := models.PairKey(requesterID, otherID)
		existing, err := tx.Chats.GetChatByPairKey(ctx, key)
		if err == nil {
			chat = existing
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		now := s.now()
		candidate := &models.Chat{
			PairKey:       key,
			LastMessageAt: now,
			CreatedAt:     now,
			Participants: []models.ChatParticipant{
				{UserID: requesterID},
				{UserID: otherID},
			},
		}
		if _, err := tx.Chats.CreateChat(ctx, candidate); err != nil {
			return err
		}
		// Either ours or the one a concurrent caller committed first.
		chat, err = tx.Chats.GetChatByPairKey(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) checkCanChat(ctx context.Context, tx *repositories.Store, requesterID, otherID string) error {
	follows, err := tx.Follows.IsFollowing(ctx, requesterID, otherID)
	if err != nil {
		return err
	}
	if !follows {
		return apperr.Forbidden("you can only chat with users you follow")
	}
	if !s.policy.RequireMutualFollow {
		return nil
	}
	back, err := tx.Follows.IsFollowing(ctx, otherID, requesterID)
	if err != nil {
		return err
	}
	if !back {
		return apperr.Forbidden("chat requires following each other")
	}
	return nil
}

// lockMembership locks the chat row and checks userID is a participant
func lockMembership(ctx context.Context, tx *repositories.Store, chatID, userID string) (*models.Chat, error) {
	chat, err := tx.Chats.LockChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for _, id := range chat.ParticipantIDs() {
		if id == userID {
			return chat, nil
		}
	}
	return nil, apperr.Forbidden("not a participant of this chat")
}

// SendMessage appends a text message
func (s *ChatService) SendMessage(ctx context.Context, senderID, chatID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidArgument("message content is required")
	}
	return s.send(ctx, senderID, chatID, func(tx *repositories.Store, msg *models.Message) error {
		msg.Content = &content
		return nil
	})
}

// SendMediaMessage appends a message carrying media. The reference is
// resolved now, so a later release does not change the message.
func (s *ChatService) SendMediaMessage(ctx context.Context, senderID, chatID string, req models.SendMediaMessageRequest) (*models.Message, error) {
	if !req.Kind.Valid() {
		return nil, apperr.InvalidArgument("unknown media kind " + string(req.Kind))
	}
	return s.send(ctx, senderID, chatID, func(tx *repositories.Store, msg *models.Message) error {
		url, err := s.media.Resolve(ctx, tx, senderID, req.StorageID)
		if err != nil {
			return err
		}
		kind, ref := req.Kind, req.StorageID
		msg.MediaKind, msg.MediaURL, msg.StorageID = &kind, &url, &ref
		if caption := strings.TrimSpace(req.Caption); caption != "" {
			msg.Content = &caption
		}
		return nil
	})
}

func (s *ChatService) send(ctx context.Context, senderID, chatID string, fill func(tx *repositories.Store, msg *models.Message) error) (*models.Message, error) {
	var msg *models.Message
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := lockMembership(ctx, tx, chatID, senderID); err != nil {
			return err
		}
		msg = &models.Message{
			ChatID:    chatID,
			SenderID:  senderID,
			Status:    models.MessageSent,
			CreatedAt: s.now(),
		}
		if err := fill(tx, msg); err != nil {
			return err
		}
		if err := tx.Messages.CreateMessage(ctx, msg); err != nil {
			return err
		}
		if err := tx.Chats.TouchChat(ctx, chatID, msg.CreatedAt); err != nil {
			return err
		}
		return tx.Chats.IncrementUnreadExcept(ctx, chatID, senderID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("message sent", zap.String("chat_id", chatID), zap.String("message_id", msg.ID))
	return msg, nil
}

// MarkDelivered moves the other participants' sent messages to delivered
func (s *ChatService) MarkDelivered(ctx context.Context, chatID, readerID string) (int64, error) {
	var n int64
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := lockMembership(ctx, tx, chatID, readerID); err != nil {
			return err
		}
		var err error
		n, err = tx.Messages.AdvanceStatus(ctx, chatID, readerID, models.MessageDelivered)
		return err
	})
	return n, err
}

// MarkRead moves every unseen message from the other participants to seen
// and clears the reader's unread counter.
func (s *ChatService) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	var n int64
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := lockMembership(ctx, tx, chatID, readerID); err != nil {
			return err
		}
		var err error
		if n, err = tx.Messages.AdvanceStatus(ctx, chatID, readerID, models.MessageSeen); err != nil {
			return err
		}
		return tx.Chats.ResetUnread(ctx, chatID, readerID)
	})
	return n, err
}

// GetChats lists userID's chats by most recent activity
func (s *ChatService) GetChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	var summaries []models.ChatSummary
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		chats, err := tx.Chats.GetChatsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		chatIDs := make([]string, 0, len(chats))
		var otherIDs []string
		for _, c := range chats {
			chatIDs = append(chatIDs, c.ID)
			for _, id := range c.ParticipantIDs() {
				if id != userID {
					otherIDs = append(otherIDs, id)
				}
			}
		}
		users, err := tx.Users.GetUsersByIDs(ctx, otherIDs)
		if err != nil {
			return err
		}
		last, err := tx.Messages.GetLastMessages(ctx, chatIDs)
		if err != nil {
			return err
		}

		summaries = make([]models.ChatSummary, 0, len(chats))
		for _, c := range chats {
			summary := models.ChatSummary{ID: c.ID, LastMessageAt: c.LastMessageAt}
			for _, p := range c.Participants {
				if p.UserID == userID {
					summary.UnreadCount = p.UnreadCount
					continue
				}
				u, ok := users[p.UserID]
				if !ok {
					continue
				}
				summary.OtherUser = u.ToCompact()
			}
			if summary.OtherUser.ID == "" {
				continue
			}
			if m, ok := last[c.ID]; ok {
				summary.LastMessage = &models.MessagePreview{Content: preview(m), CreatedAt: m.CreatedAt}
			}
			summaries = append(summaries, summary)
		}
		return nil
	})
	return summaries, err
}

func preview(m models.Message) string {
	if m.Content != nil {
		return *m.Content
	}
	if m.MediaKind != nil {
		return "[" + string(*m.MediaKind) + "]"
	}
	return ""
}

// GetMessages returns the chat's messages newest first. Only participants may read them.
func (s *ChatService) GetMessages(ctx context.Context, userID, chatID string) ([]models.MessageView, error) {
	var views []models.MessageView
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		chat, err := tx.Chats.GetChatByID(ctx, chatID)
		if err != nil {
			return err
		}
		member := false
		for _, id := range chat.ParticipantIDs() {
			member = member || id == userID
		}
		if !member {
			return apperr.Forbidden("not a participant of this chat")
		}
		messages, err := tx.Messages.GetMessagesByChatID(ctx, chatID)
		if err != nil {
			return err
		}
		views = make([]models.MessageView, 0, len(messages))
		for _, m := range messages {
			views = append(views, models.MessageView{Message: m, IsSender: m.SenderID == userID})
		}
		return nil
	})
	return views, err
}

// GetUnreadCount sums userID's unread counters over every chat
func (s *ChatService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		total, err = tx.Chats.SumUnread(ctx, userID)
		return err
	})
	return total, err
}
