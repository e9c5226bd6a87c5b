package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups every repository over one *gorm.DB. Inside Transaction all of
// them share the same transaction, so counter updates commit or roll back
// together with the edge that caused them.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Follows       FollowRepository
	Posts         PostRepository
	Likes         LikeRepository
	Comments      CommentRepository
	Bookmarks     BookmarkRepository
	Notifications NotificationRepository
	Stories       StoryRepository
	Chats         ChatRepository
	Messages      MessageRepository
	Media         MediaRepository
}

// NewStore creates a Store bound to db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Posts:         NewPostgresPostRepository(db),
		Likes:         NewPostgresLikeRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		Bookmarks:     NewPostgresBookmarkRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
		Stories:       NewPostgresStoryRepository(db),
		Chats:         NewPostgresChatRepository(db),
		Messages:      NewPostgresMessageRepository(db),
		Media:         NewPostgresMediaRepository(db),
	}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store whose repositories all use one transaction.
// A returned error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Models lists every persisted model, in migration order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostMedia{},
		&models.Like{},
		&models.Comment{},
		&models.Bookmark{},
		&models.Notification{},
		&models.Story{},
		&models.StoryView{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.MediaObject{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// counterExpr adds delta to column and floors the result at zero.
// column is always a constant from this package.
func counterExpr(column string, delta int64) clause.Expr {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta)
}

// forUpdate locks the selected rows until the transaction ends. Dialects
// without row locks (sqlite) drop the clause and serialise writers instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return fmt.Errorf("get %s: %w", entity, err)
}
