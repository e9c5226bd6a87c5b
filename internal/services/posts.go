package services

import (
	"context"
	"strings"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// PostService owns posts, likes, comments and bookmarks and the counters
// derived from them.
type PostService struct {
	store         *repositories.Store
	media         *MediaService
	notifications *NotificationService
	now           Clock
	log           *zap.Logger
}

func NewPostService(store *repositories.Store, media *MediaService, notifications *NotificationService, now Clock, log *zap.Logger) *PostService {
	return &PostService{store: store, media: media, notifications: notifications, now: now, log: log}
}

// CreatePost publishes a post. The first reference becomes the primary
// media, the rest are kept in order as additional media.
func (s *PostService) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error) {
	if len(req.StorageIDs) == 0 {
		return nil, apperr.InvalidArgument("at least one media reference is required")
	}
	kind := req.Kind
	if kind == "" {
		kind = models.MediaImage
	}
	if !kind.Valid() {
		return nil, apperr.InvalidArgument("unknown media kind " + string(kind))
	}
	seen := make(map[string]bool, len(req.StorageIDs))
	for _, ref := range req.StorageIDs {
		if seen[ref] {
			return nil, apperr.InvalidArgument("duplicate media reference " + ref)
		}
		seen[ref] = true
	}

	var post *models.Post
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetUserByID(ctx, authorID); err != nil {
			return err
		}
		urls := make([]string, len(req.StorageIDs))
		for i, ref := range req.StorageIDs {
			url, err := s.media.Resolve(ctx, tx, authorID, ref)
			if err != nil {
				return err
			}
			urls[i] = url
		}

		post = &models.Post{
			AuthorID:  authorID,
			ImageURL:  urls[0],
			StorageID: req.StorageIDs[0],
			Caption:   strings.TrimSpace(req.Caption),
			Kind:      kind,
			CreatedAt: s.now(),
		}
		for i := 1; i < len(urls); i++ {
			post.AdditionalMedia = append(post.AdditionalMedia, models.PostMedia{
				Position:  i,
				URL:       urls[i],
				StorageID: req.StorageIDs[i],
			})
		}
		if err := tx.Posts.CreatePost(ctx, post); err != nil {
			return err
		}
		return tx.Users.AdjustCounter(ctx, authorID, repositories.CounterPosts, 1)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("post created", zap.String("post_id", post.ID), zap.String("author_id", authorID))
	return post, nil
}

// GetFeed returns every post newest first, annotated for viewerID
func (s *PostService) GetFeed(ctx context.Context, viewerID string) ([]models.FeedPost, error) {
	var feed []models.FeedPost
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		posts, err := tx.Posts.GetAllPosts(ctx)
		if err != nil {
			return err
		}
		feed, err = s.annotate(ctx, tx, viewerID, posts)
		return err
	})
	return feed, err
}

// GetPostsByUser returns userID's posts newest first, annotated for viewerID
func (s *PostService) GetPostsByUser(ctx context.Context, viewerID, userID string) ([]models.FeedPost, error) {
	var result []models.FeedPost
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetUserByID(ctx, userID); err != nil {
			return err
		}
		posts, err := tx.Posts.GetPostsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		result, err = s.annotate(ctx, tx, viewerID, posts)
		return err
	})
	return result, err
}

func (s *PostService) annotate(ctx context.Context, tx *repositories.Store, viewerID string, posts []models.Post) ([]models.FeedPost, error) {
	postIDs := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := tx.Users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	liked, err := tx.Likes.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}
	bookmarked, err := tx.Bookmarks.GetBookmarkedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[p.AuthorID]
		if !ok {
			continue
		}
		result = append(result, models.FeedPost{
			Post:         p,
			Author:       author.ToCompact(),
			IsLiked:      liked[p.ID],
			IsBookmarked: bookmarked[p.ID],
		})
	}
	return result, nil
}

// ToggleLike flips userID's like on postID and returns the new state
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	var liked bool
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tx.Posts.LockPost(ctx, postID)
		if err != nil {
			return err
		}
		removed, err := tx.Likes.DeleteLike(ctx, postID, userID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return tx.Posts.AdjustCounter(ctx, postID, repositories.CounterLikes, -1)
		}

		inserted, err := tx.Likes.CreateLike(ctx, &models.Like{UserID: userID, PostID: postID, CreatedAt: s.now()})
		if err != nil {
			return err
		}
		liked = true
		if !inserted {
			return nil
		}
		if err := tx.Posts.AdjustCounter(ctx, postID, repositories.CounterLikes, 1); err != nil {
			return err
		}
		_, err = s.notifications.Notify(ctx, tx, &models.Notification{
			ReceiverID: post.AuthorID,
			SenderID:   userID,
			Kind:       models.NotificationLike,
			PostID:     &post.ID,
		})
		return err
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// AddComment appends a comment and notifies the post author
func (s *PostService) AddComment(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.InvalidArgument("comment text is required")
	}

	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		post, err := tx.Posts.LockPost(ctx, postID)
		if err != nil {
			return err
		}
		comment = &models.Comment{UserID: userID, PostID: postID, Text: text, CreatedAt: s.now()}
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := tx.Posts.AdjustCounter(ctx, postID, repositories.CounterComments, 1); err != nil {
			return err
		}
		_, err = s.notifications.Notify(ctx, tx, &models.Notification{
			ReceiverID: post.AuthorID,
			SenderID:   userID,
			Kind:       models.NotificationComment,
			PostID:     &post.ID,
			CommentID:  &comment.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComments lists a post's comments oldest first with commenter summaries
func (s *PostService) GetComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	var views []models.CommentView
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Posts.GetPostByID(ctx, postID); err != nil {
			return err
		}
		comments, err := tx.Comments.GetCommentsByPostID(ctx, postID)
		if err != nil {
			return err
		}
		userIDs := make([]string, 0, len(comments))
		for _, c := range comments {
			userIDs = append(userIDs, c.UserID)
		}
		users, err := tx.Users.GetUsersByIDs(ctx, userIDs)
		if err != nil {
			return err
		}
		views = make([]models.CommentView, 0, len(comments))
		for _, c := range comments {
			u, ok := users[c.UserID]
			if !ok {
				continue
			}
			views = append(views, models.CommentView{ID: c.ID, Text: c.Text, User: u.ToCompact(), CreatedAt: c.CreatedAt})
		}
		return nil
	})
	return views, err
}

// ToggleBookmark flips userID's bookmark on postID and returns the new state
func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	var bookmarked bool
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Posts.LockPost(ctx, postID); err != nil {
			return err
		}
		removed, err := tx.Bookmarks.DeleteBookmark(ctx, userID, postID)
		if err != nil {
			return err
		}
		if removed {
			bookmarked = false
			return nil
		}
		if _, err := tx.Bookmarks.CreateBookmark(ctx, &models.Bookmark{UserID: userID, PostID: postID, CreatedAt: s.now()}); err != nil {
			return err
		}
		bookmarked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return bookmarked, nil
}

// GetBookmarkedPosts returns userID's bookmarked posts, most recent bookmark first
func (s *PostService) GetBookmarkedPosts(ctx context.Context, userID string) ([]models.FeedPost, error) {
	var result []models.FeedPost
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		bookmarks, err := tx.Bookmarks.GetBookmarksByUser(ctx, userID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(bookmarks))
		for _, b := range bookmarks {
			ids = append(ids, b.PostID)
		}
		byID, err := tx.Posts.GetPostsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		posts := make([]models.Post, 0, len(bookmarks))
		for _, b := range bookmarks {
			if p, ok := byID[b.PostID]; ok {
				posts = append(posts, p)
			}
		}
		result, err = s.annotate(ctx, tx, userID, posts)
		return err
	})
	return result, err
}

// DeletePost removes a post with everything that references it and releases
// its media. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, requesterID, postID string) error {
	var refs []string
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Posts.LockPost(ctx, postID); err != nil {
			return err
		}
		post, err := tx.Posts.GetPostByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != requesterID {
			return apperr.Forbidden("only the author can delete this post")
		}
		if _, err := tx.Likes.DeleteLikesByPostID(ctx, postID); err != nil {
			return err
		}
		if _, err := tx.Comments.DeleteCommentsByPostID(ctx, postID); err != nil {
			return err
		}
		if _, err := tx.Bookmarks.DeleteBookmarksByPostID(ctx, postID); err != nil {
			return err
		}
		if _, err := tx.Notifications.DeleteByPostID(ctx, postID); err != nil {
			return err
		}
		refs = post.StorageIDs()
		if err := s.media.releaseRows(ctx, tx, refs); err != nil {
			return err
		}
		if err := tx.Posts.DeletePost(ctx, postID); err != nil {
			return err
		}
		return tx.Users.AdjustCounter(ctx, post.AuthorID, repositories.CounterPosts, -1)
	})
	if err != nil {
		return err
	}
	s.log.Debug("post deleted", zap.String("post_id", postID), zap.Int("media", len(refs)))
	s.media.purge(ctx, refs)
	return nil
}
