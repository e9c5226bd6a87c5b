package services

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"go.uber.org/zap"
)

// StoryService manages 24 hour stories and their distinct viewers
type StoryService struct {
	store *repositories.Store
	media *MediaService
	now   Clock
	log   *zap.Logger
}

func NewStoryService(store *repositories.Store, media *MediaService, now Clock, log *zap.Logger) *StoryService {
	return &StoryService{store: store, media: media, now: now, log: log}
}

func (s *StoryService) CreateStory(ctx context.Context, authorID, ref string) (*models.Story, error) {
	var story *models.Story
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.GetUserByID(ctx, authorID); err != nil {
			return err
		}
		url, err := s.media.Resolve(ctx, tx, authorID, ref)
		if err != nil {
			return err
		}
		now := s.now()
		story = &models.Story{
			AuthorID:  authorID,
			ImageURL:  url,
			StorageID: ref,
			CreatedAt: now,
			ExpiresAt: now.Add(models.StoryTTL),
		}
		return tx.Stories.CreateStory(ctx, story)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("story created", zap.String("story_id", story.ID), zap.Time("expires_at", story.ExpiresAt))
	return story, nil
}

// GetActiveStoriesForViewer groups the unexpired stories of the viewer and
// everyone the viewer follows. The viewer's own group comes first, the rest
// are ordered by their most recent story.
func (s *StoryService) GetActiveStoriesForViewer(ctx context.Context, viewerID string) ([]models.StoryGroup, error) {
	var groups []models.StoryGroup
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		following, err := tx.Follows.GetFollowingIDs(ctx, viewerID)
		if err != nil {
			return err
		}
		authorIDs := append([]string{viewerID}, following...)
		stories, err := tx.Stories.GetActiveStoriesByUserIDs(ctx, authorIDs, s.now())
		if err != nil {
			return err
		}
		authors, err := tx.Users.GetUsersByIDs(ctx, authorIDs)
		if err != nil {
			return err
		}

		byAuthor := make(map[string]int)
		for _, story := range stories {
			author, ok := authors[story.AuthorID]
			if !ok {
				continue
			}
			i, ok := byAuthor[story.AuthorID]
			if !ok {
				i = len(groups)
				byAuthor[story.AuthorID] = i
				groups = append(groups, models.StoryGroup{Author: author.ToCompact()})
			}
			groups[i].Stories = append(groups[i].Stories, story)
		}

		sort.SliceStable(groups, func(i, j int) bool {
			gi, gj := groups[i], groups[j]
			if (gi.Author.ID == viewerID) != (gj.Author.ID == viewerID) {
				return gi.Author.ID == viewerID
			}
			return latest(gi).After(latest(gj))
		})
		return nil
	})
	return groups, err
}

func latest(g models.StoryGroup) time.Time {
	return g.Stories[len(g.Stories)-1].CreatedAt
}

// ViewStory records viewerID as a viewer of storyID. The view counter moves
// only for the first view by a given viewer; the return value reports that.
func (s *StoryService) ViewStory(ctx context.Context, viewerID, storyID string) (bool, error) {
	var counted bool
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		story, err := tx.Stories.LockStory(ctx, storyID)
		if err != nil {
			return err
		}
		now := s.now()
		if !story.ActiveAt(now) {
			return apperr.NotFound("story")
		}
		inserted, err := tx.Stories.CreateView(ctx, &models.StoryView{StoryID: storyID, UserID: viewerID, ViewedAt: now})
		if err != nil || !inserted {
			return err
		}
		counted = true
		return tx.Stories.IncrementViews(ctx, storyID)
	})
	if err != nil {
		return false, err
	}
	return counted, nil
}

func (s *StoryService) GetViewedStoryIDs(ctx context.Context, viewerID string) ([]string, error) {
	var ids []string
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		ids, err = tx.Stories.GetViewedStoryIDs(ctx, viewerID)
		return err
	})
	return ids, err
}

// DeleteStory removes a story, its views and its media. Only the author may delete.
func (s *StoryService) DeleteStory(ctx context.Context, requesterID, storyID string) error {
	var ref string
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		story, err := tx.Stories.LockStory(ctx, storyID)
		if err != nil {
			return err
		}
		if story.AuthorID != requesterID {
			return apperr.Forbidden("only the author can delete this story")
		}
		if err := tx.Stories.DeleteViewsByStoryID(ctx, storyID); err != nil {
			return err
		}
		if err := tx.Stories.DeleteStory(ctx, storyID); err != nil {
			return err
		}
		ref = story.StorageID
		return s.media.releaseRows(ctx, tx, []string{ref})
	})
	if err != nil {
		return err
	}
	s.media.purge(ctx, []string{ref})
	return nil
}
