package repositories

import (
	"context"
	"fmt"
)

// repairStatements recompute every denormalized counter from the rows it derives from.
var repairStatements = []struct {
	name string
	sql  string
}{
	{"user posts", `UPDATE users SET posts = (SELECT COUNT(*) FROM posts WHERE posts.author_id = users.id)`},
	{"user followers", `UPDATE users SET followers = (SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id)`},
	{"user following", `UPDATE users SET following = (SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id)`},
	{"post likes", `UPDATE posts SET likes = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)`},
	{"post comments", `UPDATE posts SET comments = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)`},
	{"story views", `UPDATE stories SET views = (SELECT COUNT(*) FROM story_views WHERE story_views.story_id = stories.id)`},
	{"chat unread", `UPDATE chat_participants SET unread_count = (SELECT COUNT(*) FROM messages
		WHERE messages.chat_id = chat_participants.chat_id
		AND messages.sender_id <> chat_participants.user_id
		AND messages.status <> 'seen')`},
}

// RepairCounters rescans the graph and rewrites all counters in one transaction.
// It is migration tooling only; request paths never recompute counters.
func (s *Store) RepairCounters(ctx context.Context) (map[string]int64, error) {
	touched := make(map[string]int64, len(repairStatements))
	err := s.Transaction(ctx, func(tx *Store) error {
		for _, st := range repairStatements {
			res := tx.db.WithContext(ctx).Exec(st.sql)
			if res.Error != nil {
				return fmt.Errorf("repair %s: %w", st.name, res.Error)
			}
			touched[st.name] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}
