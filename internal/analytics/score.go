package analytics

import "github.com/craftfolio/backend/internal/models"

// Score weights per interaction kind. Views are the baseline, likes and
// comments signal stronger intent.
const (
	ViewWeight    = 1
	LikeWeight    = 10
	CommentWeight = 15
)

// Score computes the popularity score for a set of counters.
// The formula is pure and has no time decay, so the same counters
// always produce the same score.
func Score(views, likes, comments int64) int64 {
	return views*ViewWeight + likes*LikeWeight + comments*CommentWeight
}

// ScoreStats computes the popularity score from a stats row
func ScoreStats(s *models.ProjectStats) int64 {
	if s == nil {
		return 0
	}
	return Score(int64(s.ViewsTotal), int64(s.LikesTotal), int64(s.CommentsTotal))
}
