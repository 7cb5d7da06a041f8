package analytics

import (
	"testing"

	"github.com/craftfolio/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestScoreFormula(t *testing.T) {
	testCases := []struct {
		name     string
		views    int64
		likes    int64
		comments int64
		expected int64
	}{
		{"all zero", 0, 0, 0, 0},
		{"single view", 1, 0, 0, 1},
		{"single like", 0, 1, 0, 10},
		{"single comment", 0, 0, 1, 15},
		{"mixed counters", 100, 10, 5, 275},
		{"views only", 1000, 0, 0, 1000},
		{"large counts", 1_000_000, 50_000, 10_000, 1_650_000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Score(tc.views, tc.likes, tc.comments))
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	// No time component, so the same counters always score the same
	first := Score(42, 7, 3)
	second := Score(42, 7, 3)
	assert.Equal(t, first, second)
}

func TestScoreMonotonic(t *testing.T) {
	base := Score(10, 2, 1)

	assert.Greater(t, Score(11, 2, 1), base, "More views should score higher")
	assert.Greater(t, Score(10, 3, 1), base, "More likes should score higher")
	assert.Greater(t, Score(10, 2, 2), base, "More comments should score higher")
}

func TestScoreStats(t *testing.T) {
	stats := &models.ProjectStats{
		ViewsTotal:    100,
		LikesTotal:    10,
		CommentsTotal: 5,
	}

	assert.Equal(t, int64(275), ScoreStats(stats))
	assert.Equal(t, int64(0), ScoreStats(nil), "Nil stats should score zero")
}

func TestScoreStatsMatchesModelMethod(t *testing.T) {
	stats := &models.ProjectStats{
		ViewsTotal:    37,
		LikesTotal:    12,
		CommentsTotal: 4,
	}

	assert.Equal(t, int64(stats.PopularityScore()), ScoreStats(stats))
}
