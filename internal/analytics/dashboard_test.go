package analytics

import (
	"testing"
	"time"

	"github.com/craftfolio/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRate(t *testing.T) {
	testCases := []struct {
		name     string
		views    int64
		likes    int64
		comments int64
		expected float64
	}{
		{"zero views", 0, 10, 5, 0},
		{"no engagement", 100, 0, 0, 0},
		{"fifteen percent", 100, 10, 5, 15},
		{"rounds to two decimals", 3, 1, 0, 33.33},
		{"rounds up", 3, 2, 0, 66.67},
		{"over one hundred percent", 10, 10, 10, 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EngagementRate(tc.views, tc.likes, tc.comments))
		})
	}
}

func TestBuildDailySeriesZeroFills(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

	series := BuildDailySeries(nil, now)

	require.Len(t, series, DashboardDays)
	assert.Equal(t, "2026-08-02", series[0].Date, "Series should start at the oldest day")
	assert.Equal(t, "2026-08-31", series[len(series)-1].Date, "Series should end today")

	for _, point := range series {
		assert.Equal(t, int64(0), point.Views)
	}
}

func TestBuildDailySeriesOrderedOldestFirst(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	series := BuildDailySeries(nil, now)

	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Date, series[i].Date, "Dates should be strictly increasing")
	}
}

func TestBuildDailySeriesMapsBuckets(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	rows := []models.ProjectDailyStat{
		{Day: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), Views: 5},
		{Day: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), Views: 3},
		{Day: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), Views: 7},
	}

	series := BuildDailySeries(rows, now)

	require.Len(t, series, DashboardDays)
	byDate := make(map[string]int64, len(series))
	for _, point := range series {
		byDate[point.Date] = point.Views
	}

	assert.Equal(t, int64(5), byDate["2026-08-31"])
	assert.Equal(t, int64(3), byDate["2026-08-20"])
	assert.Equal(t, int64(7), byDate["2026-08-02"], "Oldest in-window day should be included")
	assert.Equal(t, int64(0), byDate["2026-08-21"], "Days without a bucket should be zero")
}

func TestBuildDailySeriesSumsProjects(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	// Two projects viewed on the same day roll up into one point
	rows := []models.ProjectDailyStat{
		{ProjectID: "project-a", Day: day, Views: 4},
		{ProjectID: "project-b", Day: day, Views: 6},
	}

	series := BuildDailySeries(rows, now)

	var views int64
	for _, point := range series {
		if point.Date == "2026-08-30" {
			views = point.Views
		}
	}
	assert.Equal(t, int64(10), views)
}

func TestBuildDailySeriesIgnoresOutOfWindowRows(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	rows := []models.ProjectDailyStat{
		{Day: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Views: 99},
		{Day: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), Views: 50},
	}

	series := BuildDailySeries(rows, now)

	var total int64
	for _, point := range series {
		total += point.Views
	}
	assert.Equal(t, int64(0), total, "Rows before the window should not appear")
}

func TestTopProjectsOrderAndLimit(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Title: "First", UserID: "u1"},
		{ID: "p2", Title: "Second", UserID: "u1"},
		{ID: "p3", Title: "Third", UserID: "u1"},
	}
	stats := map[string]*models.ProjectStats{
		"p1": {ProjectID: "p1", ViewsTotal: 10},
		"p2": {ProjectID: "p2", ViewsTotal: 10, LikesTotal: 2},
		"p3": {ProjectID: "p3", ViewsTotal: 1},
	}

	ranked := topProjects(projects, stats, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "p2", ranked[0].ProjectID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "p1", ranked[1].ProjectID)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestTopProjectsWithoutStats(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Title: "No events yet", UserID: "u1"},
	}

	ranked := topProjects(projects, map[string]*models.ProjectStats{}, 5)

	require.Len(t, ranked, 1)
	assert.Equal(t, int64(0), ranked[0].Score, "Projects without stats rows should score zero")
}
