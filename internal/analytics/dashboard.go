package analytics

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/craftfolio/backend/internal/models"
	"gorm.io/gorm"
)

// DashboardDays is the length of the daily view series
const DashboardDays = 30

// DailyPoint is one day of the dashboard view series
type DailyPoint struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// Dashboard is the owner-facing analytics summary
type Dashboard struct {
	TotalProjects  int                       `json:"total_projects"`
	TotalViews     int64                     `json:"total_views"`
	TotalLikes     int64                     `json:"total_likes"`
	TotalComments  int64                     `json:"total_comments"`
	UniqueViewers  int64                     `json:"unique_viewers"`
	EngagementRate float64                   `json:"engagement_rate"`
	TotalScore     int64                     `json:"total_score"`
	TopProjects    []ProjectRank             `json:"top_projects"`
	DailyViews     []DailyPoint              `json:"daily_views"`
	RecentActivity []models.ActivityLogEntry `json:"recent_activity"`
}

// Aggregator builds per-owner dashboards from the counter store
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates an Aggregator on the given database handle
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// EngagementRate computes (likes+comments)/views as a percentage rounded
// to two decimals. Zero views means zero rate, never a division error.
func EngagementRate(views, likes, comments int64) float64 {
	if views == 0 {
		return 0
	}
	rate := float64(likes+comments) / float64(views) * 100
	return math.Round(rate*100) / 100
}

// BuildDailySeries zero-fills the trailing window into exactly
// DashboardDays points, oldest first. Days carry UTC dates formatted as
// 2006-01-02.
func BuildDailySeries(rows []models.ProjectDailyStat, now time.Time) []DailyPoint {
	byDay := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := row.Day.UTC().Format("2006-01-02")
		byDay[key] += int64(row.Views)
	}

	start := utcDay(now).AddDate(0, 0, -(DashboardDays - 1))
	series := make([]DailyPoint, 0, DashboardDays)
	for i := 0; i < DashboardDays; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		series = append(series, DailyPoint{Date: key, Views: byDay[key]})
	}
	return series
}

// BuildDashboard assembles the analytics summary for a project owner
func (a *Aggregator) BuildDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	var projects []models.Project
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		TotalProjects:  len(projects),
		TopProjects:    []ProjectRank{},
		DailyViews:     []DailyPoint{},
		RecentActivity: []models.ActivityLogEntry{},
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	if len(projectIDs) > 0 {
		var statRows []models.ProjectStats
		err = a.db.WithContext(ctx).
			Where("project_id IN ?", projectIDs).
			Find(&statRows).Error
		if err != nil {
			return nil, err
		}

		statsByProject := make(map[string]*models.ProjectStats, len(statRows))
		for i := range statRows {
			row := &statRows[i]
			statsByProject[row.ProjectID] = row
			dash.TotalViews += int64(row.ViewsTotal)
			dash.TotalLikes += int64(row.LikesTotal)
			dash.TotalComments += int64(row.CommentsTotal)
		}

		// Unique viewers across the whole portfolio, deduplicated by the
		// membership table rather than summing per-project counts
		err = a.db.WithContext(ctx).Model(&models.ProjectViewer{}).
			Where("project_id IN ?", projectIDs).
			Distinct("viewer_id").
			Count(&dash.UniqueViewers).Error
		if err != nil {
			return nil, err
		}

		dash.TopProjects = topProjects(projects, statsByProject, 5)

		since := utcDay(time.Now()).AddDate(0, 0, -(DashboardDays - 1))
		var dailyRows []models.ProjectDailyStat
		err = a.db.WithContext(ctx).
			Where("project_id IN ? AND day >= ?", projectIDs, since).
			Find(&dailyRows).Error
		if err != nil {
			return nil, err
		}
		dash.DailyViews = BuildDailySeries(dailyRows, time.Now())
	} else {
		dash.DailyViews = BuildDailySeries(nil, time.Now())
	}

	dash.EngagementRate = EngagementRate(dash.TotalViews, dash.TotalLikes, dash.TotalComments)
	dash.TotalScore = Score(dash.TotalViews, dash.TotalLikes, dash.TotalComments)

	err = a.db.WithContext(ctx).
		Where("actor_id = ?", userID).
		Order("created_at DESC").
		Limit(10).
		Find(&dash.RecentActivity).Error
	if err != nil {
		return nil, err
	}

	return dash, nil
}

// topProjects picks the highest-scoring projects from the owner's portfolio
func topProjects(projects []models.Project, stats map[string]*models.ProjectStats, limit int) []ProjectRank {
	ranked := make([]ProjectRank, 0, len(projects))
	for _, project := range projects {
		row := stats[project.ID]
		entry := ProjectRank{
			ProjectID: project.ID,
			Title:     project.Title,
			OwnerID:   project.UserID,
		}
		if row != nil {
			entry.Views = int64(row.ViewsTotal)
			entry.Likes = int64(row.LikesTotal)
			entry.Comments = int64(row.CommentsTotal)
			entry.Score = ScoreStats(row)
		}
		ranked = append(ranked, entry)
	}

	// Stable so equally scored projects keep portfolio order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// AudienceProject is the per-project audience breakdown
type AudienceProject struct {
	ProjectID     string `json:"project_id"`
	Title         string `json:"title"`
	Views         int64  `json:"views"`
	UniqueViewers int64  `json:"unique_viewers"`
}

// Audience summarizes who is viewing an owner's portfolio
type Audience struct {
	UniqueViewers int64             `json:"unique_viewers"`
	TotalViews    int64             `json:"total_views"`
	Projects      []AudienceProject `json:"projects"`
}

// BuildAudience assembles the audience breakdown for a project owner
func (a *Aggregator) BuildAudience(ctx context.Context, userID string) (*Audience, error) {
	var projects []models.Project
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	audience := &Audience{Projects: []AudienceProject{}}
	if len(projects) == 0 {
		return audience, nil
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	err = a.db.WithContext(ctx).Model(&models.ProjectViewer{}).
		Where("project_id IN ?", projectIDs).
		Distinct("viewer_id").
		Count(&audience.UniqueViewers).Error
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		entry := AudienceProject{ProjectID: project.ID, Title: project.Title}

		var stats models.ProjectStats
		err := a.db.WithContext(ctx).
			Where("project_id = ?", project.ID).
			First(&stats).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		entry.Views = int64(stats.ViewsTotal)
		audience.TotalViews += entry.Views

		err = a.db.WithContext(ctx).Model(&models.ProjectViewer{}).
			Where("project_id = ?", project.ID).
			Count(&entry.UniqueViewers).Error
		if err != nil {
			return nil, err
		}

		audience.Projects = append(audience.Projects, entry)
	}

	return audience, nil
}

// WriteCSV streams the per-project stats export. One row per project
// with a fixed header row.
func (a *Aggregator) WriteCSV(ctx context.Context, w io.Writer, userID string) error {
	var projects []models.Project
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&projects).Error
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "views", "uniqueViews", "likes", "comments", "popularityScore"}); err != nil {
		return err
	}

	for _, project := range projects {
		var stats models.ProjectStats
		err := a.db.WithContext(ctx).
			Where("project_id = ?", project.ID).
			First(&stats).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}

		var uniqueViews int64
		err = a.db.WithContext(ctx).Model(&models.ProjectViewer{}).
			Where("project_id = ?", project.ID).
			Count(&uniqueViews).Error
		if err != nil {
			return err
		}

		record := []string{
			project.Title,
			strconv.Itoa(stats.ViewsTotal),
			strconv.FormatInt(uniqueViews, 10),
			strconv.Itoa(stats.LikesTotal),
			strconv.Itoa(stats.CommentsTotal),
			strconv.FormatInt(ScoreStats(&stats), 10),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
