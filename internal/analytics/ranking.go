package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scope selects the ranking window
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeWeekly Scope = "weekly"
)

// WeeklyWindowDays is how many UTC day buckets the weekly scope covers,
// today's bucket included
const WeeklyWindowDays = 7

// UserRank is one row of the user leaderboard
type UserRank struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	AvatarURL     string `json:"avatar_url"`
	ProjectCount  int    `json:"project_count"`
	TotalViews    int64  `json:"total_views"`
	TotalLikes    int64  `json:"total_likes"`
	TotalComments int64  `json:"total_comments"`
	TotalScore    int64  `json:"total_score"`
}

// ProjectRank is one row of the project leaderboard
type ProjectRank struct {
	Rank      int    `json:"rank"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	OwnerID   string `json:"owner_id"`
	Username  string `json:"username"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	Comments  int64  `json:"comments"`
	Score     int64  `json:"score"`
}

// TagRank aggregates the projects carrying one tag
type TagRank struct {
	Rank         int     `json:"rank"`
	Tag          string  `json:"tag"`
	ProjectCount int     `json:"project_count"`
	TotalScore   int64   `json:"total_score"`
	AvgScore     float64 `json:"avg_score"`
}

// Scanner computes leaderboards with a full scan over public subjects.
// Ranking is read-heavy but rarely requested, and results are served
// through a short-TTL cache, so the scan recomputes from the counter
// store on every miss.
type Scanner struct {
	db *gorm.DB
}

// NewScanner creates a ranking scanner on the given database handle
func NewScanner(db *gorm.DB) *Scanner {
	return &Scanner{db: db}
}

// projectCounters are the summed counters used for scoring one project
type projectCounters struct {
	views    int64
	likes    int64
	comments int64
}

// countersFor loads the counters for one project under the given scope.
// Global reads lifetime totals; weekly sums the daily buckets inside the
// trailing window.
func (s *Scanner) countersFor(ctx context.Context, projectID string, scope Scope, now time.Time) (projectCounters, error) {
	var c projectCounters

	if scope == ScopeWeekly {
		// Today's bucket plus the six previous UTC days, exactly seven buckets
		since := utcDay(now).AddDate(0, 0, -(WeeklyWindowDays - 1))
		row := struct {
			Views    int64
			Likes    int64
			Comments int64
		}{}
		err := s.db.WithContext(ctx).Model(&models.ProjectDailyStat{}).
			Select("COALESCE(SUM(views), 0) AS views, COALESCE(SUM(likes), 0) AS likes, COALESCE(SUM(comments), 0) AS comments").
			Where("project_id = ? AND day >= ?", projectID, since).
			Scan(&row).Error
		if err != nil {
			return c, err
		}
		c.views, c.likes, c.comments = row.Views, row.Likes, row.Comments
		return c, nil
	}

	var stats models.ProjectStats
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	c.views = int64(stats.ViewsTotal)
	c.likes = int64(stats.LikesTotal)
	c.comments = int64(stats.CommentsTotal)
	return c, nil
}

// RankUsers builds the user leaderboard. Subjects are fetched in account
// creation order and the descending sort is stable, so ties go to the
// older account. Weekly scope drops users with a zero score; global
// keeps them at the bottom. Returns the page and the total subject count.
func (s *Scanner) RankUsers(ctx context.Context, scope Scope, skip, limit int) ([]UserRank, int, error) {
	now := time.Now().UTC()

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("is_public = ? AND is_banned = ?", true, false).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	ranked := make([]UserRank, 0, len(users))
	for _, user := range users {
		var projects []models.Project
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND is_published = ?", user.ID, true).
			Find(&projects).Error
		if err != nil {
			logger.Log.Warn("Ranking scan skipping user",
				zap.String("user_id", user.ID), zap.Error(err))
			continue
		}

		entry := UserRank{
			UserID:       user.ID,
			Username:     user.Username,
			DisplayName:  user.DisplayName,
			AvatarURL:    user.AvatarURL,
			ProjectCount: len(projects),
		}
		failed := false
		for _, project := range projects {
			c, err := s.countersFor(ctx, project.ID, scope, now)
			if err != nil {
				logger.Log.Warn("Ranking scan skipping user",
					zap.String("user_id", user.ID),
					zap.String("project_id", project.ID),
					zap.Error(err))
				failed = true
				break
			}
			entry.TotalViews += c.views
			entry.TotalLikes += c.likes
			entry.TotalComments += c.comments
		}
		if failed {
			continue
		}
		entry.TotalScore = Score(entry.TotalViews, entry.TotalLikes, entry.TotalComments)

		// Weekly ranks active users only
		if scope == ScopeWeekly && entry.TotalScore == 0 {
			continue
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	total := len(ranked)
	page := pageSlice(ranked, skip, limit)
	for i := range page {
		page[i].Rank = skip + i + 1
	}
	return page, total, nil
}

// RankProjects builds the project leaderboard over published projects of
// public users
func (s *Scanner) RankProjects(ctx context.Context, scope Scope, skip, limit int) ([]ProjectRank, int, error) {
	now := time.Now().UTC()

	projects, err := s.publicProjects(ctx)
	if err != nil {
		return nil, 0, err
	}

	ranked := make([]ProjectRank, 0, len(projects))
	for _, project := range projects {
		c, err := s.countersFor(ctx, project.ID, scope, now)
		if err != nil {
			logger.Log.Warn("Ranking scan skipping project",
				zap.String("project_id", project.ID), zap.Error(err))
			continue
		}
		score := Score(c.views, c.likes, c.comments)
		if scope == ScopeWeekly && score == 0 {
			continue
		}
		ranked = append(ranked, ProjectRank{
			ProjectID: project.ID,
			Title:     project.Title,
			OwnerID:   project.UserID,
			Username:  project.User.Username,
			Views:     c.views,
			Likes:     c.likes,
			Comments:  c.comments,
			Score:     score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	total := len(ranked)
	page := pageSlice(ranked, skip, limit)
	for i := range page {
		page[i].Rank = skip + i + 1
	}
	return page, total, nil
}

// RankTags aggregates scores per tag across public projects. Tags are
// pre-sorted alphabetically before the stable score sort, so equal
// scores order deterministically.
func (s *Scanner) RankTags(ctx context.Context, skip, limit int) ([]TagRank, int, error) {
	now := time.Now().UTC()

	projects, err := s.publicProjects(ctx)
	if err != nil {
		return nil, 0, err
	}

	byTag := make(map[string]*TagRank)
	for _, project := range projects {
		if len(project.Tags) == 0 {
			continue
		}
		c, err := s.countersFor(ctx, project.ID, ScopeGlobal, now)
		if err != nil {
			logger.Log.Warn("Tag ranking skipping project",
				zap.String("project_id", project.ID), zap.Error(err))
			continue
		}
		score := Score(c.views, c.likes, c.comments)
		for _, tag := range project.Tags {
			entry, ok := byTag[tag]
			if !ok {
				entry = &TagRank{Tag: tag}
				byTag[tag] = entry
			}
			entry.ProjectCount++
			entry.TotalScore += score
		}
	}

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	ranked := make([]TagRank, 0, len(tags))
	for _, tag := range tags {
		entry := byTag[tag]
		entry.AvgScore = float64(entry.TotalScore) / float64(entry.ProjectCount)
		ranked = append(ranked, *entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	total := len(ranked)
	page := pageSlice(ranked, skip, limit)
	for i := range page {
		page[i].Rank = skip + i + 1
	}
	return page, total, nil
}

// publicProjects fetches published projects owned by public, unbanned users
func (s *Scanner) publicProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = projects.user_id").
		Where("projects.is_published = ? AND users.is_public = ? AND users.is_banned = ? AND users.deleted_at IS NULL",
			true, true, false).
		Order("projects.created_at ASC").
		Find(&projects).Error
	return projects, err
}

// pageSlice applies skip/limit bounds to a ranked slice
func pageSlice[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
