package analytics

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankingTestSuite exercises the leaderboard scanner against a real database
type RankingTestSuite struct {
	suite.Suite
	db       *gorm.DB
	recorder *Recorder
	scanner  *Scanner
}

func (suite *RankingTestSuite) SetupSuite() {
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	db := openTestDB(suite.T())
	if db == nil {
		return
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectStats{},
		&models.ProjectDailyStat{},
		&models.ProjectViewer{},
		&models.ProjectLike{},
	)
	require.NoError(suite.T(), err)

	suite.db = db
	suite.recorder = NewRecorder(db)
	suite.scanner = NewScanner(db)
}

func (suite *RankingTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *RankingTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE project_stats, project_daily_stats, project_viewers, project_likes, projects, users RESTART IDENTITY CASCADE")
}

func (suite *RankingTestSuite) createUser(name string, public, banned bool) *models.User {
	user := &models.User{
		Email:       fmt.Sprintf("%s@test.com", name),
		Username:    name,
		DisplayName: name,
		IsPublic:    public,
		IsBanned:    banned,
	}
	require.NoError(suite.T(), suite.db.Create(user).Error)
	// Keep account creation order unambiguous for tie-breaking
	time.Sleep(5 * time.Millisecond)
	return user
}

func (suite *RankingTestSuite) createProject(user *models.User, title string, tags []string, published bool) *models.Project {
	project := &models.Project{
		UserID:      user.ID,
		Title:       title,
		Tags:        tags,
		IsPublished: published,
	}
	require.NoError(suite.T(), suite.db.Create(project).Error)
	return project
}

// addViews replays n views with distinct viewers at the given time
func (suite *RankingTestSuite) addViews(projectID string, n int, at time.Time) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		viewer := fmt.Sprintf("viewer-%s-%d", projectID[:8], i)
		require.NoError(suite.T(), suite.recorder.RecordView(ctx, projectID, viewer, at))
	}
}

func (suite *RankingTestSuite) TestRankUsersGlobalOrdering() {
	t := suite.T()
	now := time.Now().UTC()

	low := suite.createUser("low_scorer", true, false)
	high := suite.createUser("high_scorer", true, false)

	lowProject := suite.createProject(low, "Quiet Project", nil, true)
	highProject := suite.createProject(high, "Popular Project", nil, true)

	suite.addViews(lowProject.ID, 2, now)
	suite.addViews(highProject.ID, 20, now)

	page, total, err := suite.scanner.RankUsers(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, total)

	assert.Equal(t, high.ID, page[0].UserID)
	assert.Equal(t, 1, page[0].Rank)
	assert.Equal(t, int64(20), page[0].TotalScore)

	assert.Equal(t, low.ID, page[1].UserID)
	assert.Equal(t, 2, page[1].Rank)
}

func (suite *RankingTestSuite) TestRankUsersTieGoesToOlderAccount() {
	t := suite.T()
	now := time.Now().UTC()

	older := suite.createUser("older_account", true, false)
	newer := suite.createUser("newer_account", true, false)

	olderProject := suite.createProject(older, "Older Work", nil, true)
	newerProject := suite.createProject(newer, "Newer Work", nil, true)

	suite.addViews(olderProject.ID, 5, now)
	suite.addViews(newerProject.ID, 5, now)

	page, _, err := suite.scanner.RankUsers(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)

	assert.Equal(t, older.ID, page[0].UserID, "Equal scores should rank the older account first")
	assert.Equal(t, newer.ID, page[1].UserID)
}

func (suite *RankingTestSuite) TestRankUsersGlobalKeepsZeroScores() {
	t := suite.T()

	inactive := suite.createUser("inactive_user", true, false)
	suite.createProject(inactive, "Unseen Project", nil, true)

	page, total, err := suite.scanner.RankUsers(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, int64(0), page[0].TotalScore, "Global scope keeps zero-score users")
}

func (suite *RankingTestSuite) TestRankUsersWeeklyExcludesStaleActivity() {
	t := suite.T()
	now := time.Now().UTC()

	stale := suite.createUser("stale_user", true, false)
	active := suite.createUser("active_user", true, false)

	staleProject := suite.createProject(stale, "Old Hit", nil, true)
	activeProject := suite.createProject(active, "Fresh Work", nil, true)

	// All of stale's engagement is outside the weekly window
	suite.addViews(staleProject.ID, 50, now.AddDate(0, 0, -10))
	suite.addViews(activeProject.ID, 3, now)

	weekly, total, err := suite.scanner.RankUsers(context.Background(), ScopeWeekly, 0, 10)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, active.ID, weekly[0].UserID)

	global, _, err := suite.scanner.RankUsers(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, stale.ID, global[0].UserID, "Lifetime totals should still rank the stale user first globally")
}

func (suite *RankingTestSuite) TestRankUsersWeeklyWindowBoundary() {
	t := suite.T()
	now := time.Now().UTC()

	outside := suite.createUser("boundary_outside", true, false)
	inside := suite.createUser("boundary_inside", true, false)

	outsideProject := suite.createProject(outside, "Seven Days Ago", nil, true)
	insideProject := suite.createProject(inside, "Six Days Ago", nil, true)

	// The window is today plus the six previous UTC days, so a bucket from
	// seven days ago sits just past the cutoff
	suite.addViews(outsideProject.ID, 4, now.AddDate(0, 0, -WeeklyWindowDays))
	suite.addViews(insideProject.ID, 2, now.AddDate(0, 0, -(WeeklyWindowDays-1)))

	weekly, _, err := suite.scanner.RankUsers(context.Background(), ScopeWeekly, 0, 10)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, inside.ID, weekly[0].UserID)
	assert.Equal(t, int64(2), weekly[0].TotalScore)

	global, _, err := suite.scanner.RankUsers(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, global, 2)
}

func (suite *RankingTestSuite) TestRankUsersExcludesPrivateAndBanned() {
	t := suite.T()
	now := time.Now().UTC()

	private := suite.createUser("private_user", false, false)
	banned := suite.createUser("banned_user", true, true)
	visible := suite.createUser("visible_user", true, false)

	suite.addViews(suite.createProject(private, "Hidden", nil, true).ID, 10, now)
	suite.addViews(suite.createProject(banned, "Banned Work", nil, true).ID, 10, now)
	suite.addViews(suite.createProject(visible, "Public Work", nil, true).ID, 1, now)

	page, total, err := suite.scanner.RankUsers(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, visible.ID, page[0].UserID)
}

func (suite *RankingTestSuite) TestRankProjectsExcludesUnpublished() {
	t := suite.T()
	now := time.Now().UTC()

	user := suite.createUser("project_owner", true, false)
	published := suite.createProject(user, "Published", nil, true)
	draft := suite.createProject(user, "Draft", nil, false)

	suite.addViews(published.ID, 3, now)
	suite.addViews(draft.ID, 30, now)

	page, total, err := suite.scanner.RankProjects(context.Background(), ScopeGlobal, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, published.ID, page[0].ProjectID)
	assert.Equal(t, user.Username, page[0].Username)
}

func (suite *RankingTestSuite) TestRankProjectsPagination() {
	t := suite.T()
	now := time.Now().UTC()

	user := suite.createUser("prolific_maker", true, false)
	for i := 0; i < 5; i++ {
		project := suite.createProject(user, fmt.Sprintf("Project %d", i), nil, true)
		suite.addViews(project.ID, 5-i, now)
	}

	page, total, err := suite.scanner.RankProjects(context.Background(), ScopeGlobal, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].Rank, "Rank numbering should continue across pages")
	assert.Equal(t, 4, page[1].Rank)
	assert.Equal(t, int64(3), page[0].Score)
}

func (suite *RankingTestSuite) TestRankTagsAggregation() {
	t := suite.T()
	now := time.Now().UTC()

	user := suite.createUser("tagged_maker", true, false)
	first := suite.createProject(user, "Go Web App", []string{"go", "web"}, true)
	second := suite.createProject(user, "Go CLI", []string{"go"}, true)

	suite.addViews(first.ID, 20, now)
	suite.addViews(second.ID, 10, now)

	page, total, err := suite.scanner.RankTags(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 2)

	assert.Equal(t, "go", page[0].Tag)
	assert.Equal(t, 2, page[0].ProjectCount)
	assert.Equal(t, int64(30), page[0].TotalScore)
	assert.Equal(t, float64(15), page[0].AvgScore)

	assert.Equal(t, "web", page[1].Tag)
	assert.Equal(t, int64(20), page[1].TotalScore)
}

func (suite *RankingTestSuite) TestRankTagsTiesOrderAlphabetically() {
	t := suite.T()
	now := time.Now().UTC()

	user := suite.createUser("tie_maker", true, false)
	project := suite.createProject(user, "Dual Tagged", []string{"zeta", "alpha"}, true)
	suite.addViews(project.ID, 7, now)

	page, _, err := suite.scanner.RankTags(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)

	assert.Equal(t, "alpha", page[0].Tag, "Equal scores should order tags alphabetically")
	assert.Equal(t, "zeta", page[1].Tag)
}

func TestRankingSuite(t *testing.T) {
	if os.Getenv("SKIP_DB_TESTS") == "true" {
		t.Skip("Skipping database tests")
	}

	suite.Run(t, new(RankingTestSuite))
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3}, pageSlice(items, 0, 3))
	assert.Equal(t, []int{4, 5}, pageSlice(items, 3, 3), "Short final page")
	assert.Equal(t, []int{}, pageSlice(items, 10, 3), "Skip past the end yields an empty page")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, pageSlice(items, 0, 0), "Non-positive limit returns the rest")
	assert.Equal(t, []int{1, 2}, pageSlice(items, -5, 2), "Negative skip is clamped")
}
