package analytics

import (
	"bytes"
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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// RecorderTestSuite exercises the counter store against a real database
type RecorderTestSuite struct {
	suite.Suite
	db          *gorm.DB
	recorder    *Recorder
	testUser    *models.User
	testProject *models.Project
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func openTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "craftfolio_test")

	testDSN := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		testDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping database tests: database not available (%v)", err)
		return nil
	}
	return db
}

// SetupSuite initializes the test database
func (suite *RecorderTestSuite) SetupSuite() {
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
}

// TearDownSuite closes the database connection
func (suite *RecorderTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

// SetupTest creates fresh test data before each test
func (suite *RecorderTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE project_stats, project_daily_stats, project_viewers, project_likes, projects, users RESTART IDENTITY CASCADE")

	testID := fmt.Sprintf("%d", time.Now().UnixNano())
	suite.testUser = &models.User{
		Email:       fmt.Sprintf("maker_%s@test.com", testID),
		Username:    fmt.Sprintf("maker_%s", testID[:12]),
		DisplayName: "Test Maker",
	}
	require.NoError(suite.T(), suite.db.Create(suite.testUser).Error)

	suite.testProject = &models.Project{
		UserID:      suite.testUser.ID,
		Title:       "Test Project",
		IsPublished: true,
	}
	require.NoError(suite.T(), suite.db.Create(suite.testProject).Error)
}

func (suite *RecorderTestSuite) snapshot() *models.ProjectStats {
	stats, err := suite.recorder.Snapshot(context.Background(), suite.testProject.ID)
	require.NoError(suite.T(), err)
	return stats
}

func (suite *RecorderTestSuite) TestRecordViewIncrementsCounters() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-1", now))
	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-1", now))

	stats := suite.snapshot()
	assert.Equal(t, 2, stats.ViewsTotal, "Repeat views should keep counting")
	assert.Equal(t, 2, stats.EngagementInteractions)

	unique, err := suite.recorder.UniqueViewerCount(ctx, suite.testProject.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unique, "Same viewer should count once in the unique set")

	var project models.Project
	require.NoError(t, suite.db.First(&project, "id = ?", suite.testProject.ID).Error)
	assert.Equal(t, 2, project.ViewCount, "Cached project counter should track the store")
}

func (suite *RecorderTestSuite) TestRecordViewBumpsDailyBucket() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-1", now))
	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-2", now))

	var bucket models.ProjectDailyStat
	err := suite.db.
		Where("project_id = ? AND day = ?", suite.testProject.ID, utcDay(now)).
		First(&bucket).Error
	require.NoError(t, err)
	assert.Equal(t, 2, bucket.Views)
	assert.Equal(t, 0, bucket.Likes)
}

func (suite *RecorderTestSuite) TestRecordViewWithoutViewerSkipsUniqueSet() {
	t := suite.T()
	ctx := context.Background()

	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "", time.Now().UTC()))

	stats := suite.snapshot()
	assert.Equal(t, 1, stats.ViewsTotal)

	unique, err := suite.recorder.UniqueViewerCount(ctx, suite.testProject.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unique)
}

func (suite *RecorderTestSuite) TestRecordLikeIsIdempotent() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordLike(ctx, suite.testProject.ID, suite.testUser.ID, now))
	require.NoError(t, suite.recorder.RecordLike(ctx, suite.testProject.ID, suite.testUser.ID, now))

	stats := suite.snapshot()
	assert.Equal(t, 1, stats.LikesTotal, "Second like from the same user should be a no-op")
	assert.Equal(t, 1, stats.EngagementInteractions)

	liked, err := suite.recorder.HasLiked(ctx, suite.testProject.ID, suite.testUser.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func (suite *RecorderTestSuite) TestRecordUnlikeFloorsAtZero() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	// Unlike without a prior like changes nothing
	require.NoError(t, suite.recorder.RecordUnlike(ctx, suite.testProject.ID, suite.testUser.ID))
	stats := suite.snapshot()
	assert.Equal(t, 0, stats.LikesTotal)

	require.NoError(t, suite.recorder.RecordLike(ctx, suite.testProject.ID, suite.testUser.ID, now))
	require.NoError(t, suite.recorder.RecordUnlike(ctx, suite.testProject.ID, suite.testUser.ID))
	require.NoError(t, suite.recorder.RecordUnlike(ctx, suite.testProject.ID, suite.testUser.ID))

	stats = suite.snapshot()
	assert.Equal(t, 0, stats.LikesTotal, "Counter should never go negative")

	liked, err := suite.recorder.HasLiked(ctx, suite.testProject.ID, suite.testUser.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func (suite *RecorderTestSuite) TestRecordCommentAndRemoval() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordComment(ctx, suite.testProject.ID, now))
	require.NoError(t, suite.recorder.RecordComment(ctx, suite.testProject.ID, now))
	require.NoError(t, suite.recorder.RecordCommentRemoved(ctx, suite.testProject.ID))

	stats := suite.snapshot()
	assert.Equal(t, 1, stats.CommentsTotal)

	// Removals past zero are floored
	require.NoError(t, suite.recorder.RecordCommentRemoved(ctx, suite.testProject.ID))
	require.NoError(t, suite.recorder.RecordCommentRemoved(ctx, suite.testProject.ID))
	stats = suite.snapshot()
	assert.Equal(t, 0, stats.CommentsTotal)
}

func (suite *RecorderTestSuite) TestEngagementTracksCounters() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-1", now))
	require.NoError(t, suite.recorder.RecordLike(ctx, suite.testProject.ID, suite.testUser.ID, now))
	require.NoError(t, suite.recorder.RecordComment(ctx, suite.testProject.ID, now))
	require.NoError(t, suite.recorder.RecordUnlike(ctx, suite.testProject.ID, suite.testUser.ID))

	stats := suite.snapshot()
	expected := stats.ViewsTotal + stats.LikesTotal + stats.CommentsTotal
	assert.Equal(t, expected, stats.EngagementInteractions,
		"Engagement cache should equal the sum of the counters after mixed events")
}

func (suite *RecorderTestSuite) TestSnapshotZeroValuedForUnknownProject() {
	t := suite.T()

	stats, err := suite.recorder.Snapshot(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ViewsTotal)
	assert.Equal(t, 0, stats.LikesTotal)
	assert.Equal(t, 0, stats.CommentsTotal)
}

func (suite *RecorderTestSuite) TestPurgeProjectRemovesAllRows() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-1", now))
	require.NoError(t, suite.recorder.RecordLike(ctx, suite.testProject.ID, suite.testUser.ID, now))

	require.NoError(t, suite.recorder.PurgeProject(ctx, suite.testProject.ID))

	var count int64
	suite.db.Model(&models.ProjectStats{}).Where("project_id = ?", suite.testProject.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	suite.db.Model(&models.ProjectDailyStat{}).Where("project_id = ?", suite.testProject.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	suite.db.Model(&models.ProjectViewer{}).Where("project_id = ?", suite.testProject.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	suite.db.Model(&models.ProjectLike{}).Where("project_id = ?", suite.testProject.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func (suite *RecorderTestSuite) TestQueueAppliesEvents() {
	t := suite.T()

	queue := NewQueue(suite.recorder, 2, 64)
	queue.Start()

	for i := 0; i < 3; i++ {
		assert.True(t, queue.Enqueue(Event{
			Kind:      EventView,
			ProjectID: suite.testProject.ID,
			ActorID:   fmt.Sprintf("viewer-%d", i),
		}))
	}
	assert.True(t, queue.Enqueue(Event{
		Kind:      EventLike,
		ProjectID: suite.testProject.ID,
		ActorID:   suite.testUser.ID,
	}))

	assert.Eventually(t, func() bool {
		stats := suite.snapshot()
		return stats.ViewsTotal == 3 && stats.LikesTotal == 1
	}, 5*time.Second, 50*time.Millisecond, "Workers should drain the queued events")

	queue.Stop()
}

func (suite *RecorderTestSuite) TestQueueStopDrainsBufferedEvents() {
	t := suite.T()

	queue := NewQueue(suite.recorder, 2, 64)
	queue.Start()

	for i := 0; i < 10; i++ {
		require.True(t, queue.Enqueue(Event{
			Kind:      EventView,
			ProjectID: suite.testProject.ID,
			ActorID:   fmt.Sprintf("viewer-%d", i),
		}))
	}

	// Stop blocks until the workers have applied every buffered event
	queue.Stop()

	stats := suite.snapshot()
	assert.Equal(t, 10, stats.ViewsTotal, "No buffered event should be lost on shutdown")
	assert.Equal(t, 10, stats.EngagementInteractions)
}

func (suite *RecorderTestSuite) TestDashboardCSVExport() {
	t := suite.T()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, suite.recorder.RecordView(ctx, suite.testProject.ID, "viewer-1", now))
	require.NoError(t, suite.recorder.RecordLike(ctx, suite.testProject.ID, suite.testUser.ID, now))

	var buf bytes.Buffer
	aggregator := NewAggregator(suite.db)
	require.NoError(t, aggregator.WriteCSV(ctx, &buf, suite.testUser.ID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2, "Header plus one project row")
	assert.Equal(t, "name,views,uniqueViews,likes,comments,popularityScore", string(lines[0]))
	assert.Equal(t, "Test Project,1,1,1,0,11", string(lines[1]))
}

func TestRecorderSuite(t *testing.T) {
	if os.Getenv("SKIP_DB_TESTS") == "true" {
		t.Skip("Skipping database tests")
	}

	suite.Run(t, new(RecorderTestSuite))
}
