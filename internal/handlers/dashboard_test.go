package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DashboardHandlersTestSuite exercises the analytics export endpoints
type DashboardHandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	handlers *Handlers
	testUser *models.User
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func testDSN() string {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "craftfolio_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}
	return dsn
}

func (suite *DashboardHandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(testDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		suite.T().Skipf("Skipping handler tests: database not available (%v)", err)
		return
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectStats{},
		&models.ProjectDailyStat{},
		&models.ProjectViewer{},
		&models.ProjectLike{},
		&models.ActivityLogEntry{},
	)
	require.NoError(suite.T(), err)

	suite.db = db
	database.DB = db

	recorder := analytics.NewRecorder(db)
	suite.handlers = NewHandlers(nil, recorder, nil, analytics.NewScanner(db), analytics.NewAggregator(db))
}

func (suite *DashboardHandlersTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *DashboardHandlersTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE activity_log_entries, project_stats, project_daily_stats, project_viewers, project_likes, projects, users RESTART IDENTITY CASCADE")

	testID := fmt.Sprintf("%d", time.Now().UnixNano())
	suite.testUser = &models.User{
		Email:       fmt.Sprintf("owner_%s@test.com", testID),
		Username:    fmt.Sprintf("owner_%s", testID[:12]),
		DisplayName: "Export Owner",
	}
	require.NoError(suite.T(), suite.db.Create(suite.testUser).Error)
}

// exportRequest runs ExportStats through a gin context for the given handlers
func (suite *DashboardHandlersTestSuite) exportRequest(h *Handlers) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/analytics/export", nil)
	c.Set("user", suite.testUser)
	c.Set("user_id", suite.testUser.ID)

	h.ExportStats(c)
	return w
}

func (suite *DashboardHandlersTestSuite) TestExportStatsStreamsCSV() {
	t := suite.T()

	project := &models.Project{
		UserID:      suite.testUser.ID,
		Title:       "Exported Project",
		IsPublished: true,
	}
	require.NoError(t, suite.db.Create(project).Error)

	ctx := context.Background()
	recorder := analytics.NewRecorder(suite.db)
	require.NoError(t, recorder.RecordView(ctx, project.ID, "viewer-1", time.Now().UTC()))
	require.NoError(t, recorder.RecordLike(ctx, project.ID, suite.testUser.ID, time.Now().UTC()))

	w := suite.exportRequest(suite.handlers)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "craftfolio-stats-")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,views,uniqueViews,likes,comments,popularityScore", lines[0])
	assert.Equal(t, "Exported Project,1,1,1,0,11", lines[1])
}

func (suite *DashboardHandlersTestSuite) TestExportStatsFailureReturnsCleanError() {
	t := suite.T()

	// Aggregator over a dead connection so the export query fails
	brokenDB, err := gorm.Open(postgres.Open(testDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := brokenDB.DB()
	require.NoError(t, err)
	sqlDB.Close()

	broken := NewHandlers(nil, nil, nil, nil, analytics.NewAggregator(brokenDB))
	w := suite.exportRequest(broken)

	assert.Equal(t, 500, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json",
		"Failure should produce a JSON error, not a CSV download")
	assert.NotContains(t, w.Body.String(), "name,views",
		"No CSV bytes should reach the response on failure")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestDashboardHandlersSuite(t *testing.T) {
	if os.Getenv("SKIP_DB_TESTS") == "true" {
		t.Skip("Skipping database tests")
	}

	suite.Run(t, new(DashboardHandlersTestSuite))
}
