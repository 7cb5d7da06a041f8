package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/craftfolio/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "craftfolio")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	// Configure GORM logger
	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	// Open database connection
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("✅ Database connected successfully")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	// Enable UUID extension for PostgreSQL
	err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
	if err != nil {
		log.Printf("Warning: Could not create uuid-ossp extension: %v", err)
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Project{},
		&models.Comment{},
		&models.ProjectStats{},
		&models.ProjectDailyStat{},
		&models.ProjectViewer{},
		&models.ProjectLike{},
		&models.ActivityLogEntry{},
		&models.Notification{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes for performance
	err = createIndexes()
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// createIndexes creates performance indexes
func createIndexes() error {
	// User indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_public_created ON users (is_public, created_at ASC) WHERE deleted_at IS NULL")

	// Project indexes for listing and tag queries
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_projects_user_created ON projects (user_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_projects_published_created ON projects (is_published, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_projects_tags ON projects USING GIN (tags)")

	// Follow graph
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_follows_unique ON follows (follower_id, followee_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows (followee_id)")

	// Comment indexes for efficient retrieval
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_project_created ON comments (project_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id) WHERE parent_id IS NOT NULL")

	// Stats tables: the unique pairs back idempotent upserts
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_project_stats_project ON project_stats (project_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_daily_stats_project_day ON project_daily_stats (project_id, day)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_daily_stats_day ON project_daily_stats (day DESC)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_project_viewers_unique ON project_viewers (project_id, viewer_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_project_likes_unique ON project_likes (project_id, user_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_project_likes_user ON project_likes (user_id)")

	// Activity log: retention sweep scans by created_at
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_activity_log_created ON activity_log_entries (created_at)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_activity_log_actor_created ON activity_log_entries (actor_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_activity_log_action ON activity_log_entries (action)")

	// Notification indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id) WHERE is_read = false")

	// Report indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_target ON reports (target_type, target_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
