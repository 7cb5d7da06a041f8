package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db       *gorm.DB
	recorder *analytics.Recorder
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:       db,
		recorder: analytics.NewRecorder(db),
	}
}

var seedTags = []string{
	"web", "mobile", "design", "illustration", "branding", "photography",
	"3d", "motion", "typography", "game", "ai", "data-viz",
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating projects...")
	projects, err := s.seedProjects(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed projects: %w", err)
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(users, 300); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating engagement...")
	if err := s.seedEngagement(users, projects); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Seeding completed")
	return nil
}

// SeedTest seeds the test database with a minimal fixture set
func (s *Seeder) SeedTest() error {
	users, err := s.seedUsers(5)
	if err != nil {
		return err
	}
	_, err = s.seedProjects(users, 10)
	return err
}

// Clean removes seeded data. Development use only.
func (s *Seeder) Clean() error {
	tables := []interface{}{
		&models.ActivityLogEntry{},
		&models.Notification{},
		&models.Report{},
		&models.ProjectLike{},
		&models.ProjectViewer{},
		&models.ProjectDailyStat{},
		&models.ProjectStats{},
		&models.Comment{},
		&models.Follow{},
		&models.Project{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		person := gofakeit.Person()
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)

		skills := make([]string, 0, 3)
		for j := 0; j < 3; j++ {
			skills = append(skills, gofakeit.RandomString(seedTags))
		}

		user := models.User{
			Email:        fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Username:     username,
			DisplayName:  person.FirstName + " " + person.LastName,
			Bio:          gofakeit.Sentence(12),
			Location:     gofakeit.City(),
			PasswordHash: &hashStr,
			AvatarURL:    gofakeit.ImageURL(200, 200),
			Skills:       models.StringArray(skills),
			IsPublic:     rand.Intn(10) > 0, // one in ten is private
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedProjects(users []models.User, count int) ([]models.Project, error) {
	projects := make([]models.Project, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]

		tags := make([]string, 0, 2)
		for j := 0; j < 1+rand.Intn(3); j++ {
			tags = append(tags, gofakeit.RandomString(seedTags))
		}

		project := models.Project{
			UserID:      owner.ID,
			Title:       gofakeit.ProductName(),
			Description: gofakeit.Paragraph(1, 3, 15, " "),
			CoverURL:    gofakeit.ImageURL(800, 600),
			ProjectURL:  gofakeit.URL(),
			Tags:        models.StringArray(tags),
			IsPublished: true,
		}
		if err := s.db.Create(&project).Error; err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := s.db.Exec(
		"UPDATE users SET project_count = (SELECT COUNT(*) FROM projects WHERE projects.user_id = users.id AND projects.deleted_at IS NULL)",
	).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followee := users[rand.Intn(len(users))]
		if follower.ID == followee.ID {
			continue
		}
		// Duplicate pairs hit the unique index and are skipped
		s.db.Exec(
			"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT DO NOTHING",
			follower.ID, followee.ID,
		)
	}
	return nil
}

// seedEngagement replays realistic view/like/comment traffic through the
// recorder so all counters and daily buckets are consistent
func (s *Seeder) seedEngagement(users []models.User, projects []models.Project) error {
	ctx := context.Background()

	for _, project := range projects {
		views := rand.Intn(300)
		for i := 0; i < views; i++ {
			viewer := users[rand.Intn(len(users))]
			at := time.Now().UTC().AddDate(0, 0, -rand.Intn(40))
			if err := s.recorder.RecordView(ctx, project.ID, viewer.ID, at); err != nil {
				return err
			}
		}

		likes := rand.Intn(30)
		for i := 0; i < likes; i++ {
			liker := users[rand.Intn(len(users))]
			at := time.Now().UTC().AddDate(0, 0, -rand.Intn(40))
			if err := s.recorder.RecordLike(ctx, project.ID, liker.ID, at); err != nil {
				return err
			}
		}

		comments := rand.Intn(10)
		for i := 0; i < comments; i++ {
			author := users[rand.Intn(len(users))]
			comment := models.Comment{
				ProjectID: project.ID,
				UserID:    author.ID,
				Body:      gofakeit.Sentence(10),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
			if err := s.recorder.RecordComment(ctx, project.ID, time.Now().UTC()); err != nil {
				return err
			}
		}
	}
	return nil
}
