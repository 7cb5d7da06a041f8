//go:build ignore

// Quick sanity check for seeded data. Run with: go run scripts/verify-seed.go
package main

import (
	"fmt"
	"log"

	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("Verifying seed data...")
	fmt.Println()

	var userCount, projectCount, commentCount, followCount, statsCount, dailyCount int64

	database.DB.Model(&models.User{}).Where("deleted_at IS NULL").Count(&userCount)
	database.DB.Model(&models.Project{}).Where("deleted_at IS NULL").Count(&projectCount)
	database.DB.Model(&models.Comment{}).Where("deleted_at IS NULL").Count(&commentCount)
	database.DB.Model(&models.Follow{}).Count(&followCount)
	database.DB.Model(&models.ProjectStats{}).Count(&statsCount)
	database.DB.Model(&models.ProjectDailyStat{}).Count(&dailyCount)

	fmt.Println("Record counts:")
	fmt.Printf("  Users:         %d\n", userCount)
	fmt.Printf("  Projects:      %d\n", projectCount)
	fmt.Printf("  Comments:      %d\n", commentCount)
	fmt.Printf("  Follows:       %d\n", followCount)
	fmt.Printf("  Stats rows:    %d\n", statsCount)
	fmt.Printf("  Daily buckets: %d\n", dailyCount)
	fmt.Println()

	var users []models.User
	database.DB.Where("deleted_at IS NULL").Limit(3).Find(&users)
	fmt.Println("Sample users:")
	for _, u := range users {
		fmt.Printf("  - %s (@%s) - %d projects, %d followers\n",
			u.DisplayName, u.Username, u.ProjectCount, u.FollowerCount)
	}
	fmt.Println()

	var top []models.ProjectStats
	database.DB.Order("views_total DESC").Limit(3).Find(&top)
	fmt.Println("Most viewed projects:")
	for _, s := range top {
		fmt.Printf("  - %s: %d views, %d likes, %d comments (score %d)\n",
			s.ProjectID, s.ViewsTotal, s.LikesTotal, s.CommentsTotal, s.PopularityScore())
	}

	if userCount == 0 || projectCount == 0 {
		log.Fatal("Seed data missing - run: go run cmd/seed/main.go dev")
	}

	fmt.Println()
	fmt.Println("Seed data looks good")
}
