package main

import (
	"fmt"
	"time"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete activity log entries past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff := time.Now().UTC().Add(-activity.RetentionWindow)

		res := database.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLogEntry{})
		if res.Error != nil {
			return res.Error
		}

		fmt.Printf("Deleted %d activity log entries older than %s\n",
			res.RowsAffected, cutoff.Format(time.RFC3339))
		return nil
	},
}
