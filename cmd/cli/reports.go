package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/spf13/cobra"
)

var reportStatus string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage moderation reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List moderation reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := database.DB.Order("created_at DESC").Limit(50)
		if reportStatus != "" {
			query = query.Where("status = ?", reportStatus)
		}

		var reports []models.Report
		if err := query.Find(&reports).Error; err != nil {
			return err
		}

		if output == "json" {
			return json.NewEncoder(os.Stdout).Encode(reports)
		}

		if len(reports) == 0 {
			fmt.Println("No reports found")
			return nil
		}
		for _, r := range reports {
			fmt.Printf("%s  [%s]  %s %s  reason=%q  %s\n",
				r.ID, r.Status, r.TargetType, r.TargetID, r.Reason,
				r.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var reportResolution string

var reportsResolveCmd = &cobra.Command{
	Use:   "resolve <report-id>",
	Short: "Resolve a pending report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var report models.Report
		if err := database.DB.Where("id = ?", args[0]).First(&report).Error; err != nil {
			return fmt.Errorf("report not found: %s", args[0])
		}

		if report.Status != models.ReportStatusPending {
			return fmt.Errorf("report already handled (status %s)", report.Status)
		}

		now := time.Now().UTC()
		report.Status = models.ReportStatusResolved
		report.Resolution = reportResolution
		report.ResolvedAt = &now

		if err := database.DB.Save(&report).Error; err != nil {
			return err
		}

		fmt.Printf("Resolved report %s\n", report.ID)
		return nil
	},
}

func init() {
	reportsListCmd.Flags().StringVar(&reportStatus, "status", "", "Filter by status (pending, resolved, dismissed)")
	reportsResolveCmd.Flags().StringVar(&reportResolution, "note", "", "Resolution note")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsResolveCmd)
}
