package main

import (
	"fmt"
	"log"
	"os"

	"github.com/craftfolio/backend/internal/database"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var output string = "text" // "text" or "json"

var rootCmd = &cobra.Command{
	Use:   "craftfolio",
	Short: "Craftfolio admin CLI - moderation and maintenance from the terminal",
	Long: `Craftfolio admin CLI provides operational access to a Craftfolio deployment.
List and resolve moderation reports, manage bans, and run maintenance tasks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		godotenv.Load()
		if err := database.Initialize(); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		database.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
