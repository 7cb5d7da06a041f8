package main

import (
	"fmt"

	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/models"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersBanCmd = &cobra.Command{
	Use:   "ban <username>",
	Short: "Suspend a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBanned(args[0], true)
	},
}

var usersUnbanCmd = &cobra.Command{
	Use:   "unban <username>",
	Short: "Lift a user account suspension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBanned(args[0], false)
	},
}

func setBanned(username string, banned bool) error {
	var user models.User
	if err := database.DB.Where("LOWER(username) = LOWER(?)", username).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %s", username)
	}

	if user.IsAdmin && banned {
		return fmt.Errorf("cannot ban an admin account")
	}

	if err := database.DB.Model(&user).Update("is_banned", banned).Error; err != nil {
		return err
	}

	if banned {
		fmt.Printf("Banned %s\n", user.Username)
	} else {
		fmt.Printf("Unbanned %s\n", user.Username)
	}
	return nil
}

func init() {
	usersCmd.AddCommand(usersBanCmd)
	usersCmd.AddCommand(usersUnbanCmd)
}
