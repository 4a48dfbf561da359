package main

import (
	"fmt"

	"court_transfer_app_go/db"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/spf13/cobra"
)

var grantCmd = &cobra.Command{
	Use:   "grant <registration-number> <permission>...",
	Short: "Grant permissions to a user by name",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var user models.User
		if err := db.DB.Where("registration_number = ?", args[0]).First(&user).Error; err != nil {
			return fmt.Errorf("user %s: %w", args[0], err)
		}
		for _, name := range args[1:] {
			if err := grantByName(user.ID, name); err != nil {
				return err
			}
			fmt.Printf("Granted %s to %d\n", name, user.RegistrationNumber)
		}
		return nil
	},
}

// grantByName creates the permission if needed and grants it
func grantByName(userID uint, name string) error {
	permission := models.Permission{Name: name}
	if err := db.DB.Where(models.Permission{Name: name}).FirstOrCreate(&permission).Error; err != nil {
		return err
	}
	if _, err := services.GrantPermission(db.DB, userID, permission.ID); err != nil {
		return fmt.Errorf("grant %s: %w", name, err)
	}
	return nil
}
