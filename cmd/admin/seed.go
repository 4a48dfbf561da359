package main

import (
	"fmt"

	"court_transfer_app_go/db"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/spf13/cobra"
)

var seedCourthouses, seedTitles, seedTypes []string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed statuses, permissions, reference data and the ADMIN_* administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range seedCourthouses {
			if err := db.DB.Where(models.Courthouse{Name: name}).FirstOrCreate(&models.Courthouse{Name: name}).Error; err != nil {
				return err
			}
		}
		for _, name := range seedTitles {
			if err := db.DB.Where(models.Title{Name: name}).FirstOrCreate(&models.Title{Name: name}).Error; err != nil {
				return err
			}
		}
		for _, name := range seedTypes {
			if err := db.DB.Where(models.TransferRequestType{Name: name}).FirstOrCreate(&models.TransferRequestType{Name: name}).Error; err != nil {
				return err
			}
		}
		if err := services.SeedAdminFromEnv(db.DB); err != nil {
			return err
		}
		fmt.Println("Seed completed")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringSliceVar(&seedCourthouses, "courthouse", nil, "Courthouse names to create")
	seedCmd.Flags().StringSliceVar(&seedTitles, "title", nil, "Job titles to create")
	seedCmd.Flags().StringSliceVar(&seedTypes, "type", []string{"Health", "Family Unity", "Education", "Other"}, "Transfer request types to create")
}
