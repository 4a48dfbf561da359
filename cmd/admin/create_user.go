package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"court_transfer_app_go/db"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var createUserFlags struct {
	registrationNumber int
	nationalID         string
	name               string
	surname            string
	email              string
	phone              string
	title              string
	courthouse         string
	admin              bool
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Register an employee, prompting for the password",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := createUserFlags
		reader := bufio.NewReader(os.Stdin)
		prompt := func(label string, value *string) {
			if *value != "" {
				return
			}
			fmt.Printf("%s: ", label)
			line, _ := reader.ReadString('\n')
			*value = strings.TrimSpace(line)
		}
		prompt("National ID", &f.nationalID)
		prompt("Name", &f.name)
		prompt("Surname", &f.surname)
		prompt("Email", &f.email)
		prompt("Title", &f.title)
		prompt("Courthouse", &f.courthouse)

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		title := models.Title{Name: f.title}
		if err := db.DB.Where(models.Title{Name: f.title}).FirstOrCreate(&title).Error; err != nil {
			return err
		}
		courthouse := models.Courthouse{Name: f.courthouse}
		if err := db.DB.Where(models.Courthouse{Name: f.courthouse}).FirstOrCreate(&courthouse).Error; err != nil {
			return err
		}

		user, err := services.RegisterUser(db.DB, services.RegisterUserInput{
			RegistrationNumber: f.registrationNumber,
			NationalID:         f.nationalID,
			Name:               f.name,
			Surname:            f.surname,
			Email:              f.email,
			Phone:              f.phone,
			TitleID:            title.ID,
			ActiveCourthouseID: courthouse.ID,
			Password:           string(passwordBytes),
		})
		if err != nil {
			return err
		}

		if f.admin {
			if err := grantByName(user.ID, models.PermissionAdmin); err != nil {
				return err
			}
		}

		fmt.Printf("Created user %d (%s)\n", user.RegistrationNumber, user.FullName())
		return nil
	},
}

func init() {
	flags := createUserCmd.Flags()
	flags.IntVar(&createUserFlags.registrationNumber, "registration-number", 0, "Registration number (login key)")
	flags.StringVar(&createUserFlags.nationalID, "national-id", "", "11-digit national id")
	flags.StringVar(&createUserFlags.name, "name", "", "Given name")
	flags.StringVar(&createUserFlags.surname, "surname", "", "Surname")
	flags.StringVar(&createUserFlags.email, "email", "", "Email address")
	flags.StringVar(&createUserFlags.phone, "phone", "", "Phone number")
	flags.StringVar(&createUserFlags.title, "title", "", "Job title, created if missing")
	flags.StringVar(&createUserFlags.courthouse, "courthouse", "", "Active courthouse, created if missing")
	flags.BoolVar(&createUserFlags.admin, "admin", false, "Grant the Admin permission")
	_ = createUserCmd.MarkFlagRequired("registration-number")
}
