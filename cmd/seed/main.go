package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/meditrack/meditrack-backend/config"
	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/app/repository"
	"github.com/meditrack/meditrack-backend/internal/app/service"
	"github.com/meditrack/meditrack-backend/internal/db"
	"github.com/meditrack/meditrack-backend/internal/roster"
	"github.com/meditrack/meditrack-backend/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <roster.xlsx>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger.Initialize(logger.Config{Level: "warn", Format: "console"})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	result, err := roster.ReadDoctors(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX: ", err)
	}

	fmt.Printf("Sheet %q: %d doctors, %d incomplete rows, %d duplicate emails\n",
		result.Sheet, len(result.Doctors), result.Skipped, result.Duplicates)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	authService := service.NewAuthService(
		repository.NewUserRepository(db.GetDB()),
		repository.NewAppointmentRepository(db.GetDB()),
		service.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn),
	)

	ctx := context.Background()
	created, existing, failed := 0, 0, 0
	for _, d := range result.Doctors {
		_, _, err := authService.Signup(ctx, service.SignupInput{
			Name:     d.Name,
			Email:    d.Email,
			Password: d.Password,
			Phone:    d.Phone,
			Profile: model.DoctorProfile{
				Specialization:  d.Specialization,
				WorkingHospital: d.WorkingHospital,
				ShiftTiming:     model.ShiftTiming{Start: d.ShiftStart, End: d.ShiftEnd},
				LicenseNumber:   d.LicenseNumber,
			},
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrEmailAlreadyExists):
			existing++
		default:
			failed++
			fmt.Printf("Failed to import %s: %v\n", d.Email, err)
		}
	}

	fmt.Println("Import completed!")
	fmt.Printf("Created: %d, already registered: %d, failed: %d\n", created, existing, failed)
}
