package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/taskhub-api/internal/config"
	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: promote-admin <email>")
		os.Exit(1)
	}

	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	users := services.NewUserService(db, services.NewPasswordHasher(cfg.BcryptCost), nil, cfg.BaseURL, cfg.VerificationExpiry)

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("No user found with email %s: %v", email, err)
	}

	granted, err := users.GrantGlobalRole(ctx, user.ID, models.RoleGroupAdmin)
	if err != nil {
		log.Fatalf("Failed to grant role: %v", err)
	}
	if !granted {
		fmt.Printf("%s is already a group admin\n", user.Email)
		return
	}

	fmt.Printf("Successfully promoted %s to group admin\n", user.Email)
}
