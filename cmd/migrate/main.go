package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/store"
)

func main() {
	var (
		list          = flag.Bool("list", false, "List embedded migrations and exit")
		adminUsername = flag.String("admin-username", "administrator", "Username of the seeded administrator")
		adminName     = flag.String("admin-name", "Administrator", "Display name of the seeded administrator")
		adminPassword = flag.String("admin-password", "", "Seed an administrator account with this password")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if *list {
		migrations, err := store.Migrations(cfg.Database.Driver)
		if err != nil {
			log.Fatalf("Failed to read migrations: %v", err)
		}
		for _, m := range migrations {
			fmt.Printf("%s  %s\n", m.Checksum[:12], m.Filename)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := store.Open(ctx, store.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", db.Driver())

	applied, err := db.Migrate(ctx)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
	}

	if *adminPassword == "" {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), cfg.PasswordCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	admin := &models.User{
		Username:     *adminUsername,
		Name:         *adminName,
		PasswordHash: string(hash),
		// a seeded password is shared, so force a change on first use
		PendingPasswordReset: true,
	}
	err = db.CreateUser(ctx, admin)
	switch {
	case errors.Is(err, store.ErrConflict):
		fmt.Printf("User %s already exists, not seeding\n", *adminUsername)
	case err != nil:
		log.Fatalf("Failed to seed admin user: %v", err)
	default:
		fmt.Printf("Seeded user %s (id %d)\n", admin.Username, admin.ID)
	}
}
