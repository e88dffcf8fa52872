package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"computer-inventory-api/internal/auth"
	"computer-inventory-api/internal/config"
)

func main() {
	var (
		userID     = flag.Int64("user", 1, "User ID")
		username   = flag.String("username", "agent", "Username recorded in the token")
		expiryMins = flag.Int("expiry", 1440, "Token expiry in minutes (default: 24 hours)")
		secret     = flag.String("secret", "", "JWT secret (overrides JWT_SECRET env var)")
		issuer     = flag.String("issuer", "", "JWT issuer (overrides JWT_ISS env var)")
		audience   = flag.String("audience", "", "JWT audience (overrides JWT_AUD env var)")
	)
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Override with command line flags if provided
	if *secret != "" {
		cfg.JWT.Secret = *secret
	}
	if *issuer != "" {
		cfg.JWT.Issuer = *issuer
	}
	if *audience != "" {
		cfg.JWT.Audience = *audience
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, time.Duration(*expiryMins)*time.Minute)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatalf("Invalid JWT configuration: %v", err)
	}

	token, err := jwtManager.GenerateToken(*userID, *username)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	// Print token info
	fmt.Printf("JWT Token generated successfully!\n\n")
	fmt.Printf("User ID: %d\n", *userID)
	fmt.Printf("Username: %s\n", *username)
	fmt.Printf("Expiry: %d minutes\n", *expiryMins)
	fmt.Printf("Issuer: %s\n", cfg.JWT.Issuer)
	fmt.Printf("Audience: %s\n", cfg.JWT.Audience)
	fmt.Printf("\nToken:\n%s\n\n", token)

	// Print usage example
	fmt.Printf("Usage example:\n")
	fmt.Printf("curl -H \"Authorization: Bearer %s\" -d '{}' http://localhost:8080/inventory/search\n", token)
}
