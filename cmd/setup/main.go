package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"usertemplate/backend/internal/database"
	"usertemplate/backend/internal/repository"
	"usertemplate/backend/internal/security"
	"usertemplate/backend/internal/seeders"
	"usertemplate/backend/internal/services"
	"usertemplate/backend/pkg/config"
	plog "usertemplate/backend/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/term"
)

const minPasswordLength = 8

// readInput reads a line of text from the console.
func readInput(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads a password from the console, masking the input.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

// promptAdminPassword asks until two matching passwords of acceptable length
// are entered.
func promptAdminPassword() (string, error) {
	for {
		pw, err := readPassword("Enter Admin Password: ")
		if err != nil {
			return "", err
		}
		if len(pw) < minPasswordLength {
			fmt.Printf("Password must be at least %d characters. Please try again.\n", minPasswordLength)
			continue
		}
		confirm, err := readPassword("Confirm Admin Password: ")
		if err != nil {
			return "", err
		}
		if pw == confirm {
			return pw, nil
		}
		fmt.Println("Passwords do not match. Please try again.")
	}
}

func main() {
	demo := flag.Bool("demo", false, "wipe the database and create the demo accounts (refused in production)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := plog.Must(cfg.LogLevel, cfg.Environment)
	defer func() { _ = logger.Sync() }()

	fmt.Println("--- User Template Setup ---")

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	fmt.Println("\n--- Running Database Migrations ---")
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Database migration failed", zap.Error(err))
	}

	svc := services.NewUserService(repository.NewGormStore(db), security.NewArgonHash(),
		services.WithLogger(logger),
		services.WithEnvironment(cfg.Environment),
	)
	ctx := context.Background()

	if *demo {
		if err := seeders.SeedDemoUsers(ctx, svc, logger); err != nil {
			logger.Fatal("Failed to seed demo users", zap.Error(err))
		}
		fmt.Println("\n--- Demo accounts created ---")
		for _, acc := range seeders.DemoAccounts {
			fmt.Printf("  %-8s %s / %s\n", acc.Role, acc.Email, acc.Password)
		}
		return
	}

	fmt.Println("\n--- Creating Admin User ---")
	reader := bufio.NewReader(os.Stdin)
	name := readInput(reader, "Enter Admin Name: ")
	email := readInput(reader, "Enter Admin Email: ")
	if name == "" || email == "" {
		logger.Fatal("Admin name and email are required")
	}
	password, err := promptAdminPassword()
	if err != nil {
		logger.Fatal("Failed to read admin password", zap.Error(err))
	}

	created, err := seeders.EnsureAdmin(ctx, svc, name, email, password, logger)
	if err != nil {
		logger.Fatal("Failed to create admin user", zap.Error(err))
	}
	if created {
		fmt.Printf("Admin user '%s' created successfully.\n", email)
	} else {
		fmt.Printf("An account for '%s' already exists; nothing changed.\n", email)
	}

	fmt.Println("\n--- Setup Complete ---")
	fmt.Println("You can now start the server.")
}
