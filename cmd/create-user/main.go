package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/database"
	"github.com/catprepedge/catprep-backend/internal/logger"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/catprepedge/catprep-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, nil)
	userService := service.NewUserService(userRepo, authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	fmt.Print("Enter Full Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Print("Enter Role [free/premium/admin] (default admin): ")
	roleStr, _ := reader.ReadString('\n')
	role := model.Role(strings.ToLower(strings.TrimSpace(roleStr)))
	if role == "" {
		role = model.RoleAdmin
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := userService.Register(ctx, name, email, password, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			fmt.Printf("Error: unknown role %q\n", role)
			return
		case errors.Is(err, repository.ErrDuplicateEmail):
			fmt.Println("Error: a user with this email already exists")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created as %s with ID: %s\n", user.FullName, user.Email, user.Role, user.ID)
}
