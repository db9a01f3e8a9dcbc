package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
	"github.com/stemsi/tuition-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	db, err := database.NewPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	adminRepo := repository.NewAdminRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	adminService := service.NewAdminService(adminRepo, roleRepo)
	authService := service.NewAuthService(cfg, nil, adminRepo, roleRepo)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	// Password
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

	// Role
	fmt.Printf("Enter Role (%s/%s, default %s): ", model.RoleOwner, model.RoleStaff, model.RoleOwner)
	roleName, _ := reader.ReadString('\n')
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	if roleName == "" {
		roleName = model.RoleOwner
	}
	perms, ok := model.DefaultRoles[roleName]
	if !ok {
		fmt.Printf("Error: Unknown role %q\n", roleName)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	roleID, err := roleRepo.EnsureRole(ctx, roleName, model.PermissionCodes(perms))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare role")
	}

	hashedPassword, err := authService.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newAdmin := &model.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		RoleID:       roleID,
	}

	if err := adminService.Create(ctx, newAdmin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			resetPassword(ctx, reader, adminRepo, email, hashedPassword)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d, role %s\n", newAdmin.Name, newAdmin.Email, newAdmin.ID, roleName)
}

// resetPassword offers to overwrite the password of an existing admin.
func resetPassword(ctx context.Context, reader *bufio.Reader, adminRepo *repository.AdminRepository, email, hash string) {
	fmt.Printf("An admin with email %s already exists. Reset their password? [y/N]: ", email)
	answer, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		fmt.Println("Aborted.")
		return
	}

	existing, err := adminRepo.GetByEmail(ctx, email)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := adminRepo.UpdatePassword(ctx, existing.ID, hash); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("\nSuccess! Password of '%s' (%s) updated. Their role was left unchanged.\n", existing.Name, existing.Email)
}
