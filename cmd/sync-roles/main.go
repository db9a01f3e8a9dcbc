package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	db, err := database.NewPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	roleRepo := repository.NewRoleRepository(db)

	fmt.Println("=== Sync Standard Roles ===")
	fmt.Println("Grants every standard role exactly its default permissions, creating missing roles and permissions.")

	names := make([]string, 0, len(model.DefaultRoles))
	for name := range model.DefaultRoles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		perms := model.DefaultRoles[name]
		if _, err := roleRepo.EnsureRole(ctx, name, model.PermissionCodes(perms)); err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("Failed to sync role")
		}

		role, err := roleRepo.GetByName(ctx, name)
		if err != nil {
			log.Fatal().Err(err).Str("role", name).Msg("Failed to read back role")
		}
		fmt.Printf("  %-6s (id %d): %s\n", role.Name, role.ID, strings.Join(role.Permissions, ", "))
	}

	fmt.Println("\nSuccess! Standard roles are up to date.")
}
