package service

import (
	"context"

	"github.com/stemsi/tuition-backend/internal/model"
)

// AdminService handles admin account lookups.
type AdminService struct {
	adminRepo AdminStore
	roleRepo  RoleStore
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo AdminStore, roleRepo RoleStore) *AdminService {
	return &AdminService{adminRepo: adminRepo, roleRepo: roleRepo}
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// GetPermissions retrieves permission codes for an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	perms, err := s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
	if perms == nil && err == nil {
		perms = []string{}
	}
	return perms, err
}

// Create creates a new admin.
func (s *AdminService) Create(ctx context.Context, admin *model.Admin) error {
	return s.adminRepo.Create(ctx, admin)
}
