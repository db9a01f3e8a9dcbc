package repository

import (
	"context"

	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

const adminColumns = `a.id, a.email, a.name, a.password_hash, a.role_id, r.name, a.created_at, a.updated_at`

// AdminRepository handles admin data access.
type AdminRepository struct {
	db *database.DB
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func scanAdmin(row rowScanner) (*model.Admin, error) {
	a := &model.Admin{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.RoleID, &a.RoleName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return scanAdmin(r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins a JOIN roles r ON a.role_id = r.id WHERE a.id = $1`, id))
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return scanAdmin(r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins a JOIN roles r ON a.role_id = r.id WHERE LOWER(a.email) = LOWER($1)`, email))
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	return mapError(r.db.QueryRow(ctx,
		`INSERT INTO admins (email, name, password_hash, role_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.PasswordHash, a.RoleID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt))
}

// UpdatePassword replaces an admin's password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE admins SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, hash, id))
}
