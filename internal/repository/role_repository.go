package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/tuition-backend/internal/database"
	"github.com/stemsi/tuition-backend/internal/model"
)

// RoleRepository handles role and permission data access.
type RoleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetPermissionsByRoleID retrieves all permission codes for a given role.
func (r *RoleRepository) GetPermissionsByRoleID(ctx context.Context, roleID int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.code
		 FROM permissions p
		 JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		permissions = append(permissions, code)
	}
	return permissions, rows.Err()
}

// GetByName retrieves a role and its permissions by name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	role := &model.Role{Name: name}
	err := r.db.QueryRow(ctx, `SELECT id, created_at FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if role.Permissions, err = r.GetPermissionsByRoleID(ctx, role.ID); err != nil {
		return nil, err
	}
	return role, nil
}

// EnsureRole creates the role if missing and grants it exactly the given
// permission codes, inside one transaction. Unknown codes are created.
func (r *RoleRepository) EnsureRole(ctx context.Context, name string, codes []string) (int, error) {
	var roleID int
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO roles (name) VALUES ($1)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`, name).Scan(&roleID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO permissions (code) SELECT UNNEST($1::text[]) ON CONFLICT (code) DO NOTHING`, codes); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id)
			 SELECT $1, id FROM permissions WHERE code = ANY($2)`, roleID, codes)
		return err
	})
	return roleID, err
}
