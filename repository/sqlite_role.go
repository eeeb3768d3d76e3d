package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

type sqliteRoleRepo struct {
	db database.TxQuerier
}

func NewSQLiteRoleRepo(db database.TxQuerier) RoleRepository {
	return &sqliteRoleRepo{db: db}
}

const roleColumns = `id, server_id, name, permissions, is_absolute, created_at`

// scanRole, bir satırı models.Role'a okur.
// Permissions JSON TEXT olarak saklanır.
func scanRole(row interface{ Scan(...any) error }) (*models.Role, error) {
	role := &models.Role{}
	var permsJSON string
	err := row.Scan(
		&role.ID, &role.ServerID, &role.Name, &permsJSON, &role.IsAbsolute, &role.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(permsJSON), &role.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode role permissions: %w", err)
	}
	return role, nil
}

// ─── Read operasyonları ───

func (r *sqliteRoleRepo) GetByID(ctx context.Context, id string) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = ?`

	role, err := scanRole(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role by id: %w", err)
	}

	return role, nil
}

func (r *sqliteRoleRepo) GetAllByServer(ctx context.Context, serverID string) ([]models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE server_id = ? ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles by server: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, *role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return roles, nil
}

func (r *sqliteRoleRepo) GetAbsoluteByServer(ctx context.Context, serverID string) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE server_id = ? AND is_absolute = 1 LIMIT 1`

	role, err := scanRole(r.db.QueryRowContext(ctx, query, serverID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute role: %w", err)
	}

	return role, nil
}

// ─── Write operasyonları ───

func (r *sqliteRoleRepo) Create(ctx context.Context, role *models.Role) error {
	permsJSON, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("failed to encode role permissions: %w", err)
	}

	query := `
		INSERT INTO roles (id, server_id, name, permissions, is_absolute)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		role.ID, role.ServerID, role.Name, string(permsJSON), role.IsAbsolute,
	).Scan(&role.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

func (r *sqliteRoleRepo) Update(ctx context.Context, role *models.Role) error {
	permsJSON, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("failed to encode role permissions: %w", err)
	}

	query := `UPDATE roles SET name = ?, permissions = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, role.Name, string(permsJSON), role.ID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteRoleRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM roles WHERE id = ? AND is_absolute = 0`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}
