package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

type sqliteBanRepo struct {
	db database.TxQuerier
}

func NewSQLiteBanRepo(db database.TxQuerier) BanRepository {
	return &sqliteBanRepo{db: db}
}

// ─── Read operasyonları ───

func (r *sqliteBanRepo) Get(ctx context.Context, serverID, userID string) (*models.Ban, error) {
	ban := &models.Ban{}
	err := r.db.QueryRowContext(ctx,
		`SELECT server_id, user_id, reason, created_at FROM bans WHERE server_id = ? AND user_id = ?`,
		serverID, userID,
	).Scan(&ban.ServerID, &ban.UserID, &ban.Reason, &ban.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ban: %w", err)
	}

	return ban, nil
}

func (r *sqliteBanRepo) GetAllByServer(ctx context.Context, serverID string) ([]models.Ban, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT server_id, user_id, reason, created_at FROM bans WHERE server_id = ? ORDER BY created_at DESC`,
		serverID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bans by server: %w", err)
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var ban models.Ban
		if err := rows.Scan(&ban.ServerID, &ban.UserID, &ban.Reason, &ban.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ban row: %w", err)
		}
		bans = append(bans, ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban rows: %w", err)
	}

	return bans, nil
}

func (r *sqliteBanRepo) Exists(ctx context.Context, serverID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bans WHERE server_id = ? AND user_id = ?`,
		serverID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check ban existence: %w", err)
	}
	return count > 0, nil
}

// ─── Write operasyonları ───

func (r *sqliteBanRepo) Create(ctx context.Context, ban *models.Ban) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO bans (server_id, user_id, reason) VALUES (?, ?, ?) RETURNING created_at`,
		ban.ServerID, ban.UserID, ban.Reason,
	).Scan(&ban.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return pkg.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create ban: %w", err)
	}

	return nil
}

func (r *sqliteBanRepo) UpdateReason(ctx context.Context, serverID, userID, reason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bans SET reason = ? WHERE server_id = ? AND user_id = ?`,
		reason, serverID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ban reason: %w", err)
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

func (r *sqliteBanRepo) Delete(ctx context.Context, serverID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bans WHERE server_id = ? AND user_id = ?`,
		serverID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
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
