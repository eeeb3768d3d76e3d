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

type sqliteServerRepo struct {
	db database.TxQuerier
}

func NewSQLiteServerRepo(db database.TxQuerier) ServerRepository {
	return &sqliteServerRepo{db: db}
}

const serverColumns = `id, name, owner_id, bio, avatar_url, visibility, tags,
	default_role_id, members_count, mute_all, mute_new_users, mute_all_except_mentions, created_at`

// scanServer, bir satırı models.Server'a okur.
// Tags JSON TEXT olarak saklanır; bool'lar SQLite INTEGER'dır.
func scanServer(row interface{ Scan(...any) error }) (*models.Server, error) {
	server := &models.Server{}
	var tagsJSON string
	err := row.Scan(
		&server.ID, &server.Name, &server.OwnerID, &server.Bio, &server.AvatarURL,
		&server.Visibility, &tagsJSON, &server.DefaultRoleID, &server.MembersCount,
		&server.Notifications.MuteAll, &server.Notifications.MuteNewUsers,
		&server.Notifications.MuteAllExceptMentions, &server.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &server.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode server tags: %w", err)
	}
	return server, nil
}

// ─── Read operasyonları ───

func (r *sqliteServerRepo) GetByID(ctx context.Context, id string) (*models.Server, error) {
	query := `SELECT ` + serverColumns + ` FROM servers WHERE id = ?`

	server, err := scanServer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server by id: %w", err)
	}

	return server, nil
}

func (r *sqliteServerRepo) GetAll(ctx context.Context) ([]models.Server, error) {
	query := `SELECT ` + serverColumns + ` FROM servers ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get servers: %w", err)
	}
	defer rows.Close()

	var servers []models.Server
	for rows.Next() {
		server, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server row: %w", err)
		}
		servers = append(servers, *server)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating server rows: %w", err)
	}

	return servers, nil
}

// ─── Write operasyonları ───

func (r *sqliteServerRepo) Create(ctx context.Context, server *models.Server) error {
	tagsJSON, err := json.Marshal(server.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode server tags: %w", err)
	}

	query := `
		INSERT INTO servers (id, name, owner_id, bio, avatar_url, visibility, tags,
			default_role_id, members_count, mute_all, mute_new_users, mute_all_except_mentions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		server.ID, server.Name, server.OwnerID, server.Bio, server.AvatarURL,
		server.Visibility, string(tagsJSON), server.DefaultRoleID, server.MembersCount,
		server.Notifications.MuteAll, server.Notifications.MuteNewUsers,
		server.Notifications.MuteAllExceptMentions,
	).Scan(&server.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return nil
}

func (r *sqliteServerRepo) Update(ctx context.Context, server *models.Server) error {
	tagsJSON, err := json.Marshal(server.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode server tags: %w", err)
	}

	query := `
		UPDATE servers SET name = ?, bio = ?, avatar_url = ?, visibility = ?, tags = ?,
			default_role_id = ?, mute_all = ?, mute_new_users = ?, mute_all_except_mentions = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		server.Name, server.Bio, server.AvatarURL, server.Visibility, string(tagsJSON),
		server.DefaultRoleID, server.Notifications.MuteAll, server.Notifications.MuteNewUsers,
		server.Notifications.MuteAllExceptMentions, server.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update server: %w", err)
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

func (r *sqliteServerRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
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

func (r *sqliteServerRepo) AdjustMembersCount(ctx context.Context, id string, delta int) error {
	// MAX(0, ...): sayaç hiçbir koşulda negatife düşmez
	query := `UPDATE servers SET members_count = MAX(0, members_count + ?) WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust members count: %w", err)
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
