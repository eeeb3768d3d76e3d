package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

type sqliteChannelRepo struct {
	db database.TxQuerier
}

func NewSQLiteChannelRepo(db database.TxQuerier) ChannelRepository {
	return &sqliteChannelRepo{db: db}
}

const channelColumns = `id, server_id, name, type, category_id, default_role_id, position, created_at`

func scanChannel(row interface{ Scan(...any) error }) (*models.Channel, error) {
	channel := &models.Channel{}
	err := row.Scan(
		&channel.ID, &channel.ServerID, &channel.Name, &channel.Type,
		&channel.CategoryID, &channel.DefaultRoleID, &channel.Position, &channel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// ─── Read operasyonları ───

func (r *sqliteChannelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id = ?`

	channel, err := scanChannel(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel by id: %w", err)
	}

	return channel, nil
}

func (r *sqliteChannelRepo) GetAllByServer(ctx context.Context, serverID string) ([]models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE server_id = ? ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channels by server: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, *channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

func (r *sqliteChannelRepo) CountByServer(ctx context.Context, serverID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM channels WHERE server_id = ?`, serverID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count channels: %w", err)
	}
	return count, nil
}

// ─── Write operasyonları ───

func (r *sqliteChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	query := `
		INSERT INTO channels (id, server_id, name, type, category_id, default_role_id, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		channel.ID, channel.ServerID, channel.Name, channel.Type,
		channel.CategoryID, channel.DefaultRoleID, channel.Position,
	).Scan(&channel.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return nil
}

func (r *sqliteChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	query := `
		UPDATE channels SET name = ?, category_id = ?, default_role_id = ?, position = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		channel.Name, channel.CategoryID, channel.DefaultRoleID, channel.Position, channel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
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

func (r *sqliteChannelRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
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

func (r *sqliteChannelRepo) ShiftPositionsFrom(ctx context.Context, serverID string, from int) error {
	query := `UPDATE channels SET position = position + 1 WHERE server_id = ? AND position >= ?`

	if _, err := r.db.ExecContext(ctx, query, serverID, from); err != nil {
		return fmt.Errorf("failed to shift channel positions: %w", err)
	}
	return nil
}

func (r *sqliteChannelRepo) UpdatePositions(ctx context.Context, channels []models.Channel) error {
	for _, c := range channels {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE channels SET position = ? WHERE id = ?`, c.Position, c.ID,
		); err != nil {
			return fmt.Errorf("failed to update position for channel %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *sqliteChannelRepo) DetachCategory(ctx context.Context, serverID, categoryID string) error {
	query := `UPDATE channels SET category_id = NULL WHERE server_id = ? AND category_id = ?`

	if _, err := r.db.ExecContext(ctx, query, serverID, categoryID); err != nil {
		return fmt.Errorf("failed to detach channels from category: %w", err)
	}
	return nil
}
