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

type sqliteMemberRepo struct {
	db database.TxQuerier
}

func NewSQLiteMemberRepo(db database.TxQuerier) MemberRepository {
	return &sqliteMemberRepo{db: db}
}

// serverWideScope, sunucu geneli grant'lerin DB'deki sentinel değeridir.
// NULL kullanılmaz: SQLite UNIQUE/PK kontrolünde NULL'lar birbirine eşit
// sayılmadığı için duplicate grant'i DB engelleyemezdi.
const serverWideScope = ""

// scopeToDB, *string scope'u DB sentinel'ine çevirir.
func scopeToDB(channelID *string) string {
	if channelID == nil {
		return serverWideScope
	}
	return *channelID
}

// scopeFromDB, DB sentinel'ini *string scope'a çevirir.
func scopeFromDB(channelID string) *string {
	if channelID == serverWideScope {
		return nil
	}
	return &channelID
}

// ─── Read operasyonları ───

func (r *sqliteMemberRepo) Get(ctx context.Context, serverID, userID string) (*models.Member, error) {
	member := &models.Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT server_id, user_id, joined_at FROM members WHERE server_id = ? AND user_id = ?`,
		serverID, userID,
	).Scan(&member.ServerID, &member.UserID, &member.JoinedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	grants, err := r.GetGrants(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}
	member.Roles = grants

	return member, nil
}

func (r *sqliteMemberRepo) GetAllByServer(ctx context.Context, serverID string) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT server_id, user_id, joined_at FROM members WHERE server_id = ? ORDER BY joined_at`,
		serverID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members by server: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(&member.ServerID, &member.UserID, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

func (r *sqliteMemberRepo) Exists(ctx context.Context, serverID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE server_id = ? AND user_id = ?`,
		serverID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check member existence: %w", err)
	}
	return count > 0, nil
}

func (r *sqliteMemberRepo) GetGrants(ctx context.Context, serverID, userID string) ([]models.RoleGrant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role_id, channel_id FROM member_roles
		 WHERE server_id = ? AND user_id = ? ORDER BY created_at`,
		serverID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get member grants: %w", err)
	}
	defer rows.Close()

	var grants []models.RoleGrant
	for rows.Next() {
		var roleID, channelID string
		if err := rows.Scan(&roleID, &channelID); err != nil {
			return nil, fmt.Errorf("failed to scan grant row: %w", err)
		}
		grants = append(grants, models.RoleGrant{
			RoleID:    roleID,
			ChannelID: scopeFromDB(channelID),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grant rows: %w", err)
	}

	return grants, nil
}

// ─── Write operasyonları ───

func (r *sqliteMemberRepo) Create(ctx context.Context, member *models.Member) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO members (server_id, user_id) VALUES (?, ?) RETURNING joined_at`,
		member.ServerID, member.UserID,
	).Scan(&member.JoinedAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return pkg.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

func (r *sqliteMemberRepo) Delete(ctx context.Context, serverID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM members WHERE server_id = ? AND user_id = ?`,
		serverID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
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

func (r *sqliteMemberRepo) DeleteAllByServer(ctx context.Context, serverID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM members WHERE server_id = ?`, serverID,
	); err != nil {
		return fmt.Errorf("failed to delete members by server: %w", err)
	}
	return nil
}

func (r *sqliteMemberRepo) AddGrant(ctx context.Context, serverID, userID string, grant models.RoleGrant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO member_roles (server_id, user_id, role_id, channel_id) VALUES (?, ?, ?, ?)`,
		serverID, userID, grant.RoleID, scopeToDB(grant.ChannelID),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return pkg.ErrAlreadyExists
		}
		return fmt.Errorf("failed to add grant: %w", err)
	}
	return nil
}

func (r *sqliteMemberRepo) RemoveGrant(ctx context.Context, serverID, userID string, grant models.RoleGrant) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM member_roles WHERE server_id = ? AND user_id = ? AND role_id = ? AND channel_id = ?`,
		serverID, userID, grant.RoleID, scopeToDB(grant.ChannelID),
	)
	if err != nil {
		return fmt.Errorf("failed to remove grant: %w", err)
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

func (r *sqliteMemberRepo) PurgeChannelGrants(ctx context.Context, serverID, channelID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM member_roles WHERE server_id = ? AND channel_id = ?`,
		serverID, channelID,
	); err != nil {
		return fmt.Errorf("failed to purge channel grants: %w", err)
	}
	return nil
}
