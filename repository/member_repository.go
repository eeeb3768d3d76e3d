package repository

import (
	"context"

	"github.com/akinalp/agora/models"
)

// MemberRepository, üyelik ve grant veritabanı işlemleri için interface.
//
// Grant'ler member_roles tablosunda tutulur; sunucu geneli scope DB'de
// '' sentinel'i ile saklanır ama interface seviyesinde her zaman
// *string (nil = sunucu geneli) görünür.
type MemberRepository interface {
	// ─── Read ───

	// Get, üyeyi grant listesiyle birlikte döner.
	Get(ctx context.Context, serverID, userID string) (*models.Member, error)

	// GetAllByServer, sunucunun üyelerini grant'ler OLMADAN döner.
	// Üye listeleme endpoint'i grant'leri göstermez.
	GetAllByServer(ctx context.Context, serverID string) ([]models.Member, error)

	Exists(ctx context.Context, serverID, userID string) (bool, error)
	GetGrants(ctx context.Context, serverID, userID string) ([]models.RoleGrant, error)

	// ─── Write ───
	Create(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, serverID, userID string) error
	DeleteAllByServer(ctx context.Context, serverID string) error

	// AddGrant, üyeye bir (rol, scope) grant'i ekler.
	// Aynı çift zaten varsa pkg.ErrAlreadyExists döner.
	AddGrant(ctx context.Context, serverID, userID string, grant models.RoleGrant) error

	// RemoveGrant, grant'i kaldırır. Grant yoksa pkg.ErrNotFound döner.
	RemoveGrant(ctx context.Context, serverID, userID string, grant models.RoleGrant) error

	// PurgeChannelGrants, verilen kanala scope'lanmış TÜM üyelerin
	// grant'lerini siler. Kanal silinirken aynı transaction'da çağrılır.
	PurgeChannelGrants(ctx context.Context, serverID, channelID string) error
}
