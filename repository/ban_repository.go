package repository

import (
	"context"

	"github.com/akinalp/agora/models"
)

// BanRepository, yasak kayıtları için interface.
// Yasak kaydı üyelikten bağımsızdır — üye silinse de kayıt durur.
type BanRepository interface {
	// ─── Read ───
	Get(ctx context.Context, serverID, userID string) (*models.Ban, error)
	GetAllByServer(ctx context.Context, serverID string) ([]models.Ban, error)
	Exists(ctx context.Context, serverID, userID string) (bool, error)

	// ─── Write ───

	// Create, yasak kaydı ekler. Kullanıcı zaten yasaklıysa
	// pkg.ErrAlreadyExists döner.
	Create(ctx context.Context, ban *models.Ban) error
	UpdateReason(ctx context.Context, serverID, userID, reason string) error
	Delete(ctx context.Context, serverID, userID string) error
}
