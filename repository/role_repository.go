package repository

import (
	"context"

	"github.com/akinalp/agora/models"
)

// RoleRepository, rol veritabanı işlemleri için interface.
type RoleRepository interface {
	// ─── Read ───
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetAllByServer(ctx context.Context, serverID string) ([]models.Role, error)
	GetAbsoluteByServer(ctx context.Context, serverID string) (*models.Role, error)

	// ─── Write ───
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error

	// Delete, absolute olmayan bir rolü siler. Absolute rol DB
	// seviyesinde de korunur (is_absolute = 0 koşulu).
	// Üye grant'lerine cascade YOKTUR — dangling grant'ler resolver
	// tarafından atlanır.
	Delete(ctx context.Context, id string) error
}
