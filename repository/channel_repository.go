package repository

import (
	"context"

	"github.com/akinalp/agora/models"
)

// ChannelRepository, kanal veritabanı işlemleri için interface.
// Kategoriler de bu repository üzerinden yönetilir (type='category').
type ChannelRepository interface {
	// ─── Read ───
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	GetAllByServer(ctx context.Context, serverID string) ([]models.Channel, error)
	CountByServer(ctx context.Context, serverID string) (int, error)

	// ─── Write ───
	Create(ctx context.Context, channel *models.Channel) error
	Update(ctx context.Context, channel *models.Channel) error
	Delete(ctx context.Context, id string) error

	// ShiftPositionsFrom, position >= from olan tüm kanalları +1 kaydırır.
	// Explicit position ile kanal insert edilirken kullanılır.
	ShiftPositionsFrom(ctx context.Context, serverID string, from int) error

	// UpdatePositions, verilen kanalların position değerlerini yazar.
	// Caller transaction içinde çağırır — reorder/renumber sonuçlarını
	// persist etmek için.
	UpdatePositions(ctx context.Context, channels []models.Channel) error

	// DetachCategory, verilen kategoriye bağlı tüm kanalların
	// category_id'sini NULL'a çeker. Kategori silinirken çocuklar
	// cascade edilmez, detach edilir.
	DetachCategory(ctx context.Context, serverID, categoryID string) error
}
