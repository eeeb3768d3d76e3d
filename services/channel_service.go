// Package services — ChannelService: kanal hiyerarşisi iş mantığı.
//
// Position invariant'ı: bir sunucunun kanalları (kategoriler dahil) tek
// bir position dizisini paylaşır ve her yapısal mutasyondan sonra dizi
// yoğundur (0..n-1, çakışma yok). Bu yüzden position'a dokunan her
// operasyon tüm kanal listesini tek transaction'da yeniden yazar.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/repository"
	"github.com/akinalp/agora/ws"
)

// ChannelService, kanal yönetimi iş mantığı interface'i.
type ChannelService interface {
	// GetVisible, üyenin görebildiği kanalları döner: view_channel
	// verilen kanallar + en az bir görünür kanalı barındıran
	// kategoriler, position sıralı tek liste.
	GetVisible(ctx context.Context, serverID, userID string) ([]models.Channel, error)

	// Get, tek bir kanalı döner (o kanal için view_channel gerekir).
	Get(ctx context.Context, serverID, userID, channelID string) (*models.Channel, error)

	// Create, yeni kanal veya kategori oluşturur (manage_channels gerekir).
	Create(ctx context.Context, serverID, actorID string, req *models.CreateChannelRequest) (*models.Channel, error)

	// Update, kanalı günceller (manage_channels gerekir).
	Update(ctx context.Context, serverID, actorID, channelID string, req *models.UpdateChannelRequest) (*models.Channel, error)

	// Delete, kanalı siler (manage_channels gerekir). Kategori çocukları
	// detach edilir, kanala scope'lu grant'ler temizlenir, kalan kanallar
	// yeniden numaralandırılır — hepsi tek transaction'da.
	Delete(ctx context.Context, serverID, actorID, channelID string) error
}

type channelService struct {
	db          *database.DB
	channelRepo repository.ChannelRepository
	roleRepo    repository.RoleRepository
	permissions PermissionService
	hub         ws.EventPublisher
}

// NewChannelService, ChannelService implementasyonunu oluşturur.
func NewChannelService(
	db *database.DB,
	channelRepo repository.ChannelRepository,
	roleRepo repository.RoleRepository,
	permissions PermissionService,
	hub ws.EventPublisher,
) ChannelService {
	return &channelService{
		db:          db,
		channelRepo: channelRepo,
		roleRepo:    roleRepo,
		permissions: permissions,
		hub:         hub,
	}
}

func (s *channelService) GetVisible(ctx context.Context, serverID, userID string) ([]models.Channel, error) {
	channels, err := s.channelRepo.GetAllByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	var visErr error
	visible := models.VisibleChannels(channels, func(channelID string) bool {
		if visErr != nil {
			return false
		}
		allowed, err := s.permissions.Has(ctx, serverID, userID, models.PermViewChannel, &channelID)
		if err != nil {
			visErr = err
			return false
		}
		return allowed
	})
	if visErr != nil {
		return nil, visErr
	}

	return visible, nil
}

func (s *channelService) Get(ctx context.Context, serverID, userID, channelID string) (*models.Channel, error) {
	channel, err := s.getServerChannel(ctx, serverID, channelID)
	if err != nil {
		return nil, err
	}

	if err := s.permissions.Require(ctx, serverID, userID, models.PermViewChannel, &channel.ID); err != nil {
		return nil, err
	}

	return channel, nil
}

func (s *channelService) Create(ctx context.Context, serverID, actorID string, req *models.CreateChannelRequest) (*models.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageChannels, nil); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.validateCategoryTarget(ctx, serverID, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.DefaultRoleID != nil {
		if err := s.validateDefaultRole(ctx, serverID, *req.DefaultRoleID); err != nil {
			return nil, err
		}
	}

	channel := &models.Channel{
		ID:            uuid.NewString(),
		ServerID:      serverID,
		Name:          req.Name,
		Type:          models.ChannelType(req.Type),
		CategoryID:    req.CategoryID,
		DefaultRoleID: req.DefaultRoleID,
	}

	err := database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		channelRepo := repository.NewSQLiteChannelRepo(tx)

		count, err := channelRepo.CountByServer(ctx, serverID)
		if err != nil {
			return err
		}

		position, shiftFrom := models.InsertPosition(count, req.Position)
		if shiftFrom >= 0 {
			if err := channelRepo.ShiftPositionsFrom(ctx, serverID, shiftFrom); err != nil {
				return err
			}
		}
		channel.Position = position

		return channelRepo.Create(ctx, channel)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelCreate, Data: channel})

	return channel, nil
}

func (s *channelService) Update(ctx context.Context, serverID, actorID, channelID string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageChannels, nil); err != nil {
		return nil, err
	}

	channel, err := s.getServerChannel(ctx, serverID, channelID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}

	if req.CategorySet {
		if req.CategoryID == nil {
			channel.CategoryID = nil
		} else {
			if channel.IsCategory() {
				return nil, fmt.Errorf("%w: a category cannot belong to another category", pkg.ErrBadRequest)
			}
			if *req.CategoryID == channel.ID {
				return nil, fmt.Errorf("%w: a channel cannot be its own category", pkg.ErrBadRequest)
			}
			if err := s.validateCategoryTarget(ctx, serverID, *req.CategoryID); err != nil {
				return nil, err
			}
			channel.CategoryID = req.CategoryID
		}
	}

	if req.DefaultRoleSet {
		if req.DefaultRoleID == nil {
			channel.DefaultRoleID = nil
		} else {
			if err := s.validateDefaultRole(ctx, serverID, *req.DefaultRoleID); err != nil {
				return nil, err
			}
			channel.DefaultRoleID = req.DefaultRoleID
		}
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		channelRepo := repository.NewSQLiteChannelRepo(tx)

		if req.Position != nil {
			// Taşınan kanal çıkarılıp hedef index'e splice edilir ve TÜM
			// kanallar 0..n-1 yeniden numaralandırılır.
			all, err := channelRepo.GetAllByServer(ctx, serverID)
			if err != nil {
				return err
			}
			reordered := models.ReorderPositions(all, channel.ID, *req.Position)
			if err := channelRepo.UpdatePositions(ctx, reordered); err != nil {
				return err
			}
			for _, c := range reordered {
				if c.ID == channel.ID {
					channel.Position = c.Position
					break
				}
			}
		}

		return channelRepo.Update(ctx, channel)
	})
	if err != nil {
		return nil, err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelUpdate, Data: channel})

	return channel, nil
}

func (s *channelService) Delete(ctx context.Context, serverID, actorID, channelID string) error {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageChannels, nil); err != nil {
		return err
	}

	channel, err := s.getServerChannel(ctx, serverID, channelID)
	if err != nil {
		return err
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		channelRepo := repository.NewSQLiteChannelRepo(tx)
		memberRepo := repository.NewSQLiteMemberRepo(tx)

		// Kategori siliniyorsa çocuklar cascade edilmez — detach edilir
		if channel.IsCategory() {
			if err := channelRepo.DetachCategory(ctx, serverID, channel.ID); err != nil {
				return err
			}
		}

		if err := channelRepo.Delete(ctx, channel.ID); err != nil {
			return err
		}

		// Bu kanala scope'lanmış tüm üye grant'leri temizlenir
		if err := memberRepo.PurgeChannelGrants(ctx, serverID, channel.ID); err != nil {
			return err
		}

		// Kalan kanallar yoğun diziye yeniden numaralandırılır
		remaining, err := channelRepo.GetAllByServer(ctx, serverID)
		if err != nil {
			return err
		}
		return channelRepo.UpdatePositions(ctx, models.RenumberPositions(remaining))
	})
	if err != nil {
		return err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpChannelDelete,
		Data: ws.ChannelDeleteData{ServerID: serverID, ChannelID: channelID},
	})

	return nil
}

// getServerChannel, kanalı yükler ve sunucuya ait olduğunu doğrular.
func (s *channelService) getServerChannel(ctx context.Context, serverID, channelID string) (*models.Channel, error) {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.ServerID != serverID {
		return nil, pkg.ErrNotFound
	}
	return channel, nil
}

// validateCategoryTarget, category_id'nin bu sunucuda mevcut bir
// kategori kanalına işaret ettiğini doğrular.
func (s *channelService) validateCategoryTarget(ctx context.Context, serverID, categoryID string) error {
	category, err := s.channelRepo.GetByID(ctx, categoryID)
	if err != nil || category.ServerID != serverID {
		return fmt.Errorf("%w: category not found", pkg.ErrBadRequest)
	}
	if !category.IsCategory() {
		return fmt.Errorf("%w: target channel is not a category", pkg.ErrBadRequest)
	}
	return nil
}

// validateDefaultRole, default_role_id'nin bu sunucuda mevcut ve admin
// yetkisi taşımayan bir role işaret ettiğini doğrular. Default rol her
// yeni üyeye otomatik verildiği için admin rolü default olamaz.
func (s *channelService) validateDefaultRole(ctx context.Context, serverID, roleID string) error {
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil || role.ServerID != serverID {
		return fmt.Errorf("%w: default role not found", pkg.ErrBadRequest)
	}
	if role.HasAnyAdminPermission() {
		return fmt.Errorf("%w: default role cannot be an admin role", pkg.ErrBadRequest)
	}
	return nil
}
