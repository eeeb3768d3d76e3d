// Package services — ServerService: sunucu yaşam döngüsü ve üyelik giriş/çıkışı.
//
// Bir sunucunun yapısal durumu (roller, kanallar, üyelikler, sayaç)
// birden fazla tabloya yayıldığı için her yapısal mutasyon
// database.WithTx içinde, tx-bound repository'lerle çalışır.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/repository"
	"github.com/akinalp/agora/ws"
)

// ServerService, sunucu yönetimi iş mantığı interface'i.
type ServerService interface {
	// Create, yeni sunucu oluşturur: sunucu kaydı, absolute sahip rolü,
	// varsayılan üye rolü ve sahibin üyeliği tek transaction'da doğar.
	Create(ctx context.Context, ownerID string, req *models.CreateServerRequest) (*models.Server, error)

	// GetByID, sunucuyu döner.
	GetByID(ctx context.Context, serverID string) (*models.Server, error)

	// GetPublic, keşfedilebilir (public) sunucuları döner.
	GetPublic(ctx context.Context) ([]models.Server, error)

	// Update, sunucu profilini günceller (manage_server gerekir).
	Update(ctx context.Context, actorID, serverID string, req *models.UpdateServerRequest) (*models.Server, error)

	// Delete, sunucuyu ve tüm üyeliklerini siler (sadece sahip).
	Delete(ctx context.Context, actorID, serverID string) error

	// Join, kullanıcıyı sunucuya üye yapar ve başlangıç grant'lerini verir.
	Join(ctx context.Context, serverID, userID string) (*models.Member, error)

	// Leave, kullanıcıyı sunucudan çıkarır. Sahip ayrılamaz.
	Leave(ctx context.Context, serverID, userID string) error

	// GetNotificationSettings, sunucunun varsayılan bildirim ayarlarını döner.
	GetNotificationSettings(ctx context.Context, serverID string) (*models.NotificationSettings, error)

	// UpdateNotificationSettings, varsayılan bildirim ayarlarını günceller
	// (manage_server gerekir).
	UpdateNotificationSettings(ctx context.Context, actorID, serverID string, req *models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error)

	// CheckPermission, çağıran üyenin verilen yetkiye sahip olup
	// olmadığını döner (permissions/check endpoint'i).
	CheckPermission(ctx context.Context, serverID, userID string, req *models.CheckPermissionRequest) (*models.CheckPermissionResponse, error)
}

type serverService struct {
	db          *database.DB
	serverRepo  repository.ServerRepository
	roleRepo    repository.RoleRepository
	channelRepo repository.ChannelRepository
	memberRepo  repository.MemberRepository
	banRepo     repository.BanRepository
	permissions PermissionService
	hub         ws.EventPublisher
}

// NewServerService, ServerService implementasyonunu oluşturur.
func NewServerService(
	db *database.DB,
	serverRepo repository.ServerRepository,
	roleRepo repository.RoleRepository,
	channelRepo repository.ChannelRepository,
	memberRepo repository.MemberRepository,
	banRepo repository.BanRepository,
	permissions PermissionService,
	hub ws.EventPublisher,
) ServerService {
	return &serverService{
		db:          db,
		serverRepo:  serverRepo,
		roleRepo:    roleRepo,
		channelRepo: channelRepo,
		memberRepo:  memberRepo,
		banRepo:     banRepo,
		permissions: permissions,
		hub:         hub,
	}
}

func (s *serverService) Create(ctx context.Context, ownerID string, req *models.CreateServerRequest) (*models.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	server := &models.Server{
		ID:           uuid.NewString(),
		Name:         req.Name,
		OwnerID:      ownerID,
		Bio:          req.Bio,
		AvatarURL:    req.AvatarURL,
		Visibility:   models.ServerVisibility(req.Visibility),
		Tags:         req.Tags,
		MembersCount: 1,
	}
	if server.Tags == nil {
		server.Tags = []string{}
	}

	// Absolute rol: yetki listesi boştur — resolver onu kümeye bakmadan
	// koşulsuz geçirir. Her sunucuda tam olarak bir tane olur.
	ownerRole := &models.Role{
		ID:          uuid.NewString(),
		ServerID:    server.ID,
		Name:        "Owner",
		Permissions: []models.Permission{},
		IsAbsolute:  true,
	}

	// Varsayılan üye rolü: yeni katılan herkese sunucu genelinde verilir.
	memberRole := &models.Role{
		ID:       uuid.NewString(),
		ServerID: server.ID,
		Name:     "Member",
		Permissions: []models.Permission{
			models.PermViewChannel,
			models.PermViewRoles,
		},
	}
	server.DefaultRoleID = &memberRole.ID

	err := database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		serverRepo := repository.NewSQLiteServerRepo(tx)
		roleRepo := repository.NewSQLiteRoleRepo(tx)
		memberRepo := repository.NewSQLiteMemberRepo(tx)

		if err := serverRepo.Create(ctx, server); err != nil {
			return err
		}
		if err := roleRepo.Create(ctx, ownerRole); err != nil {
			return err
		}
		if err := roleRepo.Create(ctx, memberRole); err != nil {
			return err
		}

		owner := &models.Member{ServerID: server.ID, UserID: ownerID}
		if err := memberRepo.Create(ctx, owner); err != nil {
			return err
		}
		return memberRepo.AddGrant(ctx, server.ID, ownerID, models.RoleGrant{RoleID: ownerRole.ID})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpServerCreate, Data: server})

	return server, nil
}

func (s *serverService) GetByID(ctx context.Context, serverID string) (*models.Server, error) {
	return s.serverRepo.GetByID(ctx, serverID)
}

func (s *serverService) GetPublic(ctx context.Context) ([]models.Server, error) {
	servers, err := s.serverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]models.Server, 0, len(servers))
	for _, server := range servers {
		if server.Visibility == models.ServerVisibilityPublic {
			public = append(public, server)
		}
	}
	return public, nil
}

func (s *serverService) Update(ctx context.Context, actorID, serverID string, req *models.UpdateServerRequest) (*models.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageServer, nil); err != nil {
		return nil, err
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		server.Name = *req.Name
	}
	if req.Bio != nil {
		server.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		server.AvatarURL = *req.AvatarURL
	}
	if req.Visibility != nil {
		server.Visibility = models.ServerVisibility(*req.Visibility)
	}
	if req.Tags != nil {
		server.Tags = *req.Tags
	}
	if req.DefaultRoleID != nil {
		if *req.DefaultRoleID == "" {
			server.DefaultRoleID = nil
		} else {
			role, err := s.roleRepo.GetByID(ctx, *req.DefaultRoleID)
			if err != nil || role.ServerID != serverID {
				return nil, fmt.Errorf("%w: default role not found", pkg.ErrBadRequest)
			}
			if role.IsAbsolute {
				return nil, fmt.Errorf("%w: the owner role cannot be a default role", pkg.ErrBadRequest)
			}
			server.DefaultRoleID = req.DefaultRoleID
		}
	}

	if err := s.serverRepo.Update(ctx, server); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpServerUpdate, Data: server})

	return server, nil
}

func (s *serverService) Delete(ctx context.Context, actorID, serverID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	if !server.IsOwner(actorID) {
		return fmt.Errorf("%w: only the owner can delete the server", pkg.ErrForbidden)
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		memberRepo := repository.NewSQLiteMemberRepo(tx)
		serverRepo := repository.NewSQLiteServerRepo(tx)

		if err := memberRepo.DeleteAllByServer(ctx, serverID); err != nil {
			return err
		}
		return serverRepo.Delete(ctx, serverID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpServerDelete, Data: ws.ServerDeleteData{ServerID: serverID}})

	return nil
}

// Join, kullanıcıyı sunucuya üye yapar.
//
// Başlangıç grant'leri:
//   - sunucunun varsayılan rolü, sunucu genelinde (rol hâlâ mevcutsa —
//     dangling id sessizce atlanır);
//   - default_role_id taşıyan her kanal için kanal scope'lu grant.
//     Admin yetkisi taşıyan bir kanal default rolü atlanır: sunucuya
//     katılmak yönetici yetkisi kazandıramaz.
func (s *serverService) Join(ctx context.Context, serverID, userID string) (*models.Member, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	banned, err := s.banRepo.Exists(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, fmt.Errorf("%w: you are banned from this server", pkg.ErrForbidden)
	}

	exists, err := s.memberRepo.Exists(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: already a member of this server", pkg.ErrBadRequest)
	}

	roles, err := s.roleRepo.GetAllByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	roleIdx := models.IndexRoles(roles)

	channels, err := s.channelRepo.GetAllByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	member := &models.Member{ServerID: serverID, UserID: userID}

	var grants []models.RoleGrant
	if server.DefaultRoleID != nil {
		if role, ok := roleIdx[*server.DefaultRoleID]; ok && !role.IsAbsolute {
			grants = append(grants, models.RoleGrant{RoleID: role.ID})
		}
	}
	for i := range channels {
		channel := &channels[i]
		if channel.DefaultRoleID == nil {
			continue
		}
		role, ok := roleIdx[*channel.DefaultRoleID]
		if !ok || role.HasAnyAdminPermission() {
			continue
		}
		grants = append(grants, models.RoleGrant{RoleID: role.ID, ChannelID: &channel.ID})
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		memberRepo := repository.NewSQLiteMemberRepo(tx)
		serverRepo := repository.NewSQLiteServerRepo(tx)

		if err := memberRepo.Create(ctx, member); err != nil {
			return err
		}
		for _, grant := range grants {
			if err := memberRepo.AddGrant(ctx, serverID, userID, grant); err != nil {
				// Aynı rol birden fazla kaynaktan gelebilir — duplicate atla
				if errors.Is(err, pkg.ErrAlreadyExists) {
					continue
				}
				return err
			}
		}
		return serverRepo.AdjustMembersCount(ctx, serverID, 1)
	})
	if err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: already a member of this server", pkg.ErrBadRequest)
		}
		return nil, fmt.Errorf("failed to join server: %w", err)
	}
	member.Roles = grants

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberJoin,
		Data: ws.MemberEventData{ServerID: serverID, UserID: userID},
	})

	return member, nil
}

func (s *serverService) Leave(ctx context.Context, serverID, userID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	if server.IsOwner(userID) {
		return fmt.Errorf("%w: the owner cannot leave the server", pkg.ErrBadRequest)
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		memberRepo := repository.NewSQLiteMemberRepo(tx)
		serverRepo := repository.NewSQLiteServerRepo(tx)

		if err := memberRepo.Delete(ctx, serverID, userID); err != nil {
			return err
		}
		return serverRepo.AdjustMembersCount(ctx, serverID, -1)
	})
	if err != nil {
		return err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberLeave,
		Data: ws.MemberEventData{ServerID: serverID, UserID: userID},
	})

	return nil
}

func (s *serverService) GetNotificationSettings(ctx context.Context, serverID string) (*models.NotificationSettings, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	return &server.Notifications, nil
}

func (s *serverService) UpdateNotificationSettings(ctx context.Context, actorID, serverID string, req *models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error) {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageServer, nil); err != nil {
		return nil, err
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	if req.MuteAll != nil {
		server.Notifications.MuteAll = *req.MuteAll
	}
	if req.MuteNewUsers != nil {
		server.Notifications.MuteNewUsers = *req.MuteNewUsers
	}
	if req.MuteAllExceptMentions != nil {
		server.Notifications.MuteAllExceptMentions = *req.MuteAllExceptMentions
	}

	if err := s.serverRepo.Update(ctx, server); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpServerUpdate, Data: server})

	return &server.Notifications, nil
}

func (s *serverService) CheckPermission(ctx context.Context, serverID, userID string, req *models.CheckPermissionRequest) (*models.CheckPermissionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	allowed, err := s.permissions.Has(ctx, serverID, userID, req.Permission, req.ChannelID)
	if err != nil {
		return nil, err
	}
	return &models.CheckPermissionResponse{Allowed: allowed}, nil
}
