// Package services — MemberService: üye yönetimi ve moderasyon.
//
// Sahip kimlik bazlı dokunulmazdır: atılamaz, yasaklanamaz. Absolute rol
// grant API'si üzerinden asla atanamaz veya kaldırılamaz — sahiplik rol
// değil kimliktir.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/repository"
	"github.com/akinalp/agora/ws"
)

// MemberService, üye yönetimi iş mantığı interface'i.
type MemberService interface {
	// GetAll, sunucu üyelerini grant'ler OLMADAN döner.
	GetAll(ctx context.Context, serverID string) ([]models.Member, error)

	// Get, tek bir üyeyi grant'leriyle döner. Grant'ler sadece üyenin
	// kendisine veya view_roles taşıyanlara görünür.
	Get(ctx context.Context, serverID, actorID, targetID string) (*models.Member, error)

	// AddRole, üyeye (rol, scope) grant'i ekler (assign_roles gerekir).
	AddRole(ctx context.Context, serverID, actorID, targetID string, req *models.MemberRoleRequest) error

	// RemoveRole, üyeden grant'i kaldırır (assign_roles gerekir).
	RemoveRole(ctx context.Context, serverID, actorID, targetID string, req *models.MemberRoleRequest) error

	// Kick, üyeyi sunucudan atar (kick_members gerekir, sahip dokunulmaz).
	Kick(ctx context.Context, serverID, actorID, targetID string) error

	// Ban, kullanıcıyı yasaklar ve üyeyse sunucudan atar (ban_members).
	Ban(ctx context.Context, serverID, actorID, targetID string, req *models.BanMemberRequest) (*models.Ban, error)

	// Unban, yasağı kaldırır (ban_members gerekir). Üyelik geri gelmez.
	Unban(ctx context.Context, serverID, actorID, targetID string) error

	// UpdateBanReason, yasak sebebini günceller (ban_members gerekir).
	UpdateBanReason(ctx context.Context, serverID, actorID, targetID string, req *models.UpdateBanRequest) (*models.Ban, error)

	// GetBans, sunucunun yasak listesini döner (ban_members gerekir).
	GetBans(ctx context.Context, serverID, actorID string) ([]models.Ban, error)
}

type memberService struct {
	db          *database.DB
	serverRepo  repository.ServerRepository
	roleRepo    repository.RoleRepository
	channelRepo repository.ChannelRepository
	memberRepo  repository.MemberRepository
	banRepo     repository.BanRepository
	permissions PermissionService
	hub         ws.EventPublisher
}

// NewMemberService, MemberService implementasyonunu oluşturur.
func NewMemberService(
	db *database.DB,
	serverRepo repository.ServerRepository,
	roleRepo repository.RoleRepository,
	channelRepo repository.ChannelRepository,
	memberRepo repository.MemberRepository,
	banRepo repository.BanRepository,
	permissions PermissionService,
	hub ws.EventPublisher,
) MemberService {
	return &memberService{
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

func (s *memberService) GetAll(ctx context.Context, serverID string) ([]models.Member, error) {
	return s.memberRepo.GetAllByServer(ctx, serverID)
}

func (s *memberService) Get(ctx context.Context, serverID, actorID, targetID string) (*models.Member, error) {
	member, err := s.memberRepo.Get(ctx, serverID, targetID)
	if err != nil {
		return nil, err
	}

	if actorID != targetID {
		if err := s.permissions.Require(ctx, serverID, actorID, models.PermViewRoles, nil); err != nil {
			return nil, err
		}
	}

	return member, nil
}

func (s *memberService) AddRole(ctx context.Context, serverID, actorID, targetID string, req *models.MemberRoleRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.permissions.Require(ctx, serverID, actorID, models.PermAssignRoles, nil); err != nil {
		return err
	}

	role, err := s.roleRepo.GetByID(ctx, req.RoleID)
	if err != nil || role.ServerID != serverID {
		return fmt.Errorf("%w: role not found", pkg.ErrNotFound)
	}
	if role.IsAbsolute {
		return fmt.Errorf("%w: cannot assign the owner role", pkg.ErrForbidden)
	}

	if req.ChannelID != nil {
		channel, err := s.channelRepo.GetByID(ctx, *req.ChannelID)
		if err != nil || channel.ServerID != serverID {
			return fmt.Errorf("%w: channel not found", pkg.ErrNotFound)
		}
	}

	exists, err := s.memberRepo.Exists(ctx, serverID, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: member not found", pkg.ErrNotFound)
	}

	grant := models.RoleGrant{RoleID: req.RoleID, ChannelID: req.ChannelID}
	if err := s.memberRepo.AddGrant(ctx, serverID, targetID, grant); err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return fmt.Errorf("%w: member already has this role", pkg.ErrBadRequest)
		}
		return err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberUpdate,
		Data: ws.MemberEventData{ServerID: serverID, UserID: targetID},
	})

	return nil
}

func (s *memberService) RemoveRole(ctx context.Context, serverID, actorID, targetID string, req *models.MemberRoleRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.permissions.Require(ctx, serverID, actorID, models.PermAssignRoles, nil); err != nil {
		return err
	}

	// Absolute rol grant API'si üzerinden kaldırılamaz — rol silinmiş
	// olabileceği için lookup hatası yoksayılır (dangling grant'ler
	// yine de kaldırılabilmeli).
	if role, err := s.roleRepo.GetByID(ctx, req.RoleID); err == nil && role.IsAbsolute {
		return fmt.Errorf("%w: cannot remove the owner role", pkg.ErrForbidden)
	}

	grant := models.RoleGrant{RoleID: req.RoleID, ChannelID: req.ChannelID}
	if err := s.memberRepo.RemoveGrant(ctx, serverID, targetID, grant); err != nil {
		return err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberUpdate,
		Data: ws.MemberEventData{ServerID: serverID, UserID: targetID},
	})

	return nil
}

func (s *memberService) Kick(ctx context.Context, serverID, actorID, targetID string) error {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermKickMembers, nil); err != nil {
		return err
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if server.IsOwner(targetID) {
		return fmt.Errorf("%w: the owner cannot be kicked", pkg.ErrBadRequest)
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		memberRepo := repository.NewSQLiteMemberRepo(tx)
		serverRepo := repository.NewSQLiteServerRepo(tx)

		if err := memberRepo.Delete(ctx, serverID, targetID); err != nil {
			return err
		}
		return serverRepo.AdjustMembersCount(ctx, serverID, -1)
	})
	if err != nil {
		return err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberKick,
		Data: ws.MemberEventData{ServerID: serverID, UserID: targetID},
	})

	return nil
}

func (s *memberService) Ban(ctx context.Context, serverID, actorID, targetID string, req *models.BanMemberRequest) (*models.Ban, error) {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermBanMembers, nil); err != nil {
		return nil, err
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if server.IsOwner(targetID) {
		return nil, fmt.Errorf("%w: the owner cannot be banned", pkg.ErrBadRequest)
	}

	ban := &models.Ban{
		ServerID: serverID,
		UserID:   targetID,
		Reason:   req.Reason,
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		banRepo := repository.NewSQLiteBanRepo(tx)
		memberRepo := repository.NewSQLiteMemberRepo(tx)
		serverRepo := repository.NewSQLiteServerRepo(tx)

		if err := banRepo.Create(ctx, ban); err != nil {
			return err
		}

		// Yasaklanan kullanıcı üyeyse sunucudan da çıkarılır.
		// Üye olmayan kullanıcı da yasaklanabilir (preemptive ban).
		wasMember, err := memberRepo.Exists(ctx, serverID, targetID)
		if err != nil {
			return err
		}
		if wasMember {
			if err := memberRepo.Delete(ctx, serverID, targetID); err != nil {
				return err
			}
			return serverRepo.AdjustMembersCount(ctx, serverID, -1)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: user is already banned", pkg.ErrAlreadyExists)
		}
		return nil, err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberBan,
		Data: ws.MemberEventData{ServerID: serverID, UserID: targetID},
	})

	return ban, nil
}

func (s *memberService) Unban(ctx context.Context, serverID, actorID, targetID string) error {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermBanMembers, nil); err != nil {
		return err
	}

	if err := s.banRepo.Delete(ctx, serverID, targetID); err != nil {
		return err
	}

	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpMemberUnban,
		Data: ws.MemberEventData{ServerID: serverID, UserID: targetID},
	})

	return nil
}

func (s *memberService) UpdateBanReason(ctx context.Context, serverID, actorID, targetID string, req *models.UpdateBanRequest) (*models.Ban, error) {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermBanMembers, nil); err != nil {
		return nil, err
	}

	if err := s.banRepo.UpdateReason(ctx, serverID, targetID, req.Reason); err != nil {
		return nil, err
	}

	return s.banRepo.Get(ctx, serverID, targetID)
}

func (s *memberService) GetBans(ctx context.Context, serverID, actorID string) ([]models.Ban, error) {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermBanMembers, nil); err != nil {
		return nil, err
	}

	return s.banRepo.GetAllByServer(ctx, serverID)
}
