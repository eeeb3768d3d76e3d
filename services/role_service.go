// Package services — RoleService: rol CRUD iş mantığı.
//
// Koruma kuralları:
//   - Absolute rol sadece sunucu sahibi tarafından düzenlenebilir ve
//     hiç kimse tarafından silinemez.
//   - Bir üye, sunucu genelinde taşıdığı bir rolü düzenleyemez
//     (manage_roles olsa bile) — kendi yetkilerini genişletemez.
//   - Rol silme sadece sahibe açıktır.
//   - Rol silindiğinde üye grant'lerine dokunulmaz: dangling grant'ler
//     resolver tarafından atlanır.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/repository"
	"github.com/akinalp/agora/ws"
)

// RoleService, rol yönetimi iş mantığı interface'i.
type RoleService interface {
	// GetAll, sunucunun rollerini döner (view_roles gerekir).
	// Absolute rol listede görünmez.
	GetAll(ctx context.Context, serverID, actorID string) ([]models.Role, error)

	// Create, yeni (absolute olmayan) rol oluşturur (manage_roles gerekir).
	Create(ctx context.Context, serverID, actorID string, req *models.CreateRoleRequest) (*models.Role, error)

	// Update, mevcut rolü günceller.
	Update(ctx context.Context, serverID, actorID, roleID string, req *models.UpdateRoleRequest) (*models.Role, error)

	// Delete, rolü siler (sadece sahip; absolute rol asla).
	Delete(ctx context.Context, serverID, actorID, roleID string) error
}

type roleService struct {
	serverRepo  repository.ServerRepository
	roleRepo    repository.RoleRepository
	memberRepo  repository.MemberRepository
	permissions PermissionService
	hub         ws.EventPublisher
}

// NewRoleService, RoleService implementasyonunu oluşturur.
func NewRoleService(
	serverRepo repository.ServerRepository,
	roleRepo repository.RoleRepository,
	memberRepo repository.MemberRepository,
	permissions PermissionService,
	hub ws.EventPublisher,
) RoleService {
	return &roleService{
		serverRepo:  serverRepo,
		roleRepo:    roleRepo,
		memberRepo:  memberRepo,
		permissions: permissions,
		hub:         hub,
	}
}

func (s *roleService) GetAll(ctx context.Context, serverID, actorID string) ([]models.Role, error) {
	if err := s.permissions.Require(ctx, serverID, actorID, models.PermViewRoles, nil); err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.GetAllByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	return models.FilterVisibleRoles(roles), nil
}

func (s *roleService) Create(ctx context.Context, serverID, actorID string, req *models.CreateRoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageRoles, nil); err != nil {
		return nil, err
	}

	role := &models.Role{
		ID:          uuid.NewString(),
		ServerID:    serverID,
		Name:        req.Name,
		Permissions: req.Permissions,
	}
	if role.Permissions == nil {
		role.Permissions = []models.Permission{}
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleCreate, Data: role})

	return role, nil
}

func (s *roleService) Update(ctx context.Context, serverID, actorID, roleID string, req *models.UpdateRoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	role, err := s.getServerRole(ctx, serverID, roleID)
	if err != nil {
		return nil, err
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}

	if role.IsAbsolute {
		// Absolute rolü sadece sahip düzenleyebilir; self-edit kuralı
		// burada uygulanmaz, aksi halde kural ölü olurdu (sahip rolü
		// her zaman kendisinde taşır).
		if !server.IsOwner(actorID) {
			return nil, fmt.Errorf("%w: only the owner can modify the owner role", pkg.ErrForbidden)
		}
	} else {
		// Üye, sunucu genelinde taşıdığı rolü düzenleyemez — kendi
		// yetki kümesini genişletmesini engeller. Sahip dahil.
		grants, err := s.memberRepo.GetGrants(ctx, serverID, actorID)
		if err != nil {
			return nil, err
		}
		holder := models.Member{Roles: grants}
		if holder.HasServerScopedRole(roleID) {
			return nil, fmt.Errorf("%w: cannot modify a role you hold", pkg.ErrForbidden)
		}

		if err := s.permissions.Require(ctx, serverID, actorID, models.PermManageRoles, nil); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Permissions != nil {
		role.Permissions = *req.Permissions
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleUpdate, Data: role})

	return role, nil
}

func (s *roleService) Delete(ctx context.Context, serverID, actorID, roleID string) error {
	role, err := s.getServerRole(ctx, serverID, roleID)
	if err != nil {
		return err
	}

	if role.IsAbsolute {
		return fmt.Errorf("%w: the owner role cannot be deleted", pkg.ErrForbidden)
	}

	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if !server.IsOwner(actorID) {
		return fmt.Errorf("%w: only the owner can delete roles", pkg.ErrForbidden)
	}

	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return err
	}

	s.permissions.InvalidateServer(serverID)
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpRoleDelete,
		Data: ws.RoleDeleteData{ServerID: serverID, RoleID: roleID},
	})

	return nil
}

// getServerRole, rolü yükler ve sunucuya ait olduğunu doğrular.
// Başka sunucunun rolü bu sunucu üzerinden görünmez — NotFound.
func (s *roleService) getServerRole(ctx context.Context, serverID, roleID string) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.ServerID != serverID {
		return nil, pkg.ErrNotFound
	}
	return role, nil
}
