// Package services — PermissionService: yetki kararlarının tek kapısı.
//
// Karar modeli tamamen additive'dir: üyenin uygun scope'taki
// grant'lerinden çözümlenen rollerin herhangi biri yetkiyi taşıyorsa
// izin verilir. Sunucu sahibi kimlik bazlı bypass'a sahiptir — rol ve
// grant'lere hiç bakılmaz.
//
// Kararlar kısa ömürlü bir TTL cache'te tutulur; rol, grant veya kanal
// değiştiren her servis ilgili sunucunun cache'ini invalidate eder.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/pkg/cache"
	"github.com/akinalp/agora/repository"
)

// PermissionService, yetki kontrolü interface'i.
type PermissionService interface {
	// Has, üyenin verilen yetkiye sahip olup olmadığını döner.
	// channelID nil ise sunucu geneli bağlamda kontrol edilir.
	// Üye olmayan kullanıcı için her zaman false (sahip hariç).
	Has(ctx context.Context, serverID, userID string, perm models.Permission, channelID *string) (bool, error)

	// Require, Has false dönerse pkg.ErrForbidden döner.
	Require(ctx context.Context, serverID, userID string, perm models.Permission, channelID *string) error

	// InvalidateServer, sunucunun tüm cache'lenmiş kararlarını düşürür.
	// Rol, grant veya kanal mutasyonlarından sonra çağrılır.
	InvalidateServer(serverID string)

	// Close, cache'in arka plan goroutine'ini durdurur.
	Close()
}

type permissionService struct {
	serverRepo repository.ServerRepository
	roleRepo   repository.RoleRepository
	memberRepo repository.MemberRepository

	// decisions: "serverID\x00userID\x00perm\x00scope" → allowed
	decisions *cache.TTLCache[string, bool]
}

// decisionTTL kısa tutulur: invalidation'ı kaçıran bir edge case'te bile
// eski karar en fazla bu süre yaşar.
const (
	decisionTTL     = 30 * time.Second
	cacheCleanupInt = 5 * time.Minute
)

// NewPermissionService, PermissionService implementasyonunu oluşturur.
func NewPermissionService(
	serverRepo repository.ServerRepository,
	roleRepo repository.RoleRepository,
	memberRepo repository.MemberRepository,
) PermissionService {
	return &permissionService{
		serverRepo: serverRepo,
		roleRepo:   roleRepo,
		memberRepo: memberRepo,
		decisions:  cache.New[string, bool](decisionTTL, cacheCleanupInt),
	}
}

func decisionKey(serverID, userID string, perm models.Permission, channelID *string) string {
	scope := ""
	if channelID != nil {
		scope = *channelID
	}
	return serverID + "\x00" + userID + "\x00" + string(perm) + "\x00" + scope
}

func (s *permissionService) Has(ctx context.Context, serverID, userID string, perm models.Permission, channelID *string) (bool, error) {
	key := decisionKey(serverID, userID, perm, channelID)
	if allowed, ok := s.decisions.Get(key); ok {
		return allowed, nil
	}

	allowed, err := s.resolve(ctx, serverID, userID, perm, channelID)
	if err != nil {
		return false, err
	}

	s.decisions.Set(key, allowed)
	return allowed, nil
}

func (s *permissionService) resolve(ctx context.Context, serverID, userID string, perm models.Permission, channelID *string) (bool, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return false, err
	}

	// Sahip bypass — rol ve grant'lere bakılmaz
	if server.IsOwner(userID) {
		return true, nil
	}

	grants, err := s.memberRepo.GetGrants(ctx, serverID, userID)
	if err != nil {
		return false, err
	}
	if len(grants) == 0 {
		return false, nil
	}

	roles, err := s.roleRepo.GetAllByServer(ctx, serverID)
	if err != nil {
		return false, err
	}

	return models.HasPermission(roles, grants, perm, channelID), nil
}

func (s *permissionService) Require(ctx context.Context, serverID, userID string, perm models.Permission, channelID *string) error {
	allowed, err := s.Has(ctx, serverID, userID, perm, channelID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: missing permission %s", pkg.ErrForbidden, perm)
	}
	return nil
}

func (s *permissionService) InvalidateServer(serverID string) {
	prefix := serverID + "\x00"
	s.decisions.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (s *permissionService) Close() {
	s.decisions.Close()
}
