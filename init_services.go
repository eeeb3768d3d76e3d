// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// Sıralama kuralı: PermissionService diğer tüm service'lerden ÖNCE
// oluşturulur — yetki kontrolü yapan her service ona bağımlıdır.
package main

import (
	"time"

	"github.com/akinalp/agora/config"
	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/pkg/ratelimit"
	"github.com/akinalp/agora/services"
	"github.com/akinalp/agora/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Auth       services.AuthService
	Permission services.PermissionService
	Server     services.ServerService
	Role       services.RoleService
	Channel    services.ChannelService
	Member     services.MemberService
}

// initServices, tüm service'leri ve yazma rate limiter'ını oluşturur.
//
// hub, service'ler arası paylaşılan dependency'dir — yapısal her mutasyon
// sonrası WebSocket event'i yayınlanır.
func initServices(db *database.DB, repos *Repositories, hub ws.EventPublisher, cfg *config.Config) (*Services, *ratelimit.Limiter) {
	// PermissionService — yetki kararlarının tek kapısı, diğer
	// service'lerden önce oluşturulur
	permissionService := services.NewPermissionService(repos.Server, repos.Role, repos.Member)

	authService := services.NewAuthService(cfg.JWT.Secret)

	serverService := services.NewServerService(
		db, repos.Server, repos.Role, repos.Channel, repos.Member, repos.Ban,
		permissionService, hub,
	)
	roleService := services.NewRoleService(
		repos.Server, repos.Role, repos.Member, permissionService, hub,
	)
	channelService := services.NewChannelService(
		db, repos.Channel, repos.Role, permissionService, hub,
	)
	memberService := services.NewMemberService(
		db, repos.Server, repos.Role, repos.Channel, repos.Member, repos.Ban,
		permissionService, hub,
	)

	// Yazma endpoint'leri için IP bazlı rate limiter
	writeLimiter := ratelimit.New(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)

	svcs := &Services{
		Auth:       authService,
		Permission: permissionService,
		Server:     serverService,
		Role:       roleService,
		Channel:    channelService,
		Member:     memberService,
	}

	return svcs, writeLimiter
}
