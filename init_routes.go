// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - auth: JWT token doğrulaması
//   - authServer: auth + sunucu üyelik kontrolü
//   - authWrite / authServerWrite: üstüne yazma rate limit'i
//
// İnce taneli yetki kontrolleri (manage_roles, view_channel, ...) service
// katmanında yapılır — route seviyesinde sadece kimlik ve üyelik doğrulanır.
// Kanal scope'lu yetkiler route'tan bilinemez; karar request body'ye ve
// DB durumuna bağlıdır.
package main

import (
	"net/http"

	"github.com/akinalp/agora/middleware"
	"github.com/akinalp/agora/pkg/ratelimit"
	"github.com/akinalp/agora/repository"
	"github.com/akinalp/agora/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE
// tanımlanmalı — yoksa Go router literal kelimeyi parametre olarak yorumlar.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	memberRepo repository.MemberRepository,
	writeLimiter *ratelimit.Limiter,
) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(authService)
	serverMw := middleware.NewServerMembershipMiddleware(memberRepo)
	rateMw := middleware.NewRateLimitMiddleware(writeLimiter)

	// ─── Middleware Chain Helpers ───
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}
	authWrite := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(rateMw.Limit(http.HandlerFunc(handler)))
	}
	authServer := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(serverMw.Require(http.HandlerFunc(handler)))
	}
	authServerWrite := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(serverMw.Require(rateMw.Limit(http.HandlerFunc(handler))))
	}

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"agora"}`))
	})

	// Servers — keşif, oluşturma, katılma
	//
	// Join membership middleware'ından geçmez: katılmak isteyen kullanıcı
	// henüz üye değildir. serverId'yi handler kendisi path'ten okur.
	mux.Handle("GET /api/servers", auth(h.Server.ListPublic))
	mux.Handle("POST /api/servers", authWrite(h.Server.Create))
	mux.Handle("POST /api/servers/{serverId}/join", authWrite(h.Server.Join))

	// Server-scoped
	mux.Handle("GET /api/servers/{serverId}", authServer(h.Server.Get))
	mux.Handle("PATCH /api/servers/{serverId}", authServerWrite(h.Server.Update))
	mux.Handle("DELETE /api/servers/{serverId}", authServerWrite(h.Server.Delete))
	mux.Handle("POST /api/servers/{serverId}/leave", authServerWrite(h.Server.Leave))
	mux.Handle("GET /api/servers/{serverId}/notifications", authServer(h.Server.GetNotifications))
	mux.Handle("PATCH /api/servers/{serverId}/notifications", authServerWrite(h.Server.UpdateNotifications))
	mux.Handle("POST /api/servers/{serverId}/permissions/check", authServer(h.Server.CheckPermission))

	// Roles
	mux.Handle("GET /api/servers/{serverId}/roles", authServer(h.Role.List))
	mux.Handle("POST /api/servers/{serverId}/roles", authServerWrite(h.Role.Create))
	mux.Handle("PATCH /api/servers/{serverId}/roles/{id}", authServerWrite(h.Role.Update))
	mux.Handle("DELETE /api/servers/{serverId}/roles/{id}", authServerWrite(h.Role.Delete))

	// Channels
	mux.Handle("GET /api/servers/{serverId}/channels", authServer(h.Channel.List))
	mux.Handle("POST /api/servers/{serverId}/channels", authServerWrite(h.Channel.Create))
	mux.Handle("GET /api/servers/{serverId}/channels/{id}", authServer(h.Channel.Get))
	mux.Handle("PATCH /api/servers/{serverId}/channels/{id}", authServerWrite(h.Channel.Update))
	mux.Handle("DELETE /api/servers/{serverId}/channels/{id}", authServerWrite(h.Channel.Delete))

	// Members
	mux.Handle("GET /api/servers/{serverId}/members", authServer(h.Member.List))
	mux.Handle("GET /api/servers/{serverId}/members/{id}", authServer(h.Member.Get))
	mux.Handle("POST /api/servers/{serverId}/members/{id}/roles", authServerWrite(h.Member.AddRole))
	mux.Handle("DELETE /api/servers/{serverId}/members/{id}/roles", authServerWrite(h.Member.RemoveRole))
	mux.Handle("DELETE /api/servers/{serverId}/members/{id}", authServerWrite(h.Member.Kick))
	mux.Handle("POST /api/servers/{serverId}/members/{id}/ban", authServerWrite(h.Member.Ban))

	// Bans
	mux.Handle("GET /api/servers/{serverId}/bans", authServer(h.Member.GetBans))
	mux.Handle("PATCH /api/servers/{serverId}/bans/{id}", authServerWrite(h.Member.UpdateBan))
	mux.Handle("DELETE /api/servers/{serverId}/bans/{id}", authServerWrite(h.Member.Unban))

	// WebSocket — token query parameter ile authenticate edilir.
	// WS upgrade sırasında tarayıcılar custom HTTP header gönderemez;
	// handler token doğrulamasını kendi içinde yapar.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
