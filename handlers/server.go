// Package handlers — ServerHandler: sunucu yaşam döngüsü HTTP endpoint'leri.
//
// Thin handler prensibi: Parse → Service → Response.
// Yetki kontrolleri service katmanında yapılır — handler'a ulaşan request
// authenticated'dır (authMiddleware) ve sunucu-scoped route'larda üyedir
// (serverMiddleware), ama yetkili olmayabilir.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/services"
)

// ServerHandler, sunucu endpoint'lerini yönetir.
type ServerHandler struct {
	serverService services.ServerService
}

// NewServerHandler, constructor.
func NewServerHandler(serverService services.ServerService) *ServerHandler {
	return &ServerHandler{serverService: serverService}
}

// ListPublic godoc
// GET /api/servers
// Keşfedilebilir (public) sunucuları döner.
func (h *ServerHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	servers, err := h.serverService.GetPublic(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, servers)
}

// Create godoc
// POST /api/servers
// Body: { "name": "...", "bio": "...", "visibility": "public", "tags": [...] }
// Çağıran kullanıcı sunucunun sahibi olur.
func (h *ServerHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	server, err := h.serverService.Create(r.Context(), claims.UserID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, server)
}

// Get godoc
// GET /api/servers/{serverId}
func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	server, err := h.serverService.GetByID(r.Context(), serverID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, server)
}

// Update godoc
// PATCH /api/servers/{serverId}
// manage_server yetkisi gerekir (service katmanında kontrol edilir).
func (h *ServerHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	var req models.UpdateServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	server, err := h.serverService.Update(r.Context(), claims.UserID, serverID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, server)
}

// Delete godoc
// DELETE /api/servers/{serverId}
// Sadece sahip silebilir.
func (h *ServerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	if err := h.serverService.Delete(r.Context(), claims.UserID, serverID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "server deleted"})
}

// Join godoc
// POST /api/servers/{serverId}/join
//
// Bu route membership middleware'ından GEÇMEZ — katılmak isteyen
// kullanıcı henüz üye değildir. serverId doğrudan path'ten okunur.
func (h *ServerHandler) Join(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	serverID := r.PathValue("serverId")
	if serverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "serverId is required")
		return
	}

	member, err := h.serverService.Join(r.Context(), serverID, claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, member)
}

// Leave godoc
// POST /api/servers/{serverId}/leave
// Sahip ayrılamaz — sunucuyu silmesi gerekir.
func (h *ServerHandler) Leave(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	if err := h.serverService.Leave(r.Context(), serverID, claims.UserID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "left the server"})
}

// GetNotifications godoc
// GET /api/servers/{serverId}/notifications
func (h *ServerHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	settings, err := h.serverService.GetNotificationSettings(r.Context(), serverID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, settings)
}

// UpdateNotifications godoc
// PATCH /api/servers/{serverId}/notifications
// manage_server yetkisi gerekir.
func (h *ServerHandler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	var req models.UpdateNotificationSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.serverService.UpdateNotificationSettings(r.Context(), claims.UserID, serverID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, settings)
}

// CheckPermission godoc
// POST /api/servers/{serverId}/permissions/check
// Body: { "permission": "manage_channels", "channel_id": "..." }
//
// Çağıran üyenin verilen yetkiye sahip olup olmadığını döner.
// Client UI'ı butonları göster/gizle kararını bununla verir.
func (h *ServerHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	var req models.CheckPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.serverService.CheckPermission(r.Context(), serverID, claims.UserID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, resp)
}
