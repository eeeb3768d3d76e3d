// Package handlers — ChannelHandler: kanal hiyerarşisi HTTP endpoint'leri.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/services"
)

// ChannelHandler, kanal endpoint'lerini yönetir.
type ChannelHandler struct {
	channelService services.ChannelService
}

// NewChannelHandler, constructor.
func NewChannelHandler(channelService services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// List godoc
// GET /api/servers/{serverId}/channels
//
// Üyenin GÖREBİLDİĞİ kanalları döner: view_channel verilen kanallar ve
// en az bir görünür kanal barındıran kategoriler, position sıralı.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
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

	channels, err := h.channelService.GetVisible(r.Context(), serverID, claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channels)
}

// Get godoc
// GET /api/servers/{serverId}/channels/{id}
// Kanal için view_channel gerekir (kategoriler hariç).
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	channelID := r.PathValue("id")
	if channelID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "channel id is required")
		return
	}

	channel, err := h.channelService.Get(r.Context(), serverID, claims.UserID, channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// Create godoc
// POST /api/servers/{serverId}/channels
// Body: { "name": "...", "type": "text|voice|category", "category_id": "...", "position": 2 }
// manage_channels yetkisi gerekir.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req models.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.Create(r.Context(), serverID, claims.UserID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, channel)
}

// Update godoc
// PATCH /api/servers/{serverId}/channels/{id}
// manage_channels yetkisi gerekir.
//
// category_id ve default_role_id "gönderilmedi" ile "null gönderildi"
// arasında ayrım yapar — null göndermek bağı koparır.
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	channelID := r.PathValue("id")
	if channelID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "channel id is required")
		return
	}

	var req models.UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.Update(r.Context(), serverID, claims.UserID, channelID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// Delete godoc
// DELETE /api/servers/{serverId}/channels/{id}
// manage_channels yetkisi gerekir.
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	channelID := r.PathValue("id")
	if channelID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "channel id is required")
		return
	}

	if err := h.channelService.Delete(r.Context(), serverID, claims.UserID, channelID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "channel deleted"})
}
