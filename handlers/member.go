// Package handlers — MemberHandler: üye yönetimi ve moderasyon endpoint'leri.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/services"
)

// MemberHandler, üye ve ban endpoint'lerini yönetir.
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler, constructor.
func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List godoc
// GET /api/servers/{serverId}/members
// Üye listesi grant'ler OLMADAN döner — grant detayı Get ile alınır.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	serverID, ok := r.Context().Value(ServerIDContextKey).(string)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "server context missing")
		return
	}

	members, err := h.memberService.GetAll(r.Context(), serverID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, members)
}

// Get godoc
// GET /api/servers/{serverId}/members/{id}
// Grant'ler üyenin kendisine veya view_roles taşıyanlara görünür.
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "member id is required")
		return
	}

	member, err := h.memberService.Get(r.Context(), serverID, claims.UserID, targetID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, member)
}

// AddRole godoc
// POST /api/servers/{serverId}/members/{id}/roles
// Body: { "role_id": "...", "channel_id": "..." } — channel_id opsiyonel,
// verilirse grant o kanala scope'lanır.
// assign_roles yetkisi gerekir.
func (h *MemberHandler) AddRole(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "member id is required")
		return
	}

	var req models.MemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.memberService.AddRole(r.Context(), serverID, claims.UserID, targetID, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "role assigned"})
}

// RemoveRole godoc
// DELETE /api/servers/{serverId}/members/{id}/roles
// Body: { "role_id": "...", "channel_id": "..." } — eklenirken kullanılan
// scope ile birebir eşleşmeli.
// assign_roles yetkisi gerekir.
func (h *MemberHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "member id is required")
		return
	}

	var req models.MemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.memberService.RemoveRole(r.Context(), serverID, claims.UserID, targetID, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "role removed"})
}

// Kick godoc
// DELETE /api/servers/{serverId}/members/{id}
// kick_members yetkisi gerekir. Sahip atılamaz.
func (h *MemberHandler) Kick(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "member id is required")
		return
	}

	if err := h.memberService.Kick(r.Context(), serverID, claims.UserID, targetID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "member kicked"})
}

// Ban godoc
// POST /api/servers/{serverId}/members/{id}/ban
// Body: { "reason": "..." } — reason opsiyonel.
// ban_members yetkisi gerekir. Üye olmayan kullanıcı da yasaklanabilir.
func (h *MemberHandler) Ban(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "member id is required")
		return
	}

	var req models.BanMemberRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ban, err := h.memberService.Ban(r.Context(), serverID, claims.UserID, targetID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, ban)
}

// GetBans godoc
// GET /api/servers/{serverId}/bans
// ban_members yetkisi gerekir.
func (h *MemberHandler) GetBans(w http.ResponseWriter, r *http.Request) {
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

	bans, err := h.memberService.GetBans(r.Context(), serverID, claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, bans)
}

// UpdateBan godoc
// PATCH /api/servers/{serverId}/bans/{id}
// Body: { "reason": "..." }
// ban_members yetkisi gerekir.
func (h *MemberHandler) UpdateBan(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	var req models.UpdateBanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ban, err := h.memberService.UpdateBanReason(r.Context(), serverID, claims.UserID, targetID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, ban)
}

// Unban godoc
// DELETE /api/servers/{serverId}/bans/{id}
// ban_members yetkisi gerekir. Üyelik geri gelmez — kullanıcı yeniden katılmalı.
func (h *MemberHandler) Unban(w http.ResponseWriter, r *http.Request) {
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

	targetID := r.PathValue("id")
	if targetID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.memberService.Unban(r.Context(), serverID, claims.UserID, targetID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "ban lifted"})
}
