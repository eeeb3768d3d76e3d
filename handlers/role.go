// Package handlers — RoleHandler: rol yönetimi HTTP endpoint'leri.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/services"
)

// RoleHandler, rol endpoint'lerini yönetir.
type RoleHandler struct {
	roleService services.RoleService
}

// NewRoleHandler, constructor.
func NewRoleHandler(roleService services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// List godoc
// GET /api/servers/{serverId}/roles
// view_roles yetkisi gerekir. Absolute rol listede görünmez.
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
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

	roles, err := h.roleService.GetAll(r.Context(), serverID, claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, roles)
}

// Create godoc
// POST /api/servers/{serverId}/roles
// Body: { "name": "...", "permissions": ["view_channel", ...] }
// manage_roles yetkisi gerekir.
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req models.CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.roleService.Create(r.Context(), serverID, claims.UserID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, role)
}

// Update godoc
// PATCH /api/servers/{serverId}/roles/{id}
// manage_roles yetkisi gerekir; üyenin kendi taşıdığı rol düzenlenemez.
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	roleID := r.PathValue("id")
	if roleID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "role id is required")
		return
	}

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.roleService.Update(r.Context(), serverID, claims.UserID, roleID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, role)
}

// Delete godoc
// DELETE /api/servers/{serverId}/roles/{id}
// Sadece sahip silebilir; absolute rol silinemez.
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	roleID := r.PathValue("id")
	if roleID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "role id is required")
		return
	}

	if err := h.roleService.Delete(r.Context(), serverID, claims.UserID, roleID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}
