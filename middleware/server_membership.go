// Package middleware — ServerMembershipMiddleware: sunucu üyelik kontrolü.
//
// URL'den serverId path parameter'ını alır, kullanıcının o sunucuya üye
// olup olmadığını doğrular ve serverID'yi context'e ekler.
//
// Bu middleware AuthMiddleware'den SONRA çalışır — context'te claim'ler
// zaten mevcuttur.
//
// Sunucu sahibi her zaman üyedir (sunucu oluşturulurken üyelik kaydı
// atılır), bu yüzden sahip için ayrı bir bypass gerekmez.
package middleware

import (
	"context"
	"net/http"

	"github.com/akinalp/agora/handlers"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/repository"
)

// ServerMembershipMiddleware, sunucu üyelik kontrolü middleware'ı.
type ServerMembershipMiddleware struct {
	memberRepo repository.MemberRepository
}

// NewServerMembershipMiddleware, constructor.
func NewServerMembershipMiddleware(memberRepo repository.MemberRepository) *ServerMembershipMiddleware {
	return &ServerMembershipMiddleware{memberRepo: memberRepo}
}

// Require, sunucu üyeliği zorunlu kılan middleware.
//
// Context'ten claim'leri alır (AuthMiddleware tarafından eklenir),
// URL'den serverId path parameter'ını çeker ve üyelik kontrolü yapar.
// Üye değilse 403 döner; başarılıysa serverID'yi context'e ekler.
func (m *ServerMembershipMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(handlers.ClaimsContextKey).(*models.TokenClaims)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		serverID := r.PathValue("serverId")
		if serverID == "" {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "serverId is required")
			return
		}

		isMember, err := m.memberRepo.Exists(r.Context(), serverID, claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to check server membership")
			return
		}

		if !isMember {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "you are not a member of this server")
			return
		}

		ctx := context.WithValue(r.Context(), handlers.ServerIDContextKey, serverID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
