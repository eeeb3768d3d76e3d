// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware'lar zincir şeklinde çalışır: Auth → Membership → RateLimit → Handler
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır. Middleware kendi
// işini yapar, sonra next'i çağırır; hata varsa next çağrılmaz.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/agora/handlers"
	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
//
// Kimlik sağlayıcı harici olduğu için token burada sadece doğrulanır —
// kullanıcı kaydı tutulmaz. Doğrulanan claim'ler context'e eklenir.
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Require, JWT token zorunlu kılan middleware.
// Token yoksa veya geçersizse → 401 Unauthorized.
//
// HTTP header formatı: Authorization: Bearer <token>
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
