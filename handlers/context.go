// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi çok basit ve "ince" (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı (business logic) içermez.
// Handler ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

// contextKey, context.WithValue için özel tip.
// string yerine özel tip kullanmak paketler arası key çakışmasını önler.
type contextKey string

// ClaimsContextKey, context'te doğrulanmış token claim'lerini taşır.
// AuthMiddleware tarafından eklenir; handler'lar
// r.Context().Value(ClaimsContextKey).(*models.TokenClaims) ile erişir.
const ClaimsContextKey contextKey = "claims"

// ServerIDContextKey, context'te aktif sunucu ID'sini taşıyan key.
// ServerMembershipMiddleware tarafından eklenir.
const ServerIDContextKey contextKey = "server_id"
