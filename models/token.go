package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT access token'ın payload'ıdır.
//
// Token'lar bu servis tarafından üretilmez — kimlik sağlayıcı harici
// bir servistir; burada sadece doğrulama yapılır. Claims yapısı iki
// tarafta aynıdır.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
