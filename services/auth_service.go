// Package services — iş mantığı katmanı.
//
// AuthService: JWT access token doğrulama.
//
// Kimlik sağlayıcı (kayıt, login, şifre) harici bir servistir; bu servis
// sadece onun imzaladığı HS256 token'ları doğrular. İki taraf aynı
// JWT_SECRET'ı paylaşır. GenerateAccessToken test ve tooling için vardır.
package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

// AuthService, token doğrulama interface'i.
type AuthService interface {
	// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)

	// GenerateAccessToken, verilen kullanıcı için imzalı bir access token
	// üretir. Normal akışta token'lar kimlik sağlayıcıdan gelir — bu metod
	// test ve yerel tooling içindir.
	GenerateAccessToken(userID, username string, expiry time.Duration) (string, error)
}

type authService struct {
	jwtSecret []byte
}

// NewAuthService, AuthService implementasyonunu oluşturur.
func NewAuthService(jwtSecret string) AuthService {
	return &authService{jwtSecret: []byte(jwtSecret)}
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		// alg confusion önlemi: sadece HMAC kabul edilir
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) GenerateAccessToken(userID, username string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "agora",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}
