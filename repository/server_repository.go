// Package repository, veritabanı erişim katmanıdır.
//
// Her repository bir interface + SQLite implementasyonu çiftidir.
// Implementasyonlar database.TxQuerier alır — aynı kod hem *sql.DB
// hem *sql.Tx ile çalışır. Service katmanı çok adımlı operasyonlarda
// database.WithTx içinde tx-bound repository'ler oluşturur.
package repository

import (
	"context"

	"github.com/akinalp/agora/models"
)

// ServerRepository, sunucu veritabanı işlemleri için interface.
type ServerRepository interface {
	// ─── Read ───
	GetByID(ctx context.Context, id string) (*models.Server, error)
	GetAll(ctx context.Context) ([]models.Server, error)

	// ─── Write ───
	Create(ctx context.Context, server *models.Server) error
	Update(ctx context.Context, server *models.Server) error
	Delete(ctx context.Context, id string) error

	// AdjustMembersCount, üye sayacını delta kadar değiştirir.
	// Sayaç hiçbir zaman negatife düşmez (DB seviyesinde MAX(0, ...)).
	AdjustMembersCount(ctx context.Context, id string, delta int) error
}
