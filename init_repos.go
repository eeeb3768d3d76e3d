// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository bir SQL.DB bağlantısı alır ve interface döner.
package main

import (
	"database/sql"

	"github.com/akinalp/agora/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı değişkenler yerine tek struct kullanmak fonksiyon
// imzalarını temiz tutar ve yeni repository eklendiğinde sadece struct +
// initRepositories güncellenir.
type Repositories struct {
	Server  repository.ServerRepository
	Role    repository.RoleRepository
	Channel repository.ChannelRepository
	Member  repository.MemberRepository
	Ban     repository.BanRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Her NewSQLite* fonksiyonu aynı *sql.DB'yi alır — Go'nun sql.DB'si
// thread-safe connection pool'dur, paylaşılması güvenlidir.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		Server:  repository.NewSQLiteServerRepo(conn),
		Role:    repository.NewSQLiteRoleRepo(conn),
		Channel: repository.NewSQLiteChannelRepo(conn),
		Member:  repository.NewSQLiteMemberRepo(conn),
		Ban:     repository.NewSQLiteBanRepo(conn),
	}
}
