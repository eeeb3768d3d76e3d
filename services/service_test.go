package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/agora/database"
	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/repository"
	"github.com/akinalp/agora/ws"
)

// nopPublisher, testlerde WebSocket broadcast'lerini yutan EventPublisher.
type nopPublisher struct{}

func (nopPublisher) BroadcastToAll(ws.Event)          {}
func (nopPublisher) BroadcastToUser(string, ws.Event) {}

// testEnv, service testleri için gerçek (geçici) SQLite üzerinde çalışan
// tam bir service stack'i kurar. Mock repository yerine gerçek şema
// kullanılır — transaction ve constraint davranışları da test edilir.
type testEnv struct {
	db *database.DB

	serverRepo  repository.ServerRepository
	roleRepo    repository.RoleRepository
	channelRepo repository.ChannelRepository
	memberRepo  repository.MemberRepository
	banRepo     repository.BanRepository

	permissions PermissionService
	servers     ServerService
	roles       RoleService
	channels    ChannelService
	members     MemberService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath, os.DirFS("../database/migrations"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:          db,
		serverRepo:  repository.NewSQLiteServerRepo(db.Conn),
		roleRepo:    repository.NewSQLiteRoleRepo(db.Conn),
		channelRepo: repository.NewSQLiteChannelRepo(db.Conn),
		memberRepo:  repository.NewSQLiteMemberRepo(db.Conn),
		banRepo:     repository.NewSQLiteBanRepo(db.Conn),
	}

	env.permissions = NewPermissionService(env.serverRepo, env.roleRepo, env.memberRepo)
	t.Cleanup(env.permissions.Close)

	hub := nopPublisher{}
	env.servers = NewServerService(db, env.serverRepo, env.roleRepo, env.channelRepo, env.memberRepo, env.banRepo, env.permissions, hub)
	env.roles = NewRoleService(env.serverRepo, env.roleRepo, env.memberRepo, env.permissions, hub)
	env.channels = NewChannelService(db, env.channelRepo, env.roleRepo, env.permissions, hub)
	env.members = NewMemberService(db, env.serverRepo, env.roleRepo, env.channelRepo, env.memberRepo, env.banRepo, env.permissions, hub)

	return env
}

// createServer, testler için standart bir sunucu oluşturur.
func (env *testEnv) createServer(t *testing.T, ownerID string) *models.Server {
	t.Helper()
	server, err := env.servers.Create(context.Background(), ownerID, &models.CreateServerRequest{
		Name:       "Test Server",
		Visibility: "public",
	})
	require.NoError(t, err)
	return server
}

func ptr[T any](v T) *T { return &v }
