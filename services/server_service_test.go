package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

func TestCreateServerBootstrap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	server := env.createServer(t, "owner")

	assert.Equal(t, "owner", server.OwnerID)
	assert.Equal(t, 1, server.MembersCount)
	require.NotNil(t, server.DefaultRoleID)

	// Absolute rol doğmuş olmalı, yetki listesi boş
	absolute, err := env.roleRepo.GetAbsoluteByServer(ctx, server.ID)
	require.NoError(t, err)
	assert.True(t, absolute.IsAbsolute)
	assert.Empty(t, absolute.Permissions)

	// Varsayılan rol güvenli yetkilerle doğmuş olmalı
	defaultRole, err := env.roleRepo.GetByID(ctx, *server.DefaultRoleID)
	require.NoError(t, err)
	assert.False(t, defaultRole.IsAbsolute)
	assert.False(t, defaultRole.HasAnyAdminPermission())

	// Sahip üye olarak kaydedilmiş ve absolute grant taşıyor
	member, err := env.memberRepo.Get(ctx, server.ID, "owner")
	require.NoError(t, err)
	require.Len(t, member.Roles, 1)
	assert.Equal(t, absolute.ID, member.Roles[0].RoleID)
	assert.Nil(t, member.Roles[0].ChannelID)
}

func TestCreateServerValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.servers.Create(context.Background(), "owner", &models.CreateServerRequest{Name: "   "})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = env.servers.Create(context.Background(), "owner", &models.CreateServerRequest{
		Name: "x", Visibility: "hidden",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestJoinGrantsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	// Kanal default rolü: güvenli bir rol oluştur ve kanala bağla
	viewer, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Viewer",
		Permissions: []models.Permission{models.PermViewChannel},
	})
	require.NoError(t, err)

	channel, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "lounge", Type: "text", DefaultRoleID: &viewer.ID,
	})
	require.NoError(t, err)

	member, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Sunucu geneli varsayılan rol + kanal scope'lu default rol
	assert.True(t, member.HasGrant(models.RoleGrant{RoleID: *server.DefaultRoleID}))
	assert.True(t, member.HasGrant(models.RoleGrant{RoleID: viewer.ID, ChannelID: &channel.ID}))

	updated, err := env.serverRepo.GetByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MembersCount)
}

func TestJoinSkipsAdminChannelDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	// Kanal default rolü admin yetkili olamaz — Create reddeder.
	admin, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Admin",
		Permissions: []models.Permission{models.PermBanMembers},
	})
	require.NoError(t, err)

	_, err = env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "mod-only", Type: "text", DefaultRoleID: &admin.ID,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestJoinRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	// Tekrar katılma
	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)
	_, err = env.servers.Join(ctx, server.ID, "alice")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Yasaklı kullanıcı katılamaz (preemptive ban — hiç üye olmamış biri)
	_, err = env.members.Ban(ctx, server.ID, "owner", "mallory", &models.BanMemberRequest{Reason: "spam"})
	require.NoError(t, err)
	_, err = env.servers.Join(ctx, server.ID, "mallory")
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Olmayan sunucu
	_, err = env.servers.Join(ctx, "no-such-server", "bob")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestLeave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Sahip ayrılamaz
	err = env.servers.Leave(ctx, server.ID, "owner")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Normal üye ayrılır, sayaç düşer
	err = env.servers.Leave(ctx, server.ID, "alice")
	require.NoError(t, err)

	exists, err := env.memberRepo.Exists(ctx, server.ID, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	updated, err := env.serverRepo.GetByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MembersCount)
}

func TestDeleteServerOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	err = env.servers.Delete(ctx, "alice", server.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	err = env.servers.Delete(ctx, "owner", server.ID)
	require.NoError(t, err)

	_, err = env.serverRepo.GetByID(ctx, server.ID)
	assert.True(t, errors.Is(err, pkg.ErrNotFound))
}

func TestUpdateServer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	updated, err := env.servers.Update(ctx, "owner", server.ID, &models.UpdateServerRequest{
		Name: ptr("Renamed"),
		Bio:  ptr("a community"),
		Tags: ptr([]string{"go", "chat"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, []string{"go", "chat"}, updated.Tags)

	// Absolute rol default rol yapılamaz
	absolute, err := env.roleRepo.GetAbsoluteByServer(ctx, server.ID)
	require.NoError(t, err)
	_, err = env.servers.Update(ctx, "owner", server.ID, &models.UpdateServerRequest{
		DefaultRoleID: &absolute.ID,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// "" göndermek default rolü temizler
	cleared, err := env.servers.Update(ctx, "owner", server.ID, &models.UpdateServerRequest{
		DefaultRoleID: ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.DefaultRoleID)

	// manage_server olmayan üye güncelleyemez
	_, err = env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)
	_, err = env.servers.Update(ctx, "alice", server.ID, &models.UpdateServerRequest{Name: ptr("nope")})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestGetPublicFiltersPrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createServer(t, "owner")
	_, err := env.servers.Create(ctx, "owner", &models.CreateServerRequest{
		Name: "Hidden", Visibility: "private",
	})
	require.NoError(t, err)

	public, err := env.servers.GetPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Test Server", public[0].Name)
}

func TestNotificationSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	settings, err := env.servers.GetNotificationSettings(ctx, server.ID)
	require.NoError(t, err)
	assert.False(t, settings.MuteAll)

	updated, err := env.servers.UpdateNotificationSettings(ctx, "owner", server.ID, &models.UpdateNotificationSettingsRequest{
		MuteAll:      ptr(true),
		MuteNewUsers: ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.MuteAll)
	assert.True(t, updated.MuteNewUsers)
	assert.False(t, updated.MuteAllExceptMentions)
}

func TestCheckPermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Sahip: kimlik bazlı bypass
	resp, err := env.servers.CheckPermission(ctx, server.ID, "owner", &models.CheckPermissionRequest{
		Permission: models.PermManageServer,
	})
	require.NoError(t, err)
	assert.True(t, resp.Allowed)

	// Normal üye: varsayılan rol view_channel verir, manage_server vermez
	resp, err = env.servers.CheckPermission(ctx, server.ID, "alice", &models.CheckPermissionRequest{
		Permission: models.PermViewChannel,
	})
	require.NoError(t, err)
	assert.True(t, resp.Allowed)

	resp, err = env.servers.CheckPermission(ctx, server.ID, "alice", &models.CheckPermissionRequest{
		Permission: models.PermManageServer,
	})
	require.NoError(t, err)
	assert.False(t, resp.Allowed)

	// Bilinmeyen permission reddedilir
	_, err = env.servers.CheckPermission(ctx, server.ID, "alice", &models.CheckPermissionRequest{
		Permission: "fly",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
