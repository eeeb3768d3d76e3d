package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

func TestMemberAddRemoveRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	mod, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name: "Mod", Permissions: []models.Permission{models.PermKickMembers},
	})
	require.NoError(t, err)

	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: mod.ID})
	require.NoError(t, err)

	// Aynı (rol, scope) çifti ikinci kez eklenemez
	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: mod.ID})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Aynı rol farklı scope'ta eklenebilir
	channel, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "general", Type: "text",
	})
	require.NoError(t, err)
	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{
		RoleID: mod.ID, ChannelID: &channel.ID,
	})
	require.NoError(t, err)

	member, err := env.members.Get(ctx, server.ID, "alice", "alice")
	require.NoError(t, err)
	assert.True(t, member.HasGrant(models.RoleGrant{RoleID: mod.ID}))
	assert.True(t, member.HasGrant(models.RoleGrant{RoleID: mod.ID, ChannelID: &channel.ID}))

	// Kaldırma scope ile birebir eşleşir
	err = env.members.RemoveRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: mod.ID})
	require.NoError(t, err)
	err = env.members.RemoveRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: mod.ID})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	member, err = env.members.Get(ctx, server.ID, "alice", "alice")
	require.NoError(t, err)
	assert.False(t, member.HasGrant(models.RoleGrant{RoleID: mod.ID}))
	assert.True(t, member.HasGrant(models.RoleGrant{RoleID: mod.ID, ChannelID: &channel.ID}))
}

func TestMemberRoleGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Absolute rol grant API'si ile atanamaz — sahip istese bile 403
	absolute, err := env.roleRepo.GetAbsoluteByServer(ctx, server.ID)
	require.NoError(t, err)
	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: absolute.ID})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// ... kaldırılamaz da
	err = env.members.RemoveRole(ctx, server.ID, "owner", "owner", &models.MemberRoleRequest{RoleID: absolute.ID})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Olmayan rol → 404
	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: "ghost"})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	// Üye olmayan hedef → 404
	mod, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{Name: "Mod"})
	require.NoError(t, err)
	err = env.members.AddRole(ctx, server.ID, "owner", "stranger", &models.MemberRoleRequest{RoleID: mod.ID})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	// assign_roles olmayan üye rol atayamaz
	err = env.members.AddRole(ctx, server.ID, "alice", "alice", &models.MemberRoleRequest{RoleID: mod.ID})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestMemberGetVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)
	_, err = env.servers.Join(ctx, server.ID, "bob")
	require.NoError(t, err)

	// Üye kendini her zaman görebilir
	_, err = env.members.Get(ctx, server.ID, "alice", "alice")
	require.NoError(t, err)

	// Varsayılan rol view_roles taşır — başkasını da görebilir
	_, err = env.members.Get(ctx, server.ID, "alice", "bob")
	require.NoError(t, err)

	// Liste grant'siz döner
	members, err := env.members.GetAll(ctx, server.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	for _, m := range members {
		assert.Empty(t, m.Roles)
	}
}

func TestKick(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// kick_members olmayan üye atamaz
	err = env.members.Kick(ctx, server.ID, "alice", "owner")
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Sahip atılamaz — yetkili biri denese bile
	err = env.members.Kick(ctx, server.ID, "owner", "owner")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	err = env.members.Kick(ctx, server.ID, "owner", "alice")
	require.NoError(t, err)

	exists, err := env.memberRepo.Exists(ctx, server.ID, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	updated, err := env.serverRepo.GetByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MembersCount)
}

func TestBanFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Sahip yasaklanamaz
	_, err = env.members.Ban(ctx, server.ID, "owner", "owner", &models.BanMemberRequest{})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	ban, err := env.members.Ban(ctx, server.ID, "owner", "alice", &models.BanMemberRequest{Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, "spam", ban.Reason)

	// Üyelik de düşer
	exists, err := env.memberRepo.Exists(ctx, server.ID, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	updated, err := env.serverRepo.GetByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MembersCount)

	// Çifte yasak → 409
	_, err = env.members.Ban(ctx, server.ID, "owner", "alice", &models.BanMemberRequest{})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)

	// Yasaklıyken katılamaz
	_, err = env.servers.Join(ctx, server.ID, "alice")
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Sebep güncelleme
	ban, err = env.members.UpdateBanReason(ctx, server.ID, "owner", "alice", &models.UpdateBanRequest{Reason: "apologized, probation"})
	require.NoError(t, err)
	assert.Equal(t, "apologized, probation", ban.Reason)

	// Listeleme ban_members ister
	bans, err := env.members.GetBans(ctx, server.ID, "owner")
	require.NoError(t, err)
	require.Len(t, bans, 1)

	// Yasak kalkınca tekrar katılabilir — ama üyelik otomatik geri gelmez
	err = env.members.Unban(ctx, server.ID, "owner", "alice")
	require.NoError(t, err)

	exists, err = env.memberRepo.Exists(ctx, server.ID, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)
}

func TestPreemptiveBan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	// Hiç üye olmamış kullanıcı da yasaklanabilir
	_, err := env.members.Ban(ctx, server.ID, "owner", "mallory", &models.BanMemberRequest{Reason: "known troll"})
	require.NoError(t, err)

	// Sayaç değişmez — üye değildi
	updated, err := env.serverRepo.GetByID(ctx, server.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MembersCount)

	banned, err := env.banRepo.Exists(ctx, server.ID, "mallory")
	require.NoError(t, err)
	assert.True(t, banned)
}
