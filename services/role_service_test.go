package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

func TestRoleCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	role, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Moderator",
		Permissions: []models.Permission{models.PermKickMembers, models.PermViewChannel},
	})
	require.NoError(t, err)
	assert.False(t, role.IsAbsolute)
	assert.Len(t, role.Permissions, 2)

	// Bilinmeyen permission string'i reddedilir
	_, err = env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Broken",
		Permissions: []models.Permission{"fly"},
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// manage_roles olmayan üye rol oluşturamaz
	_, err = env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)
	_, err = env.roles.Create(ctx, server.ID, "alice", &models.CreateRoleRequest{Name: "X"})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestRoleGetAllHidesAbsolute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	// Varsayılan rol view_roles taşır — alice listeyi görebilir
	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	roles, err := env.roles.GetAll(ctx, server.ID, "alice")
	require.NoError(t, err)
	for _, r := range roles {
		assert.False(t, r.IsAbsolute, "absolute role must not be listed")
	}
}

func TestRoleSelfEditForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	manager, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Manager",
		Permissions: []models.Permission{models.PermManageRoles},
	})
	require.NoError(t, err)
	target, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Target",
		Permissions: []models.Permission{models.PermViewChannel},
	})
	require.NoError(t, err)

	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: manager.ID})
	require.NoError(t, err)

	// Taşımadığı rolü düzenleyebilir
	updated, err := env.roles.Update(ctx, server.ID, "alice", target.ID, &models.UpdateRoleRequest{
		Name: ptr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	// Sunucu genelinde taşıdığı rolü düzenleyemez — yetki genişletme yasağı
	_, err = env.roles.Update(ctx, server.ID, "alice", manager.ID, &models.UpdateRoleRequest{
		Permissions: ptr([]models.Permission{models.PermManageRoles, models.PermBanMembers}),
	})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestAbsoluteRoleProtections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	absolute, err := env.roleRepo.GetAbsoluteByServer(ctx, server.ID)
	require.NoError(t, err)

	_, err = env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Absolute rolü sadece sahip düzenleyebilir
	_, err = env.roles.Update(ctx, server.ID, "alice", absolute.ID, &models.UpdateRoleRequest{
		Name: ptr("Hijacked"),
	})
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	renamed, err := env.roles.Update(ctx, server.ID, "owner", absolute.ID, &models.UpdateRoleRequest{
		Name: ptr("Founder"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Founder", renamed.Name)

	// Absolute rol sahip tarafından bile silinemez
	err = env.roles.Delete(ctx, server.ID, "owner", absolute.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestRoleDeleteOwnerOnlyAndDanglingGrants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	mod, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name:        "Mod",
		Permissions: []models.Permission{models.PermKickMembers, models.PermManageRoles},
	})
	require.NoError(t, err)

	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{RoleID: mod.ID})
	require.NoError(t, err)

	allowed, err := env.permissions.Has(ctx, server.ID, "alice", models.PermKickMembers, nil)
	require.NoError(t, err)
	assert.True(t, allowed)

	// manage_roles taşısa bile sahip olmayan rol silemez
	err = env.roles.Delete(ctx, server.ID, "alice", mod.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	err = env.roles.Delete(ctx, server.ID, "owner", mod.ID)
	require.NoError(t, err)

	// Grant dangling kaldı ama resolver onu atlar — yetki kaybolur
	allowed, err = env.permissions.Has(ctx, server.ID, "alice", models.PermKickMembers, nil)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Dangling grant hâlâ kayıtta durur
	member, err := env.memberRepo.Get(ctx, server.ID, "alice")
	require.NoError(t, err)
	assert.True(t, member.HasGrant(models.RoleGrant{RoleID: mod.ID}))
}

func TestRoleCrossServerLookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	serverA := env.createServer(t, "owner")
	serverB, err := env.servers.Create(ctx, "owner", &models.CreateServerRequest{Name: "Other"})
	require.NoError(t, err)

	role, err := env.roles.Create(ctx, serverB.ID, "owner", &models.CreateRoleRequest{Name: "B-Role"})
	require.NoError(t, err)

	// Başka sunucunun rolü bu sunucu üzerinden görünmez
	_, err = env.roles.Update(ctx, serverA.ID, "owner", role.ID, &models.UpdateRoleRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
