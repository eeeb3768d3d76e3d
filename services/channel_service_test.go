package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/agora/models"
	"github.com/akinalp/agora/pkg"
)

// channelOrder, sunucunun kanallarını position sırasıyla isim olarak döner
// ve dizinin yoğun (0..n-1) olduğunu doğrular.
func channelOrder(t *testing.T, env *testEnv, serverID string) []string {
	t.Helper()
	channels, err := env.channelRepo.GetAllByServer(context.Background(), serverID)
	require.NoError(t, err)

	names := make([]string, len(channels))
	for i, c := range channels {
		require.Equal(t, i, c.Position, "positions must form a dense 0..n-1 sequence")
		names[i] = c.Name
	}
	return names
}

func TestChannelCreatePositions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	for _, name := range []string{"first", "second", "third"} {
		_, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
			Name: name, Type: "text",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"first", "second", "third"}, channelOrder(t, env, server.ID))

	// Explicit position: araya insert, sonrakiler kayar
	inserted, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "inserted", Type: "text", Position: ptr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted.Position)
	assert.Equal(t, []string{"first", "inserted", "second", "third"}, channelOrder(t, env, server.ID))
}

func TestChannelReorder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	var chans []*models.Channel
	for _, name := range []string{"a", "b", "c", "d"} {
		c, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
			Name: name, Type: "text",
		})
		require.NoError(t, err)
		chans = append(chans, c)
	}

	// "a" kanalını sona taşı — hedef aşırıysa clamp'lenir
	moved, err := env.channels.Update(ctx, server.ID, "owner", chans[0].ID, &models.UpdateChannelRequest{
		Position: ptr(99),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, moved.Position)
	assert.Equal(t, []string{"b", "c", "d", "a"}, channelOrder(t, env, server.ID))

	// "d" kanalını başa taşı
	_, err = env.channels.Update(ctx, server.ID, "owner", chans[3].ID, &models.UpdateChannelRequest{
		Position: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "c", "a"}, channelOrder(t, env, server.ID))
}

func TestChannelCategoryRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	category, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "Topics", Type: "category",
	})
	require.NoError(t, err)

	text, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "general", Type: "text", CategoryID: &category.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, text.CategoryID)

	// Kategori olmayan bir kanal hedef kategori olamaz
	_, err = env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "bad", Type: "text", CategoryID: &text.ID,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Kategori başka kategoriye bağlanamaz
	other, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "Other", Type: "category",
	})
	require.NoError(t, err)
	_, err = env.channels.Update(ctx, server.ID, "owner", other.ID, &models.UpdateChannelRequest{
		CategoryID: &category.ID, CategorySet: true,
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// null göndermek kategori bağını koparır
	detached, err := env.channels.Update(ctx, server.ID, "owner", text.ID, &models.UpdateChannelRequest{
		CategorySet: true,
	})
	require.NoError(t, err)
	assert.Nil(t, detached.CategoryID)
}

func TestChannelDeleteDetachesAndPurges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	category, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "Topics", Type: "category",
	})
	require.NoError(t, err)
	child, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "general", Type: "text", CategoryID: &category.ID,
	})
	require.NoError(t, err)
	_, err = env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "random", Type: "text",
	})
	require.NoError(t, err)

	// Kanala scope'lu bir grant ver — silinince temizlenmeli
	_, err = env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)
	viewer, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name: "Viewer", Permissions: []models.Permission{models.PermViewChannel},
	})
	require.NoError(t, err)
	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{
		RoleID: viewer.ID, ChannelID: &child.ID,
	})
	require.NoError(t, err)

	// Kategoriyi sil: çocuk detach edilir, silinmez
	err = env.channels.Delete(ctx, server.ID, "owner", category.ID)
	require.NoError(t, err)

	survivor, err := env.channelRepo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, survivor.CategoryID)
	assert.Equal(t, []string{"general", "random"}, channelOrder(t, env, server.ID))

	// Kanalı sil: scope'lu grant'ler temizlenir, dizi yeniden numaralanır
	err = env.channels.Delete(ctx, server.ID, "owner", child.ID)
	require.NoError(t, err)

	grants, err := env.memberRepo.GetGrants(ctx, server.ID, "alice")
	require.NoError(t, err)
	for _, g := range grants {
		if g.ChannelID != nil {
			assert.NotEqual(t, child.ID, *g.ChannelID, "grants scoped to a deleted channel must be purged")
		}
	}
	assert.Equal(t, []string{"random"}, channelOrder(t, env, server.ID))
}

func TestChannelVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	// Varsayılan rolü temizle — alice grantsız katılsın
	_, err := env.servers.Update(ctx, "owner", server.ID, &models.UpdateServerRequest{
		DefaultRoleID: ptr(""),
	})
	require.NoError(t, err)

	category, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "Topics", Type: "category",
	})
	require.NoError(t, err)
	general, err := env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "general", Type: "text", CategoryID: &category.ID,
	})
	require.NoError(t, err)
	_, err = env.channels.Create(ctx, server.ID, "owner", &models.CreateChannelRequest{
		Name: "secret", Type: "text", CategoryID: &category.ID,
	})
	require.NoError(t, err)

	_, err = env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	// Grant yok → hiçbir şey görünmez
	visible, err := env.channels.GetVisible(ctx, server.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, visible)

	// general kanalına scope'lu view_channel ver
	viewer, err := env.roles.Create(ctx, server.ID, "owner", &models.CreateRoleRequest{
		Name: "Viewer", Permissions: []models.Permission{models.PermViewChannel},
	})
	require.NoError(t, err)
	err = env.members.AddRole(ctx, server.ID, "owner", "alice", &models.MemberRoleRequest{
		RoleID: viewer.ID, ChannelID: &general.ID,
	})
	require.NoError(t, err)

	// general + onu barındıran kategori görünür; secret görünmez
	visible, err = env.channels.GetVisible(ctx, server.ID, "alice")
	require.NoError(t, err)
	names := make([]string, len(visible))
	for i, c := range visible {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Topics", "general"}, names)

	// Tek kanal okuma: secret için view_channel yok → 403
	_, err = env.channels.Get(ctx, server.ID, "alice", general.ID)
	require.NoError(t, err)

	channels, err := env.channelRepo.GetAllByServer(ctx, server.ID)
	require.NoError(t, err)
	var secretID string
	for _, c := range channels {
		if c.Name == "secret" {
			secretID = c.ID
		}
	}
	_, err = env.channels.Get(ctx, server.ID, "alice", secretID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// Tek kanal okuma kategoriler için de view_channel ister — listede
	// görünen kategori Get ile otomatik açılmaz
	_, err = env.channels.Get(ctx, server.ID, "alice", category.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
	_, err = env.channels.Get(ctx, server.ID, "owner", category.ID)
	require.NoError(t, err)
}

func TestChannelPermissionRequired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := env.createServer(t, "owner")

	_, err := env.servers.Join(ctx, server.ID, "alice")
	require.NoError(t, err)

	_, err = env.channels.Create(ctx, server.ID, "alice", &models.CreateChannelRequest{
		Name: "nope", Type: "text",
	})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}
