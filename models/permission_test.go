package models

import "testing"

func strPtr(s string) *string { return &s }

func TestHasPermission(t *testing.T) {
	roles := []Role{
		{ID: "r-owner", ServerID: "s1", Name: "Owner", IsAbsolute: true, Permissions: []Permission{}},
		{ID: "r-mod", ServerID: "s1", Name: "Mod", Permissions: []Permission{PermKickMembers, PermViewChannel}},
		{ID: "r-viewer", ServerID: "s1", Name: "Viewer", Permissions: []Permission{PermViewChannel}},
	}

	tests := []struct {
		name      string
		grants    []RoleGrant
		perm      Permission
		channelID *string
		want      bool
	}{
		{
			name:   "server-wide grant applies at server scope",
			grants: []RoleGrant{{RoleID: "r-mod"}},
			perm:   PermKickMembers,
			want:   true,
		},
		{
			name:      "server-wide grant applies in any channel",
			grants:    []RoleGrant{{RoleID: "r-mod"}},
			perm:      PermViewChannel,
			channelID: strPtr("c1"),
			want:      true,
		},
		{
			name:      "channel-scoped grant applies only in its channel",
			grants:    []RoleGrant{{RoleID: "r-viewer", ChannelID: strPtr("c1")}},
			perm:      PermViewChannel,
			channelID: strPtr("c1"),
			want:      true,
		},
		{
			name:      "channel-scoped grant does not apply in another channel",
			grants:    []RoleGrant{{RoleID: "r-viewer", ChannelID: strPtr("c1")}},
			perm:      PermViewChannel,
			channelID: strPtr("c2"),
			want:      false,
		},
		{
			name:   "channel-scoped grant does not apply at server scope",
			grants: []RoleGrant{{RoleID: "r-viewer", ChannelID: strPtr("c1")}},
			perm:   PermViewChannel,
			want:   false,
		},
		{
			name:   "dangling role reference is skipped",
			grants: []RoleGrant{{RoleID: "r-deleted"}},
			perm:   PermViewChannel,
			want:   false,
		},
		{
			name:   "absolute role passes despite empty permission set",
			grants: []RoleGrant{{RoleID: "r-owner"}},
			perm:   PermManageServer,
			want:   true,
		},
		{
			name:      "absolute role passes channel-scoped checks",
			grants:    []RoleGrant{{RoleID: "r-owner"}},
			perm:      PermViewChannel,
			channelID: strPtr("c9"),
			want:      true,
		},
		{
			name:   "no grants denies",
			grants: nil,
			perm:   PermViewChannel,
			want:   false,
		},
		{
			name:   "role without the permission denies",
			grants: []RoleGrant{{RoleID: "r-viewer"}},
			perm:   PermManageRoles,
			want:   false,
		},
		{
			name: "any matching role is enough",
			grants: []RoleGrant{
				{RoleID: "r-deleted"},
				{RoleID: "r-viewer"},
				{RoleID: "r-mod"},
			},
			perm: PermKickMembers,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasPermission(roles, tt.grants, tt.perm, tt.channelID)
			if got != tt.want {
				t.Errorf("HasPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidPermission(t *testing.T) {
	if !IsValidPermission(PermManageServer) {
		t.Error("manage_server should be valid")
	}
	if IsValidPermission("fly") {
		t.Error("unknown permission should be invalid")
	}
}

func TestIsAdminPermission(t *testing.T) {
	admin := []Permission{
		PermManageServer, PermManageRoles, PermAssignRoles,
		PermManageChannels, PermKickMembers, PermBanMembers,
	}
	for _, p := range admin {
		if !IsAdminPermission(p) {
			t.Errorf("%s should be an admin permission", p)
		}
	}
	if IsAdminPermission(PermViewRoles) {
		t.Error("view_roles should not be an admin permission")
	}
	if IsAdminPermission(PermViewChannel) {
		t.Error("view_channel should not be an admin permission")
	}
}

func TestRoleGrantAppliesTo(t *testing.T) {
	serverWide := RoleGrant{RoleID: "r1"}
	scoped := RoleGrant{RoleID: "r1", ChannelID: strPtr("c1")}

	if !serverWide.AppliesTo(nil) {
		t.Error("server-wide grant should apply at server scope")
	}
	if !serverWide.AppliesTo(strPtr("c1")) {
		t.Error("server-wide grant should apply in any channel")
	}
	if scoped.AppliesTo(nil) {
		t.Error("channel-scoped grant should not apply at server scope")
	}
	if !scoped.AppliesTo(strPtr("c1")) {
		t.Error("channel-scoped grant should apply in its channel")
	}
	if scoped.AppliesTo(strPtr("c2")) {
		t.Error("channel-scoped grant should not apply in another channel")
	}
}

func TestHasAnyAdminPermission(t *testing.T) {
	safe := Role{ID: "r1", Permissions: []Permission{PermViewChannel, PermViewRoles}}
	if safe.HasAnyAdminPermission() {
		t.Error("role with only view permissions should not be admin")
	}

	unsafe := Role{ID: "r2", Permissions: []Permission{PermViewChannel, PermBanMembers}}
	if !unsafe.HasAnyAdminPermission() {
		t.Error("role with ban_members should be admin")
	}

	absolute := Role{ID: "r3", IsAbsolute: true}
	if !absolute.HasAnyAdminPermission() {
		t.Error("absolute role should always count as admin")
	}
}
