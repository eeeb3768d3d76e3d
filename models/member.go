package models

import (
	"fmt"
	"time"
)

// RoleGrant, bir üyeye verilmiş tek bir rol atamasını temsil eder.
//
// ChannelID nil ise grant sunucu genelidir; değilse sadece o kanal
// scope'unda geçerlidir. Aynı üyede aynı (role_id, channel_id) çifti
// iki kez bulunamaz.
//
// RoleID ve ChannelID weak reference'tır: işaret edilen rol/kanal
// silinmiş olabilir. Resolver bu grant'leri sessizce atlar.
type RoleGrant struct {
	RoleID    string  `json:"role_id"`
	ChannelID *string `json:"channel_id"`
}

// AppliesTo, grant'in verilen kanal bağlamında geçerli olup olmadığını
// kontrol eder. Sunucu geneli grant'ler her bağlamda geçerlidir;
// kanal scope'lu grant'ler sadece kendi kanalında.
func (g RoleGrant) AppliesTo(channelID *string) bool {
	if g.ChannelID == nil {
		return true
	}
	if channelID == nil {
		return false
	}
	return *g.ChannelID == *channelID
}

// Equal, iki grant'in aynı (rol, scope) çiftini temsil edip etmediğini
// kontrol eder. Duplicate grant kontrolünde kullanılır.
func (g RoleGrant) Equal(other RoleGrant) bool {
	if g.RoleID != other.RoleID {
		return false
	}
	if g.ChannelID == nil || other.ChannelID == nil {
		return g.ChannelID == nil && other.ChannelID == nil
	}
	return *g.ChannelID == *other.ChannelID
}

// Member, bir sunucu üyeliğini temsil eder.
// DB'deki "members" tablosu + "member_roles" tablosunun Go karşılığı.
type Member struct {
	ServerID string      `json:"server_id"`
	UserID   string      `json:"user_id"`
	JoinedAt time.Time   `json:"joined_at"`
	Roles    []RoleGrant `json:"roles,omitempty"`
}

// HasGrant, üyenin verilen (rol, scope) grant'ini taşıyıp taşımadığını
// kontrol eder.
func (m *Member) HasGrant(grant RoleGrant) bool {
	for _, g := range m.Roles {
		if g.Equal(grant) {
			return true
		}
	}
	return false
}

// HasServerScopedRole, üyenin verilen rolü sunucu genelinde taşıyıp
// taşımadığını kontrol eder. Kendi rolünü düzenleme yasağında kullanılır:
// yasak sadece sunucu geneli grant'ler için geçerlidir, kanal scope'lu
// grant'ler için değil.
func (m *Member) HasServerScopedRole(roleID string) bool {
	for _, g := range m.Roles {
		if g.RoleID == roleID && g.ChannelID == nil {
			return true
		}
	}
	return false
}

// MemberRoleRequest, üyeye rol ekleme/çıkarma isteği.
type MemberRoleRequest struct {
	RoleID    string  `json:"role_id"`
	ChannelID *string `json:"channel_id"`
}

// Validate, MemberRoleRequest'in geçerli olup olmadığını kontrol eder.
func (r *MemberRoleRequest) Validate() error {
	if r.RoleID == "" {
		return fmt.Errorf("role_id is required")
	}
	return nil
}

// BanMemberRequest, üye yasaklama isteği.
type BanMemberRequest struct {
	Reason string `json:"reason"`
}

// UpdateBanRequest, yasak sebebi güncelleme isteği.
type UpdateBanRequest struct {
	Reason string `json:"reason"`
}
