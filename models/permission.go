// Package models — Permission sözlüğü ve permission resolver.
//
// agora'da yetkiler bitfield değil, string sözlüğü olarak tutulur.
// Her rol bir permission string kümesi taşır; üyelik kayıtlarındaki
// grant'ler (rol, kanal-scope) çiftleri üzerinden toplanır.
//
// Model tamamen additive'dir (union-of-grants):
// - Deny/override yoktur, rol sıralaması yoktur.
// - Herhangi bir geçerli rolden gelen yetki yeterlidir.
// - Absolute rol (sunucu sahibi) tüm kontrolleri koşulsuz geçer.
package models

// Permission, tek bir yetki string'ini temsil eder.
// Typed string — ham string yerine tip güvenliği sağlar (ChannelType ile aynı pattern).
type Permission string

const (
	PermManageServer   Permission = "manage_server"
	PermManageRoles    Permission = "manage_roles"
	PermViewRoles      Permission = "view_roles"
	PermAssignRoles    Permission = "assign_roles"
	PermManageChannels Permission = "manage_channels"
	PermViewChannel    Permission = "view_channel"
	PermKickMembers    Permission = "kick_members"
	PermBanMembers     Permission = "ban_members"
)

// allPermissions, geçerli permission sözlüğü.
// Rol oluşturma/güncelleme sırasında bilinmeyen string'ler reddedilir.
var allPermissions = map[Permission]bool{
	PermManageServer:   true,
	PermManageRoles:    true,
	PermViewRoles:      true,
	PermAssignRoles:    true,
	PermManageChannels: true,
	PermViewChannel:    true,
	PermKickMembers:    true,
	PermBanMembers:     true,
}

// adminPermissions, rezerve "admin" yetki kümesi.
//
// Bir kanalın default_role_id'si bu kümeden herhangi bir yetki taşıyan
// bir role işaret edemez — yeni katılan her üye o rolü otomatik aldığı
// için, aksi halde sunucuya katılmak yönetici yetkisi kazandırırdı.
// Aynı kontrol join sırasında da uygulanır (güvenli olmayan default
// roller sessizce atlanır).
var adminPermissions = map[Permission]bool{
	PermManageServer:   true,
	PermManageRoles:    true,
	PermAssignRoles:    true,
	PermManageChannels: true,
	PermKickMembers:    true,
	PermBanMembers:     true,
}

// IsValidPermission, string'in permission sözlüğünde olup olmadığını kontrol eder.
func IsValidPermission(p Permission) bool {
	return allPermissions[p]
}

// IsAdminPermission, yetkinin rezerve admin kümesinde olup olmadığını kontrol eder.
func IsAdminPermission(p Permission) bool {
	return adminPermissions[p]
}

// RoleIndex, rol listesini id üzerinden hızlı erişim için indeksler.
//
// Grant'ler rolleri id ile (weak reference) işaret eder: silinmiş bir
// role işaret eden grant hata değildir, sadece çözümlenemez ve atlanır.
// Bu yüzden lookup map + "var mı?" kontrolü kullanılır, pointer navigasyonu değil.
type RoleIndex map[string]*Role

// IndexRoles, rol dilimini RoleIndex'e çevirir.
func IndexRoles(roles []Role) RoleIndex {
	idx := make(RoleIndex, len(roles))
	for i := range roles {
		idx[roles[i].ID] = &roles[i]
	}
	return idx
}

// HasPermission, bir üyenin verilen yetkiye sahip olup olmadığına karar verir.
//
// Saf fonksiyon — DB erişimi yok, sadece yüklenmiş rol ve grant listeleri.
//
// Algoritma:
//  1. Grant seçimi: scope == nil (sunucu geneli) veya scope == channelID.
//     channelID nil ise sadece sunucu geneli grant'ler geçerlidir.
//  2. Rol çözümleme: id bilinmiyorsa grant sessizce atlanır (dangling reference).
//  3. Absolute rol → koşulsuz izin (sahip erişimi, string kontrolü atlanır).
//  4. Herhangi bir rolün kümesinde yetki varsa → izin.
//  5. Aksi halde red.
func HasPermission(roles []Role, grants []RoleGrant, perm Permission, channelID *string) bool {
	idx := IndexRoles(roles)

	for _, grant := range grants {
		if !grant.AppliesTo(channelID) {
			continue
		}

		role, ok := idx[grant.RoleID]
		if !ok {
			continue
		}

		if role.IsAbsolute {
			return true
		}

		if role.HasPermission(perm) {
			return true
		}
	}

	return false
}
