package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role, bir sunucu rolünü temsil eder.
// Permissions, string sözlüğünden gelen yetki kümesidir (DB'de JSON TEXT).
//
// IsAbsolute: sunucu sahibinin rolü. Her sunucuda tam olarak bir tane
// vardır, sunucu ile birlikte atomik oluşturulur. Absolute rol:
// - sadece sahip tarafından düzenlenebilir,
// - hiç kimse tarafından silinemez,
// - grant API'si ile atanamaz/kaldırılamaz,
// - rol listelemede gizlenir.
type Role struct {
	ID          string       `json:"id"`
	ServerID    string       `json:"server_id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
	IsAbsolute  bool         `json:"is_absolute"`
	CreatedAt   time.Time    `json:"created_at"`
}

// HasPermission, rolün yetki kümesinde verilen yetkinin olup olmadığını kontrol eder.
// Absolute bypass burada DEĞİL, resolver'dadır — bu sadece küme üyeliği.
func (r *Role) HasPermission(perm Permission) bool {
	for _, p := range r.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAnyAdminPermission, rolün rezerve admin kümesinden en az bir yetki
// taşıyıp taşımadığını kontrol eder. Kanal default rolü güvenlik kontrolünde
// kullanılır: admin yetkili bir rol default rol olamaz.
func (r *Role) HasAnyAdminPermission() bool {
	if r.IsAbsolute {
		return true
	}
	for _, p := range r.Permissions {
		if IsAdminPermission(p) {
			return true
		}
	}
	return false
}

// FilterVisibleRoles, absolute rolleri listeden çıkarır.
// Rol listeleme endpoint'i sahip rolünü göstermez.
func FilterVisibleRoles(roles []Role) []Role {
	visible := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.IsAbsolute {
			visible = append(visible, r)
		}
	}
	return visible
}

// CreateRoleRequest, yeni rol oluşturma isteği.
// API'den absolute rol oluşturulamaz — absolute rol sadece sunucu
// oluşturulurken doğar.
type CreateRoleRequest struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Validate, CreateRoleRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("role name must be between 1 and 100 characters")
	}
	return validatePermissions(r.Permissions)
}

// UpdateRoleRequest, rol güncelleme isteği.
// Pointer kullanılır — nil ise o alan güncellenmez (partial update).
type UpdateRoleRequest struct {
	Name        *string       `json:"name"`
	Permissions *[]Permission `json:"permissions"`
}

// Validate, UpdateRoleRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateRoleRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("role name must be between 1 and 100 characters")
		}
	}
	if r.Permissions != nil {
		if err := validatePermissions(*r.Permissions); err != nil {
			return err
		}
	}
	return nil
}

// validatePermissions, yetki listesindeki her string'in sözlükte olduğunu
// ve tekrar etmediğini doğrular.
func validatePermissions(perms []Permission) error {
	seen := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		if !IsValidPermission(p) {
			return fmt.Errorf("unknown permission: %s", p)
		}
		if seen[p] {
			return fmt.Errorf("duplicate permission: %s", p)
		}
		seen[p] = true
	}
	return nil
}
