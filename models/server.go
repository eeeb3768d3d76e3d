package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ServerVisibility, sunucunun keşfedilebilirliğini temsil eder.
type ServerVisibility string

const (
	ServerVisibilityPublic  ServerVisibility = "public"
	ServerVisibilityPrivate ServerVisibility = "private"
)

// NotificationSettings, sunucunun varsayılan bildirim ayarlarıdır.
// Üyeye özel override'lar bu servisin kapsamı dışındadır; burada
// sadece sunucu geneli varsayılanlar tutulur.
type NotificationSettings struct {
	MuteAll               bool `json:"mute_all"`
	MuteNewUsers          bool `json:"mute_new_users"`
	MuteAllExceptMentions bool `json:"mute_all_except_mentions"`
}

// Server, bir topluluk sunucusunu temsil eder.
//
// DefaultRoleID: sunucuya katılan her üyeye sunucu genelinde otomatik
// verilen rol. Nullable, weak reference — rol silinmişse join sırasında
// sessizce atlanır.
// MembersCount, join/leave/kick/ban ile birlikte aynı transaction'da
// güncellenen denormalize sayaçtır; hiçbir zaman negatife düşmez.
type Server struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	OwnerID       string               `json:"owner_id"`
	Bio           string               `json:"bio"`
	AvatarURL     string               `json:"avatar_url"`
	Visibility    ServerVisibility     `json:"visibility"`
	Tags          []string             `json:"tags"`
	DefaultRoleID *string              `json:"default_role_id"`
	MembersCount  int                  `json:"members_count"`
	Notifications NotificationSettings `json:"default_notification_settings"`
	CreatedAt     time.Time            `json:"created_at"`
}

// IsOwner, kullanıcının sunucu sahibi olup olmadığını kontrol eder.
// Sahip kimlik bazlı korunur: atılamaz, yasaklanamaz, ayrılamaz ve
// tüm yetki kontrollerini absolute rolü üzerinden geçer.
func (s *Server) IsOwner(userID string) bool {
	return s.OwnerID == userID
}

// CreateServerRequest, yeni sunucu oluşturma isteği.
type CreateServerRequest struct {
	Name       string   `json:"name"`
	Bio        string   `json:"bio"`
	AvatarURL  string   `json:"avatar_url"`
	Visibility string   `json:"visibility"`
	Tags       []string `json:"tags"`
}

// Validate, CreateServerRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateServerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("server name must be between 1 and 100 characters")
	}

	r.Bio = strings.TrimSpace(r.Bio)
	if utf8.RuneCountInString(r.Bio) > 1024 {
		return fmt.Errorf("server bio must be at most 1024 characters")
	}

	if r.Visibility == "" {
		r.Visibility = string(ServerVisibilityPublic)
	}
	if r.Visibility != string(ServerVisibilityPublic) && r.Visibility != string(ServerVisibilityPrivate) {
		return fmt.Errorf("visibility must be 'public' or 'private'")
	}

	if err := validateTags(r.Tags); err != nil {
		return err
	}

	return nil
}

// UpdateServerRequest, sunucu güncelleme isteği.
// Pointer kullanılır — nil ise o alan güncellenmez (partial update).
type UpdateServerRequest struct {
	Name          *string   `json:"name"`
	Bio           *string   `json:"bio"`
	AvatarURL     *string   `json:"avatar_url"`
	Visibility    *string   `json:"visibility"`
	Tags          *[]string `json:"tags"`
	DefaultRoleID *string   `json:"default_role_id"`
}

// Validate, UpdateServerRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateServerRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("server name must be between 1 and 100 characters")
		}
	}

	if r.Bio != nil {
		*r.Bio = strings.TrimSpace(*r.Bio)
		if utf8.RuneCountInString(*r.Bio) > 1024 {
			return fmt.Errorf("server bio must be at most 1024 characters")
		}
	}

	if r.Visibility != nil {
		if *r.Visibility != string(ServerVisibilityPublic) && *r.Visibility != string(ServerVisibilityPrivate) {
			return fmt.Errorf("visibility must be 'public' or 'private'")
		}
	}

	if r.Tags != nil {
		if err := validateTags(*r.Tags); err != nil {
			return err
		}
	}

	return nil
}

// UpdateNotificationSettingsRequest, varsayılan bildirim ayarı güncelleme isteği.
// Pointer kullanılır — nil ise o ayar değişmez.
type UpdateNotificationSettingsRequest struct {
	MuteAll               *bool `json:"mute_all"`
	MuteNewUsers          *bool `json:"mute_new_users"`
	MuteAllExceptMentions *bool `json:"mute_all_except_mentions"`
}

// CheckPermissionRequest, permission check endpoint'inin isteği.
// Çağıran üyenin verilen yetkiye (opsiyonel kanal bağlamında) sahip
// olup olmadığını sorgular.
type CheckPermissionRequest struct {
	Permission Permission `json:"permission"`
	ChannelID  *string    `json:"channel_id"`
}

// Validate, CheckPermissionRequest'in geçerli olup olmadığını kontrol eder.
func (r *CheckPermissionRequest) Validate() error {
	if !IsValidPermission(r.Permission) {
		return fmt.Errorf("unknown permission: %s", r.Permission)
	}
	return nil
}

// CheckPermissionResponse, permission check endpoint'inin yanıtı.
type CheckPermissionResponse struct {
	Allowed bool `json:"allowed"`
}

// validateTags, tag listesini doğrular: en fazla 10 tag, her biri 1-32
// karakter, tekrar yok.
func validateTags(tags []string) error {
	if len(tags) > 10 {
		return fmt.Errorf("at most 10 tags are allowed")
	}
	seen := make(map[string]bool, len(tags))
	for i, t := range tags {
		tags[i] = strings.TrimSpace(t)
		tagLen := utf8.RuneCountInString(tags[i])
		if tagLen < 1 || tagLen > 32 {
			return fmt.Errorf("tags must be between 1 and 32 characters")
		}
		if seen[tags[i]] {
			return fmt.Errorf("duplicate tag: %s", tags[i])
		}
		seen[tags[i]] = true
	}
	return nil
}
