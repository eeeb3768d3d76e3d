package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ChannelType, kanalın türünü temsil eder.
// Go'da enum yerine typed constant kullanılır.
//
// "category" da bir kanal türüdür: kategoriler ayrı tablo değil,
// channels tablosunda type='category' satırlardır ve diğer kanallarla
// aynı position dizisini paylaşır.
type ChannelType string

const (
	ChannelTypeText     ChannelType = "text"
	ChannelTypeVoice    ChannelType = "voice"
	ChannelTypeCategory ChannelType = "category"
)

// IsValidChannelType, string'in bilinen bir kanal türü olup olmadığını kontrol eder.
func IsValidChannelType(t ChannelType) bool {
	return t == ChannelTypeText || t == ChannelTypeVoice || t == ChannelTypeCategory
}

// Channel, bir sunucu kanalını (veya kategorisini) temsil eder.
// DB'deki "channels" tablosunun Go karşılığı.
//
// CategoryID: kanalın bağlı olduğu kategori kanalının id'si. Nullable —
// kategorisiz kanal olabilir; kategoriler için her zaman nil.
// DefaultRoleID: sunucuya yeni katılan üyeye bu kanal scope'unda otomatik
// verilen rol. Nullable. Admin yetkili bir role işaret edemez.
type Channel struct {
	ID            string      `json:"id"`
	ServerID      string      `json:"server_id"`
	Name          string      `json:"name"`
	Type          ChannelType `json:"type"`
	CategoryID    *string     `json:"category_id"`
	DefaultRoleID *string     `json:"default_role_id"`
	Position      int         `json:"position"`
	CreatedAt     time.Time   `json:"created_at"`
}

// IsCategory, kanalın kategori olup olmadığını kontrol eder.
func (c *Channel) IsCategory() bool {
	return c.Type == ChannelTypeCategory
}

// CreateChannelRequest, yeni kanal oluşturma isteği.
// Position nil ise kanal listenin sonuna eklenir; verilirse o index'e
// insert edilir ve sonraki kanallar kaydırılır.
type CreateChannelRequest struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	CategoryID    *string `json:"category_id"`
	DefaultRoleID *string `json:"default_role_id"`
	Position      *int    `json:"position"`
}

// Validate, CreateChannelRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateChannelRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("channel name must be between 1 and 100 characters")
	}

	for _, ch := range r.Name {
		if !isValidChannelNameChar(ch) {
			return fmt.Errorf("channel name contains invalid characters")
		}
	}

	if !IsValidChannelType(ChannelType(r.Type)) {
		return fmt.Errorf("channel type must be 'text', 'voice' or 'category'")
	}

	if ChannelType(r.Type) == ChannelTypeCategory && r.CategoryID != nil {
		return fmt.Errorf("a category cannot belong to another category")
	}

	if r.Position != nil && *r.Position < 0 {
		return fmt.Errorf("position cannot be negative")
	}

	return nil
}

// UpdateChannelRequest, kanal güncelleme isteği.
// Pointer kullanılır — nil ise o alan güncellenmez (partial update).
//
// CategoryID ve DefaultRoleID için "gönderilmedi" ile "null gönderildi"
// ayrımı gerekir: null göndermek alanı temizler (kategoriden çıkar /
// default rolü kaldır). Bu yüzden presence flag'leri custom
// UnmarshalJSON ile doldurulur.
type UpdateChannelRequest struct {
	Name          *string `json:"name"`
	Position      *int    `json:"position"`
	CategoryID    *string `json:"category_id"`
	DefaultRoleID *string `json:"default_role_id"`

	CategorySet    bool `json:"-"`
	DefaultRoleSet bool `json:"-"`
}

// UnmarshalJSON, category_id ve default_role_id alanlarının istekte
// var olup olmadığını (null dahil) tespit eder.
func (r *UpdateChannelRequest) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name          *string         `json:"name"`
		Position      *int            `json:"position"`
		CategoryID    json.RawMessage `json:"category_id"`
		DefaultRoleID json.RawMessage `json:"default_role_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Name = aux.Name
	r.Position = aux.Position

	if aux.CategoryID != nil {
		r.CategorySet = true
		if err := json.Unmarshal(aux.CategoryID, &r.CategoryID); err != nil {
			return err
		}
	}
	if aux.DefaultRoleID != nil {
		r.DefaultRoleSet = true
		if err := json.Unmarshal(aux.DefaultRoleID, &r.DefaultRoleID); err != nil {
			return err
		}
	}
	return nil
}

// Validate, UpdateChannelRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateChannelRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("channel name must be between 1 and 100 characters")
		}
		for _, ch := range *r.Name {
			if !isValidChannelNameChar(ch) {
				return fmt.Errorf("channel name contains invalid characters")
			}
		}
	}

	if r.Position != nil && *r.Position < 0 {
		return fmt.Errorf("position cannot be negative")
	}

	return nil
}

// SortChannelsByPosition, kanal dilimini position'a göre stabil sıralar.
// Position çakışmalarında mevcut sıra korunur.
func SortChannelsByPosition(channels []Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Position < channels[j].Position
	})
}

// InsertPosition, yeni bir kanal için efektif position'ı ve kaydırma
// eşiğini hesaplar.
//
// requested nil ise kanal sona eklenir (position = mevcut kanal sayısı)
// ve hiçbir kanal kaydırılmaz (shiftFrom = -1 döner).
// requested verilmişse position >= requested olan tüm kanallar +1
// kaydırılır (stable insert).
func InsertPosition(count int, requested *int) (position int, shiftFrom int) {
	if requested == nil {
		return count, -1
	}
	return *requested, *requested
}

// ReorderPositions, bir kanalı position dizisinde yeni index'e taşır ve
// TÜM kanalları 0..n-1 olacak şekilde yeniden numaralandırır.
//
// Algoritma: position'a göre sırala, taşınan kanalı çıkar, hedef index'i
// [0, n-1] aralığına clamp'le, o index'e splice et, baştan numaralandır.
// Sonuç: her çağrıdan sonra position'lar yoğun ve çakışmasızdır.
//
// Dönen dilim aynı elemanları yeni position değerleriyle taşır; çağıran
// hepsini tek transaction'da persist eder.
func ReorderPositions(channels []Channel, channelID string, newPosition int) []Channel {
	sorted := make([]Channel, len(channels))
	copy(sorted, channels)
	SortChannelsByPosition(sorted)

	moved := -1
	for i := range sorted {
		if sorted[i].ID == channelID {
			moved = i
			break
		}
	}
	if moved == -1 {
		return sorted
	}

	target := sorted[moved]
	rest := append(sorted[:moved:moved], sorted[moved+1:]...)

	if newPosition < 0 {
		newPosition = 0
	}
	if newPosition > len(rest) {
		newPosition = len(rest)
	}

	result := make([]Channel, 0, len(sorted))
	result = append(result, rest[:newPosition]...)
	result = append(result, target)
	result = append(result, rest[newPosition:]...)

	for i := range result {
		result[i].Position = i
	}
	return result
}

// RenumberPositions, kanalları position'a göre sıralayıp 0..n-1 olarak
// yeniden numaralandırır. Kanal silindikten sonra dizideki boşluğu kapatır.
func RenumberPositions(channels []Channel) []Channel {
	sorted := make([]Channel, len(channels))
	copy(sorted, channels)
	SortChannelsByPosition(sorted)
	for i := range sorted {
		sorted[i].Position = i
	}
	return sorted
}

// VisibleChannels, üyenin görebileceği kanal listesini hesaplar.
//
// Kurallar:
// - Kategori olmayan bir kanal, canView o kanal için true dönerse görünür.
// - Bir kategori, en az bir görünür kanal ona bağlıysa görünür.
//   Kategorinin kendisi için yetki kontrolü yapılmaz.
// - Sonuç: görünür kanallar + görünür kategoriler, position'a göre
//   stabil sıralanmış tek liste.
func VisibleChannels(channels []Channel, canView func(channelID string) bool) []Channel {
	visible := make([]Channel, 0, len(channels))
	usedCategories := make(map[string]bool)

	for _, c := range channels {
		if c.IsCategory() {
			continue
		}
		if !canView(c.ID) {
			continue
		}
		visible = append(visible, c)
		if c.CategoryID != nil {
			usedCategories[*c.CategoryID] = true
		}
	}

	for _, c := range channels {
		if c.IsCategory() && usedCategories[c.ID] {
			visible = append(visible, c)
		}
	}

	SortChannelsByPosition(visible)
	return visible
}

// isValidChannelNameChar, kanal adında izin verilen karakterleri kontrol eder.
// Unicode harf/rakam, boşluk, tire, alt çizgi kabul edilir.
func isValidChannelNameChar(ch rune) bool {
	return unicode.IsLetter(ch) ||
		unicode.IsDigit(ch) ||
		ch == '-' || ch == '_' || ch == ' '
}
