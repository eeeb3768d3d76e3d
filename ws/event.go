// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: her WebSocket bağlantısını temsil eder
// - Event: client-server arası iletilen mesaj formatı
//
// Akış: mutasyon HTTP üzerinden gelir → service DB'ye yazar → service
// Hub.BroadcastToAll çağırır → her client'ın WritePump'ı event'i yazar.
// Hub saf transport'tur: register, heartbeat, broadcast, shutdown.
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Seq: her outbound event'e verilen artan sayı. Client eksik event
// tespiti için takip eder (seq 5'ten sonra 7 geldiyse 6 kaybolmuştur).
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client periyodik gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpHeartbeatAck = "heartbeat_ack"

	OpServerCreate = "server_create"
	OpServerUpdate = "server_update"
	OpServerDelete = "server_delete"

	OpChannelCreate = "channel_create"
	OpChannelUpdate = "channel_update"
	OpChannelDelete = "channel_delete"

	OpRoleCreate = "role_create"
	OpRoleUpdate = "role_update"
	OpRoleDelete = "role_delete"

	OpMemberJoin   = "member_join"
	OpMemberLeave  = "member_leave"
	OpMemberUpdate = "member_update" // grant eklendi/kaldırıldı
	OpMemberKick   = "member_kick"
	OpMemberBan    = "member_ban"
	OpMemberUnban  = "member_unban"
)

// MemberEventData, üyelik event'lerinin payload'ı.
type MemberEventData struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
}

// ChannelDeleteData, channel_delete event'inin payload'ı.
// Silme sonrası kalan kanalların yeni sıralaması da gönderilir.
type ChannelDeleteData struct {
	ServerID  string `json:"server_id"`
	ChannelID string `json:"channel_id"`
}

// RoleDeleteData, role_delete event'inin payload'ı.
type RoleDeleteData struct {
	ServerID string `json:"server_id"`
	RoleID   string `json:"role_id"`
}

// ServerDeleteData, server_delete event'inin payload'ı.
type ServerDeleteData struct {
	ServerID string `json:"server_id"`
}
