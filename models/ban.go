package models

import "time"

// Ban, bir sunucu yasağını temsil eder.
// DB'deki "bans" tablosunun Go karşılığı.
//
// Yasak kaydı üyelikten bağımsızdır: üye atıldıktan sonra da yasak
// kaydı durur, yasak kalkınca üyelik geri gelmez.
type Ban struct {
	ServerID  string    `json:"server_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
