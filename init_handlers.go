// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/agora/handlers"
	"github.com/akinalp/agora/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Server  *handlers.ServerHandler
	Role    *handlers.RoleHandler
	Channel *handlers.ChannelHandler
	Member  *handlers.MemberHandler
	WS      *ws.Handler
}

// initHandlers, tüm handler'ları service dependency'leri ile oluşturur.
func initHandlers(svcs *Services, hub *ws.Hub) *Handlers {
	return &Handlers{
		Server:  handlers.NewServerHandler(svcs.Server),
		Role:    handlers.NewRoleHandler(svcs.Role),
		Channel: handlers.NewChannelHandler(svcs.Channel),
		Member:  handlers.NewMemberHandler(svcs.Member),
		WS:      ws.NewHandler(hub, svcs.Auth),
	}
}
