// internal/handlers/server.go
package handlers

import (
	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/service"
)

// Subprotocol is the websocket subprotocol clients must speak.
const Subprotocol = "kicks"

// RoomServer holds what the HTTP and websocket handlers share.
type RoomServer struct {
	Service *service.Service
	Config  *config.Config
}

func NewRoomServer(svc *service.Service, cfg *config.Config) *RoomServer {
	return &RoomServer{Service: svc, Config: cfg}
}

func (rs *RoomServer) isClubServer() bool {
	return rs.Config.ServerType == config.ServerClub
}
