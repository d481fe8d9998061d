package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/strmparty/loto-services/internal/comm"
	"github.com/strmparty/loto-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// operatorCommands are the message types the overlay control panel is allowed
// to send towards the loto service.
var operatorCommands = map[string]bool{
	"draw-number":       true,
	"manual-draw":       true,
	"reveal-cell":       true,
	"delete-ticket":     true,
	"new-game":          true,
	"update-settings":   true,
	"set-win-threshold": true,
	"get-snapshot":      true,
	"get-winner-log":    true,
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	if !operatorCommands[message.Type] {
		log.Warnf("unknown event received: %s", message.Type)
		return
	}

	// Update message with socket ID so the response can find its way back
	message.SocketId = socketId

	bytes, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "socket.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}

	log.Debugf("forwarded %s from socket %s", message.Type, socketId)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

// AllConnections returns every live socket, used for broadcast events.
func (s *Ws) AllConnections() map[string]*websocket.Conn {
	conns := make(map[string]*websocket.Conn)
	s.connMap.Range(func(key, value interface{}) bool {
		conns[key.(string)] = value.(*websocket.Conn)
		return true
	})
	return conns
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}
