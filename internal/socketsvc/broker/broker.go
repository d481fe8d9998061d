package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/strmparty/loto-services/internal/comm"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	AllConnections func() map[string]*websocket.Conn
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncAllConnections func() map[string]*websocket.Conn) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		AllConnections: fncAllConnections,
	}
}

// consume message from loto service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to loto service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receive message from loto service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "loto-snapshot", "loto-draw", "loto-winner", "super-game-update", "winner-log", "loto-res":
		// an empty socket id means every overlay client should see it
		if message.SocketId == "" {
			b.broadcast(message)
		} else {
			b.sendMessage(message)
		}
	default:
		log.Errorf("Unknown message type %s", message.Type)
		return
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}

func (b *Broker) broadcast(m *comm.WSMessage) {
	for socketId, conn := range b.AllConnections() {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}
