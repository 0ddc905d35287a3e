package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/queue-app/utils"
)

// Event types
const (
	EventQueueChanged   = "queue_changed"
	EventTokenUpdate    = "token_update"
	EventTableUpdate    = "table_update"
	EventSettingsUpdate = "settings_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Sink receives every broadcast message in addition to websocket clients.
type Sink func(msg Message)

// QueueHub holds the connected dashboards and any relay sinks.
type QueueHub struct {
	clients map[*websocket.Conn]string // conn -> role
	sinks   []Sink
	mutex   sync.Mutex
}

var queueHub = QueueHub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with the role it authenticated as.
func RegisterClient(conn *websocket.Conn, role string) {
	queueHub.mutex.Lock()
	defer queueHub.mutex.Unlock()
	queueHub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	queueHub.mutex.Lock()
	defer queueHub.mutex.Unlock()
	delete(queueHub.clients, conn)
	conn.Close()
}

// ClientCount reports how many websocket clients are connected.
func ClientCount() int {
	queueHub.mutex.Lock()
	defer queueHub.mutex.Unlock()
	return len(queueHub.clients)
}

// AddSink registers fn to receive every broadcast.
func AddSink(fn Sink) {
	queueHub.mutex.Lock()
	defer queueHub.mutex.Unlock()
	queueHub.sinks = append(queueHub.sinks, fn)
}

// ResetSinks removes every sink.
func ResetSinks() {
	queueHub.mutex.Lock()
	defer queueHub.mutex.Unlock()
	queueHub.sinks = nil
}

// BroadcastQueueChanged tells clients to refetch the waiting list.
func BroadcastQueueChanged() {
	broadcast(Message{Event: EventQueueChanged, Data: nil})
}

// BroadcastTokenUpdate pushes a token change.
func BroadcastTokenUpdate(tokenID uint, data interface{}) {
	broadcast(Message{
		Event: EventTokenUpdate,
		Data: map[string]interface{}{
			"token_id": tokenID,
			"token":    data,
		},
	})
}

// BroadcastTableUpdate pushes a table change.
func BroadcastTableUpdate(tableID uint, data interface{}) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data: map[string]interface{}{
			"table_id": tableID,
			"table":    data,
		},
	})
}

// BroadcastMessage sends an arbitrary message.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	queueHub.mutex.Lock()
	defer queueHub.mutex.Unlock()

	for _, sink := range queueHub.sinks {
		sink(msg)
	}
	if len(queueHub.clients) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range queueHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
		}
	}
}
