package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/bank-branch-game/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts buffered between the movement clock and the hub loop.
	broadcastBuffer = 256

	// Frames waiting to be written to one subscriber.
	subscriberBuffer = 64

	stateUpdate = "state_update"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one frame of the live stream
type Message struct {
	SessionID string               `json:"session_id"`
	GameState *engine.GameSnapshot `json:"game_state,omitempty"`
	Event     string               `json:"event,omitempty"`
	Data      interface{}          `json:"data,omitempty"`
}

// SnapshotFunc returns the current state of a session. The hub uses it to
// greet new subscribers so they can draw the token before the first step.
type SnapshotFunc func(sessionID string) (*engine.GameSnapshot, error)

// subscriber is one WebSocket connection following one session
type subscriber struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub fans session updates out to subscribers. The subscriber registry is
// owned by the Run loop; everything else reaches it through channels.
type Hub struct {
	subscribers map[string]map[*subscriber]struct{}

	broadcast  chan *Message
	register   chan *subscriber
	unregister chan *subscriber

	// Closed when Run returns
	done chan struct{}

	snapshot SnapshotFunc
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		broadcast:   make(chan *Message, broadcastBuffer),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		done:        make(chan struct{}),
	}
}

// SetSnapshotSource sets where greetings for new subscribers come from.
// Call it before the hub starts serving.
func (h *Hub) SetSnapshotSource(fn SnapshotFunc) {
	h.snapshot = fn
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every subscriber
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, subs := range h.subscribers {
				for sub := range subs {
					h.drop(sub)
				}
			}
			return
		case sub := <-h.register:
			h.add(sub)
		case sub := <-h.unregister:
			h.drop(sub)
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, subscriberBuffer),
		sessionID: sessionID,
	}
	h.greet(sub)

	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go sub.writePump()
	go sub.readPump()
}

// greet queues the current session state as the subscriber's first frame
func (h *Hub) greet(sub *subscriber) {
	if h.snapshot == nil {
		return
	}
	state, err := h.snapshot(sub.sessionID)
	if err != nil {
		log.Printf("[WS] no snapshot for session %s: %v", sub.sessionID, err)
		return
	}
	data, err := json.Marshal(&Message{SessionID: sub.sessionID, GameState: state, Event: stateUpdate})
	if err != nil {
		log.Printf("[WS] failed to marshal greeting: %v", err)
		return
	}
	sub.send <- data
}

// BroadcastToSession pushes a full snapshot to a session's subscribers
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameSnapshot) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     stateUpdate,
	})
}

// BroadcastEvent pushes a game event to a session's subscribers
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// enqueue never blocks the movement clock. With the buffer full the message
// is dropped and logged.
func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("[WS] broadcast buffer full, dropping %s for session %s", message.Event, message.SessionID)
	}
}

func (h *Hub) add(sub *subscriber) {
	subs := h.subscribers[sub.sessionID]
	if subs == nil {
		subs = make(map[*subscriber]struct{})
		h.subscribers[sub.sessionID] = subs
	}
	subs[sub] = struct{}{}
	log.Printf("[WS] subscribed to session %s (subscribers: %d)", sub.sessionID, len(subs))
}

// drop removes a subscriber and closes its send channel; dropping twice is a no-op
func (h *Hub) drop(sub *subscriber) {
	subs, ok := h.subscribers[sub.sessionID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.subscribers, sub.sessionID)
	}
	log.Printf("[WS] unsubscribed from session %s (subscribers: %d)", sub.sessionID, len(subs))
}

// deliver writes a message to every subscriber of its session. A subscriber
// that is behind skips snapshots, since the next one supersedes them, but is
// dropped when it cannot take an event.
func (h *Hub) deliver(message *Message) {
	subs := h.subscribers[message.SessionID]
	if len(subs) == 0 {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] failed to marshal %s: %v", message.Event, err)
		return
	}
	for sub := range subs {
		select {
		case sub.send <- data:
		default:
			if message.Event != stateUpdate {
				h.drop(sub)
			}
		}
	}
}

// readPump discards client frames; reading keeps the pong deadline moving
// and notices when the peer goes away
func (s *subscriber) readPump() {
	defer func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}
	}
}

// writePump sends one text frame per message so every frame is a complete
// JSON document
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
