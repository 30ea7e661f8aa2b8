package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks every connected gallery viewer. The gallery has a single
// global feed, so there is one flat subscriber set. gorilla/websocket
// allows only one concurrent writer per connection, so each conn carries
// its own write mutex; Broadcast and Send both go through it.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*sync.Mutex
}

func NewHub() *Hub {
	log.Printf("[hub] init")
	return &Hub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = &sync.Mutex{}
	log.Printf("[hub] register conns=%d", len(h.conns))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
		log.Printf("[hub] unregister conns=%d", len(h.conns))
	}
}

// Broadcast pushes msg to every subscriber. Write failures are logged per
// connection; the broken conn gets dropped on its handler's next read.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.conns) == 0 {
		log.Printf("[hub][SEND-SKIP] reason=no_active_connections")
		return
	}

	log.Printf("[hub][SEND] conns=%d bytes=%d", len(h.conns), len(msg))

	for conn, wmu := range h.conns {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, msg)
		wmu.Unlock()
		if err != nil {
			log.Printf("[hub][SEND-ERR] err=%v", err)
		}
	}
}

// Send writes msg to a single subscriber, used for the on-connect snapshot.
// The conn must already be registered so the write serializes with Broadcast.
func (h *Hub) Send(conn *websocket.Conn, msg []byte) {
	h.mu.RLock()
	wmu, ok := h.conns[conn]
	h.mu.RUnlock()

	if !ok {
		log.Printf("[hub][SNAPSHOT-SKIP] reason=not_registered")
		return
	}

	wmu.Lock()
	defer wmu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Printf("[hub][SNAPSHOT-ERR] err=%v", err)
	}
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
