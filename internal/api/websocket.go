package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes settlement notifications to websocket subscribers. A POS
// display subscribes to its pending payment hash and hears about the
// settlement without waiting for the next poll tick.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]bool // payment hash -> connections
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Subscribe(paymentHash string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[paymentHash] == nil {
		h.clients[paymentHash] = make(map[*websocket.Conn]bool)
	}
	h.clients[paymentHash][conn] = true
}

func (h *Hub) Unsubscribe(paymentHash string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[paymentHash]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, paymentHash)
		}
	}
}

// NotifyPayment broadcasts a status change to every subscriber of the
// payment hash. Safe to call with no subscribers.
func (h *Hub) NotifyPayment(paymentHash string, status string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients[paymentHash] {
		if err := conn.WriteJSON(map[string]string{
			"payment_hash": paymentHash,
			"status":       status,
		}); err != nil {
			log.Errorf("[api] ws write failed: %v", err)
		}
	}
}

// Handle upgrades the connection and keeps it subscribed to the
// payment_hash query parameter until the client disconnects.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	paymentHash := r.URL.Query().Get("payment_hash")
	if paymentHash == "" {
		http.Error(w, "missing payment_hash", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.Subscribe(paymentHash, conn)
	defer h.Unsubscribe(paymentHash, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
