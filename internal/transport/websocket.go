// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	applog "audiohub/internal/log"
)

// WebSocket broadcasts payloads as JSON to every connected client.
// Slow consumers never stall the DSP chain: when the broadcast queue is
// full the payload is dropped.
type WebSocket struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	done      chan struct{}
	closed    atomic.Bool
	server    *http.Server
}

// NewWebSocket creates the transport and starts serving on addr
// (for example ":8080"). Clients connect at /ws.
func NewWebSocket(addr string) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Visualization clients come from anywhere
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}

	ws.start()
	return ws
}

func (ws *WebSocket) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.handleWebSocket)

	ws.server = &http.Server{
		Addr:    ws.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("WebSocket transport: serving on %s", ws.addr)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocket transport: server error: %v", err)
		}
	}()

	go ws.handleBroadcasts()
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (ws *WebSocket) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("WebSocket transport: upgrade error: %v", err)
		return
	}

	ws.clientsMu.Lock()
	ws.clients[conn] = true
	total := len(ws.clients)
	ws.clientsMu.Unlock()
	applog.Infof("WebSocket transport: client connected, total: %d", total)

	go func() {
		// Block until the client goes away.
		_, _, err := conn.ReadMessage()
		if err != nil {
			ws.clientsMu.Lock()
			delete(ws.clients, conn)
			total := len(ws.clients)
			ws.clientsMu.Unlock()
			conn.Close()
			applog.Infof("WebSocket transport: client disconnected, total: %d", total)
		}
	}()
}

// handleBroadcasts sends queued payloads to all connected clients
// until Close signals shutdown.
func (ws *WebSocket) handleBroadcasts() {
	for {
		select {
		case <-ws.done:
			return
		case data := <-ws.broadcast:
			ws.clientsMu.Lock()
			for client := range ws.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Debugf("WebSocket transport: dropping client: %v", err)
					client.Close()
					delete(ws.clients, client)
				}
			}
			ws.clientsMu.Unlock()
		}
	}
}

// Send queues data for broadcast. Never blocks; drops when the queue is full.
func (ws *WebSocket) Send(data any) error {
	select {
	case ws.broadcast <- data:
	default:
		// Queue full, drop payload
	}
	return nil
}

// Close shuts down the broadcast loop, the server and every client
// connection. Safe to call more than once.
func (ws *WebSocket) Close() error {
	if !ws.closed.CompareAndSwap(false, true) {
		return nil
	}

	applog.Debug("WebSocket transport: closing")
	close(ws.done)

	ws.clientsMu.Lock()
	for client := range ws.clients {
		client.Close()
	}
	ws.clients = make(map[*websocket.Conn]bool)
	ws.clientsMu.Unlock()

	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocket)(nil)
