package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server broadcasts connection summaries to any number of connected
// viewers over a websocket, and answers a health check for operators.
type Server struct {
	addr string
	hub  *Hub

	clients    map[uuid.UUID]*viewer
	broadcast  chan []byte
	register   chan *viewer
	unregister chan uuid.UUID

	upgrader websocket.Upgrader
	mu       sync.RWMutex
}

type viewer struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a server listening on addr (host:port) once Start is
// called, broadcasting updates published by hub.
func NewServer(addr string, hub *Hub) *Server {
	return &Server{
		addr:       addr,
		hub:        hub,
		clients:    make(map[uuid.UUID]*viewer),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *viewer),
		unregister: make(chan uuid.UUID),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the broadcast loop and blocks serving HTTP until the process
// exits or ListenAndServe fails.
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/summaries", s.handleViewer)
	mux.HandleFunc("/health", s.handleHealth)

	log.Printf("[INFO] monitor: websocket server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) run() {
	for {
		select {
		case v := <-s.register:
			s.mu.Lock()
			s.clients[v.id] = v
			count := len(s.clients)
			s.mu.Unlock()
			log.Printf("[INFO] monitor: viewer %s connected (%d total)", v.id, count)

		case id := <-s.unregister:
			s.mu.Lock()
			if v, ok := s.clients[id]; ok {
				delete(s.clients, id)
				close(v.send)
			}
			count := len(s.clients)
			s.mu.Unlock()
			log.Printf("[INFO] monitor: viewer %s disconnected (%d total)", id, count)

		case message := <-s.broadcast:
			s.mu.RLock()
			targets := make([]*viewer, 0, len(s.clients))
			for _, v := range s.clients {
				targets = append(targets, v)
			}
			s.mu.RUnlock()

			for _, v := range targets {
				select {
				case v.send <- message:
				default:
					s.mu.Lock()
					delete(s.clients, v.id)
					s.mu.Unlock()
					close(v.send)
				}
			}
		}
	}
}

// Broadcast publishes summary to every connected viewer. Intended as the
// onUpdate callback passed to NewHub.
func (s *Server) Broadcast(summary *ConnectionSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("[WARN] monitor: failed to marshal summary: %v", err)
		return
	}
	select {
	case s.broadcast <- data:
	default:
		log.Println("[WARN] monitor: broadcast channel full, dropping update")
	}
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] monitor: websocket upgrade failed: %v", err)
		return
	}

	v := &viewer{id: uuid.New(), conn: conn, send: make(chan []byte, 256)}
	s.register <- v

	s.sendSnapshot(v)

	go v.writePump()
	go s.readPump(v)
}

func (s *Server) sendSnapshot(v *viewer) {
	for _, summary := range s.hub.Snapshot() {
		data, err := json.Marshal(summary)
		if err != nil {
			continue
		}
		select {
		case v.send <- data:
		default:
		}
	}
}

func (s *Server) readPump(v *viewer) {
	defer func() {
		s.unregister <- v.id
		v.conn.Close()
	}()

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] monitor: websocket read error: %v", err)
			}
			break
		}
	}
}

func (v *viewer) writePump() {
	defer v.conn.Close()
	for message := range v.send {
		if err := v.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	v.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	count := len(s.clients)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"viewers": count,
	})
}
