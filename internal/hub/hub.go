package hub

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

// Upgrader configures owner dashboard WebSocket connections.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// VisitEvent is pushed to everyone watching a route when a player visits one
// of its waypoints.
type VisitEvent struct {
	RouteID      uint      `json:"route_id"`
	WaypointID   uint      `json:"waypoint_id"`
	WaypointName string    `json:"waypoint_name"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	VisitedAt    time.Time `json:"visited_at"`
}

// VisitHub manages active WebSocket connections per route and broadcasts
// visit events to them.
type VisitHub struct {
	routeClients map[uint]map[*websocket.Conn]bool
	broadcast    chan VisitEvent
	quit         chan struct{}
	closeOnce    sync.Once
	mu           sync.Mutex
}

// NewVisitHub creates a hub and starts its broadcasting goroutine.
func NewVisitHub() *VisitHub {
	h := &VisitHub{
		routeClients: make(map[uint]map[*websocket.Conn]bool),
		broadcast:    make(chan VisitEvent, 100),
		quit:         make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *VisitHub) run() {
	for {
		select {
		case <-h.quit:
			return
		case ev := <-h.broadcast:
			for _, conn := range h.clients(ev.RouteID) {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(ev); err != nil {
					logrus.WithError(err).WithFields(logrus.Fields{
						"route_id": ev.RouteID,
						"conn_ptr": fmt.Sprintf("%p", conn),
					}).Info("Dropping watcher after failed write.")
					h.Unregister(ev.RouteID, conn)
					conn.Close()
				}
			}
		}
	}
}

func (h *VisitHub) clients(routeID uint) []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.routeClients[routeID]))
	for conn := range h.routeClients[routeID] {
		conns = append(conns, conn)
	}
	return conns
}

// Watchers returns how many connections follow a route.
func (h *VisitHub) Watchers(routeID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.routeClients[routeID])
}

func (h *VisitHub) Register(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.routeClients[routeID]; !ok {
		h.routeClients[routeID] = make(map[*websocket.Conn]bool)
	}
	h.routeClients[routeID][conn] = true
	logrus.WithFields(logrus.Fields{
		"route_id": routeID,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Watcher registered with VisitHub.")
}

func (h *VisitHub) Unregister(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.routeClients[routeID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.routeClients, routeID)
		}
	}
	logrus.WithFields(logrus.Fields{
		"route_id": routeID,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Watcher unregistered from VisitHub.")
}

// Publish queues an event without blocking. Events are dropped when the
// queue is full.
func (h *VisitHub) Publish(ev VisitEvent) {
	select {
	case h.broadcast <- ev:
	default:
		logrus.WithField("route_id", ev.RouteID).Warn("Visit broadcast channel full, dropping event.")
	}
}

// Serve registers conn for routeID and blocks until the client goes away.
// Watchers only listen; anything they send is ignored.
func (h *VisitHub) Serve(routeID uint, conn *websocket.Conn) {
	h.Register(routeID, conn)
	defer h.Unregister(routeID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithField("route_id", routeID).Debug("Watcher closed connection.")
			} else {
				logrus.WithError(err).WithField("route_id", routeID).Debug("Watcher read failed.")
			}
			return
		}
	}
}

// Close stops broadcasting and closes every open connection.
func (h *VisitHub) Close() {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, clients := range h.routeClients {
			for conn := range clients {
				conn.Close()
			}
		}
	})
}
