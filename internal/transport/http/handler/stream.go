package handler

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/domain"
	"motorvault-api/internal/feed"
	"motorvault-api/internal/filter"
	"motorvault-api/internal/transport/http/response"
	"motorvault-api/pkg/apierror"
)

// StreamHandler pushes live catalog snapshots over websockets: the public
// filtered view for visitors, the full inventory for the operator console.
type StreamHandler struct {
	feed     *feed.Feed
	provider auth.Provider
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(f *feed.Feed, provider auth.Provider) *StreamHandler {
	return &StreamHandler{
		feed:     f,
		provider: provider,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origin policy is handled by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StreamFrame is one websocket message: a snapshot or a terminal error.
type StreamFrame struct {
	Type  string             `json:"type"` // "snapshot" or "error"
	Cars  []domain.Car       `json:"cars,omitempty"`
	Total int                `json:"total,omitempty"`
	Error *apierror.APIError `json:"error,omitempty"`
}

// wsClient serializes writes to one connection; feed notifications and the
// guard's deny callback arrive on different goroutines.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) send(frame StreamFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(frame)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.Close()
}

// Catalog handles GET /api/v1/cars/stream (websocket).
// Pushes the filtered snapshot on connect and after every feed update.
// Criteria come from the q and max_price query parameters and are fixed
// for the connection's lifetime.
func (h *StreamHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	criteria := filter.Criteria{
		Search:   r.URL.Query().Get("q"),
		MaxPrice: r.URL.Query().Get("max_price"),
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Stream] upgrade failed: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	defer client.close()

	h.run(client, func(cars []domain.Car) StreamFrame {
		view := filter.Apply(cars, criteria)
		return StreamFrame{Type: "snapshot", Cars: view, Total: len(view)}
	})
}

// Console handles GET /api/v1/admin/stream (websocket).
// The session token rides in the token query parameter (browsers cannot
// set headers on websocket dials). A session guard follows the token for
// the connection's lifetime: signing out elsewhere drops the stream.
func (h *StreamHandler) Console(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Error(w, apierror.Unauthorized("Authentication required"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Stream] upgrade failed: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	defer client.close()

	guard := auth.NewGuard(h.provider, token, func() {
		client.send(StreamFrame{Type: "error", Error: apierror.Unauthorized("Session ended")})
		client.close()
	})
	defer guard.Stop()

	guard.Start(r.Context())
	if guard.State() != auth.StateAuthenticated {
		// Guard already sent the error frame via onDeny.
		return
	}

	h.run(client, func(cars []domain.Car) StreamFrame {
		return StreamFrame{Type: "snapshot", Cars: cars, Total: len(cars)}
	})
}

// run wires the client to the feed and blocks until the peer disconnects
// or the subscription dies. Observer registrations are released on every
// exit path.
func (h *StreamHandler) run(client *wsClient, frame func(cars []domain.Car) StreamFrame) {
	unsubUpdate := h.feed.OnUpdate(func(cars []domain.Car) {
		if err := client.send(frame(cars)); err != nil {
			client.close()
		}
	})
	defer unsubUpdate()

	unsubError := h.feed.OnError(func(err error) {
		client.send(StreamFrame{Type: "error", Error: apierror.Subscription(err.Error())})
		client.close()
	})
	defer unsubError()

	if err := h.feed.Err(); err != nil {
		client.send(StreamFrame{Type: "error", Error: apierror.Subscription(err.Error())})
		return
	}
	if err := client.send(frame(h.feed.Snapshot())); err != nil {
		return
	}

	// Block until the peer goes away; inbound frames are ignored.
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
