// Package ws relays theme changes to every connected UI island over
// websockets and accepts toggle requests back from them.
package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AhamSammich/dexbee-docs/internal/logging"
	"github.com/AhamSammich/dexbee-docs/internal/monitoring"
	"github.com/AhamSammich/dexbee-docs/internal/shared/id"
	"github.com/AhamSammich/dexbee-docs/internal/theme"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin policy is enforced by CORS on the REST surface
	},
}

// Message is the wire format in both directions.
type Message struct {
	Type   string `json:"type"`
	Theme  string `json:"theme,omitempty"`
	IsDark bool   `json:"isDark"`
}

// Handler manages websocket connections.
type Handler struct {
	store   *theme.Store
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandler creates a websocket handler bound to the theme store.
func NewHandler(store *theme.Store, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// client serializes writes to one connection; theme broadcasts arrive on the
// toggler's goroutine while the read loop may answer pings concurrently.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *client) send(msg Message) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteJSON(msg)
}

// HandleConnection upgrades the request and serves the connection until the
// peer goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cid := id.NewConnID()
	cl := &client{conn: conn}

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	// Every theme change reaches this island; the store guarantees one
	// delivery per logical change.
	unsubscribe := h.store.Subscribe(func(change theme.Change) {
		if err := cl.send(Message{Type: "theme", Theme: change.Theme, IsDark: change.IsDark}); err != nil {
			h.log.Debug("websocket write failed", zap.String("conn", string(cid)), zap.Error(err))
		}
	})
	defer unsubscribe()

	// Current state first, so a late-mounting island paints correctly.
	cl.send(Message{Type: "theme", Theme: h.store.Theme(), IsDark: h.store.IsDark()})

	h.log.Debug("websocket connected", zap.String("conn", string(cid)))

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Debug("websocket closed", zap.String("conn", string(cid)), zap.Error(err))
			return
		}

		switch msg.Type {
		case "toggle_theme":
			h.store.Toggle()
			if h.metrics != nil {
				h.metrics.ThemeToggles.Inc()
			}
		case "ping":
			cl.send(Message{Type: "pong"})
		default:
			cl.send(Message{Type: "error"})
		}
	}
}
