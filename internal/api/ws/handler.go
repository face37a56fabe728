package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 16 << 10
)

// Inbound message types sent by the page script.
const (
	TypeFind   = "find"
	TypeAction = "action"
	TypeKey    = "key"
	TypeWheel  = "wheel"
	TypePing   = "ping"
)

// Inbound is a message from the page script. Only the fields of its type
// are set.
type Inbound struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
	overlay.KeyEvent
	overlay.Wheel
}

// Recorder receives websocket and overlay measurements.
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
	RecordOverlayAction(action string)
}

type nopRecorder struct{}

func (nopRecorder) IncWSConnections()              {}
func (nopRecorder) DecWSConnections()              {}
func (nopRecorder) RecordWSMessage(string, string) {}
func (nopRecorder) RecordOverlayAction(string)     {}

// Handler serves the overlay channel of each view.
type Handler struct {
	views    *render.Manager
	metrics  Recorder
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a handler. Only same-origin pages may connect.
func NewHandler(views *render.Manager, metrics Recorder, logger *zap.Logger) *Handler {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		views:   views,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// conn serializes writes to one websocket.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// HandleConnection upgrades the request and runs the channel for the view
// named by the id parameter.
func (h *Handler) HandleConnection(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.views.Get(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	updates, unsubscribe, err := h.views.Subscribe(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	defer unsubscribe()

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	cn := &conn{ws: ws}
	done := make(chan struct{})
	defer close(done)
	go h.forward(cn, updates, done)

	if view, err := h.views.Get(id); err == nil && view.Overlay != nil {
		h.send(cn, view.Overlay.State()...)
	}

	ws.SetReadLimit(maxMessage)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Inbound
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.String("view", id), zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		if msg.Type == TypePing {
			h.send(cn, overlay.Message{Type: "pong"})
			continue
		}
		msgs, err := h.dispatch(id, msg)
		if err != nil {
			h.send(cn, overlay.ErrorMessage(err))
			continue
		}
		if err := h.views.Publish(id, msgs); err != nil {
			h.send(cn, overlay.ErrorMessage(err))
			return
		}
	}
}

// dispatch applies msg to the view's current overlay.
func (h *Handler) dispatch(id string, msg Inbound) ([]overlay.Message, error) {
	view, err := h.views.Get(id)
	if err != nil {
		return nil, err
	}
	ctrl := view.Overlay
	if ctrl == nil {
		return nil, errors.New("view has no overlay")
	}

	switch msg.Type {
	case TypeFind:
		h.metrics.RecordOverlayAction("find-all")
		return ctrl.Find(msg.Text), nil
	case TypeAction:
		a, err := overlay.ParseAction(msg.Action)
		if err != nil {
			return nil, err
		}
		h.metrics.RecordOverlayAction(string(a))
		return ctrl.Do(a), nil
	case TypeKey:
		if a, ok := ctrl.Keymap().Resolve(msg.KeyEvent); ok {
			h.metrics.RecordOverlayAction(string(a))
		}
		return ctrl.Key(msg.KeyEvent), nil
	case TypeWheel:
		h.metrics.RecordOverlayAction("wheel")
		return ctrl.Wheel(msg.Wheel), nil
	}
	return nil, errors.New("unknown message type")
}

// forward relays view updates until the view closes or done is closed.
func (h *Handler) forward(cn *conn, updates <-chan render.Update, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				cn.write(overlay.Message{Type: overlay.MsgCloseFind})
				cn.ws.Close()
				return
			}
			h.send(cn, u...)
		case <-ticker.C:
			if err := cn.ping(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) send(cn *conn, msgs ...overlay.Message) {
	for _, m := range msgs {
		if err := cn.write(m); err != nil {
			h.logger.Debug("WebSocket write failed", zap.Error(err))
			return
		}
		h.metrics.RecordWSMessage("out", m.Type)
	}
}
