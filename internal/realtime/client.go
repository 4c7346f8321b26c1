package realtime

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pairline/backend/internal/matchmaking"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Matchmaker is the part of the coordinator a connection talks to.
type Matchmaker interface {
	Connect(id string, out matchmaking.Outbox)
	SetIdentity(id, name string)
	EnterQueue(id string)
	LeaveQueue(id string)
	LeaveRoom(id string)
	ForgetSkips(id string)
	Relay(id, event string, payload []byte)
	Disconnect(id string)
}

// Options holds per-connection transport settings.
type Options struct {
	PingInterval    time.Duration
	PingTimeout     time.Duration
	MaxMessageBytes int64
	// CheckOrigin decides whether an upgrade from origin is allowed; nil allows all.
	CheckOrigin func(origin string) bool
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 20 * time.Second
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 65536
	}
	return o
}

// Client is one WebSocket connection and the matchmaking session behind it.
type Client struct {
	ID     string
	mm     Matchmaker
	hub    *Hub
	conn   *websocket.Conn
	send   chan WSMessage
	done   chan struct{}
	opts   Options
	logger *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(mm Matchmaker, hub *Hub, opts Options, logger *zap.Logger) gin.HandlerFunc {
	opts = opts.withDefaults()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return opts.CheckOrigin == nil || opts.CheckOrigin(r.Header.Get("Origin"))
		},
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		id := uuid.NewString()
		client := &Client{
			ID:     id,
			mm:     mm,
			hub:    hub,
			conn:   conn,
			send:   make(chan WSMessage, sendBufferSize),
			done:   make(chan struct{}),
			opts:   opts,
			logger: logger.With(zap.String("session_id", id)),
		}
		hub.Register(client)
		mm.Connect(id, client)
		client.logger.Info("client connected", zap.String("remote_addr", c.ClientIP()))

		go client.writePump()
		client.readPump()
	}
}

// Deliver queues an event for the write pump. It never blocks; when the buffer is full the event is dropped.
func (c *Client) Deliver(event string, payload interface{}) {
	var data json.RawMessage
	switch v := payload.(type) {
	case nil:
	case json.RawMessage:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			c.logger.Error("encode event", zap.String("event", event), zap.Error(err))
			return
		}
		data = b
	}

	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- WSMessage{Event: event, Data: data}:
	default:
		c.logger.Warn("send buffer full, dropping event", zap.String("event", event))
	}
}

func (c *Client) readPump() {
	defer func() {
		c.mm.Disconnect(c.ID)
		c.hub.Unregister(c)
		close(c.done)
		_ = c.conn.Close()
	}()

	deadline := c.opts.PingInterval + c.opts.PingTimeout
	c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Info("client disconnected", zap.String("reason", closeReason(err)))
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("malformed message", zap.Error(err))
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg WSMessage) {
	switch msg.Event {
	case matchmaking.EventSetIdentity:
		var payload struct {
			Name string `json:"name"`
		}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				c.logger.Warn("malformed set-identity", zap.Error(err))
				return
			}
		}
		c.mm.SetIdentity(c.ID, payload.Name)
	case matchmaking.EventEnterQueue:
		c.mm.EnterQueue(c.ID)
	case matchmaking.EventLeaveQueue:
		c.mm.LeaveQueue(c.ID)
	case matchmaking.EventLeaveRoom:
		c.mm.LeaveRoom(c.ID)
	case matchmaking.EventForgetSkips:
		c.mm.ForgetSkips(c.ID)
	case matchmaking.EventOffer, matchmaking.EventAnswer, matchmaking.EventCandidate:
		c.mm.Relay(c.ID, msg.Event, msg.Data)
	default:
		c.logger.Debug("ignoring unknown event", zap.String("event", msg.Event))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close sends a going-away close frame; the read pump then runs the normal disconnect path.
func (c *Client) Close() {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
	_ = c.conn.Close()
}

// closeReason classifies a read error for logging.
func closeReason(err error) string {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return "ping timeout"
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		return "client closed"
	default:
		return "transport error"
	}
}
