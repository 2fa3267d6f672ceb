package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/id"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 * 1024
	outboxSize     = 16
)

// Options configures the handler. Zero values fall back to defaults.
type Options struct {
	PingPeriod time.Duration
	PongWait   time.Duration
	// CheckOrigin defaults to allowing every origin.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests and serves shell clients.
type Handler struct {
	loop     *session.Loop
	metrics  *monitoring.Metrics
	log      *logging.Logger
	upgrader websocket.Upgrader
	opts     Options
}

// NewHandler creates a handler over loop. metrics may be nil.
func NewHandler(loop *session.Loop, metrics *monitoring.Metrics, log *logging.Logger, opts Options) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	if opts.PongWait <= 0 {
		opts.PongWait = pongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = opts.PongWait * 9 / 10
	}
	if opts.CheckOrigin == nil {
		opts.CheckOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		loop:    loop,
		metrics: metrics,
		log:     log.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		opts: opts,
	}
}

type clientMessage struct {
	Type string `json:"type"`
	Command
}

type frameMessage struct {
	Type  string           `json:"type"`
	Frame compositor.Frame `json:"frame"`
}

type ackMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Seq     uint64 `json:"seq"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

type systemMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	ConnID  string `json:"conn_id,omitempty"`
}

// HandleConnection upgrades the request and serves the client until either
// side closes or the session stops.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:      id.NewConnID(),
		h:       h,
		conn:    conn,
		out:     make(chan []byte, outboxSize),
		stopped: make(chan struct{}),
	}
	cl.log = h.log.With(zap.String("conn_id", cl.id.String()))
	cl.serve(c.Request.Context())
}

type client struct {
	id      id.ConnID
	h       *Handler
	conn    *websocket.Conn
	log     *logging.Logger
	out     chan []byte
	stopped chan struct{}
}

func (cl *client) serve(ctx context.Context) {
	if m := cl.h.metrics; m != nil {
		m.IncWSConnections()
		defer m.DecWSConnections()
	}
	cl.log.Debug("Client connected")

	// The welcome goes out before the writer starts so it always precedes
	// the first frame.
	hello, err := sonic.Marshal(systemMessage{Type: "system", Message: "Connected to PeakOS shell", ConnID: cl.id.String()})
	if err != nil || !cl.write(websocket.TextMessage, hello) {
		_ = cl.conn.Close()
		return
	}
	cl.record("out", "system")

	frames, unsubscribe := cl.h.loop.Subscribe()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cl.writeLoop(frames, done)
	}()

	cl.readLoop(ctx)

	close(done)
	unsubscribe()
	wg.Wait()
	_ = cl.conn.Close()
	cl.log.Debug("Client disconnected")
}

func (cl *client) readLoop(ctx context.Context) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(cl.h.opts.PongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(cl.h.opts.PongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.log.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cl.record("in", "invalid")
			cl.send("error", errorMessage{Type: "error", Error: "invalid message: " + err.Error()})
			continue
		}
		switch msg.Type {
		case "ping":
			cl.record("in", "ping")
			cl.send("pong", systemMessage{Type: "pong"})
		case "command":
			cl.record("in", "command")
			cl.command(ctx, msg.Command)
		default:
			cl.record("in", "unknown")
			cl.send("error", errorMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

func (cl *client) command(ctx context.Context, cmd Command) {
	frame, err := cmd.Apply(ctx, cl.h.loop)
	if err != nil {
		cl.send("error", errorMessage{Type: "error", Command: cmd.Command, Error: err.Error()})
		return
	}
	cl.send("ack", ackMessage{Type: "ack", Command: cmd.Command, Seq: frame.Seq})
}

// send queues v for the writer. It gives up once the writer has stopped.
func (cl *client) send(kind string, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		cl.log.Error("Failed to encode message", zap.String("type", kind), zap.Error(err))
		return
	}
	select {
	case cl.out <- data:
		cl.record("out", kind)
	case <-cl.stopped:
	}
}

func (cl *client) writeLoop(frames <-chan compositor.Frame, done <-chan struct{}) {
	defer close(cl.stopped)
	ticker := time.NewTicker(cl.h.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				cl.closeWith(websocket.CloseGoingAway, "shell stopped")
				return
			}
			data, err := sonic.Marshal(frameMessage{Type: "frame", Frame: frame})
			if err != nil {
				cl.log.Error("Failed to encode frame", zap.Error(err))
				continue
			}
			if !cl.write(websocket.TextMessage, data) {
				return
			}
			cl.record("out", "frame")
		case data := <-cl.out:
			if !cl.write(websocket.TextMessage, data) {
				return
			}
		case <-ticker.C:
			if !cl.write(websocket.PingMessage, nil) {
				return
			}
		case <-done:
			return
		}
	}
}

// write sends one message. On failure the connection is closed so the
// reader returns too.
func (cl *client) write(kind int, data []byte) bool {
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := cl.conn.WriteMessage(kind, data); err != nil {
		cl.log.Debug("WebSocket write failed", zap.Error(err))
		_ = cl.conn.Close()
		return false
	}
	return true
}

func (cl *client) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = cl.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = cl.conn.Close()
}

func (cl *client) record(direction, kind string) {
	if m := cl.h.metrics; m != nil {
		m.RecordWSMessage(direction, kind)
	}
}
