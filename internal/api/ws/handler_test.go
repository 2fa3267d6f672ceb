package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

type serverMessage struct {
	Type    string           `json:"type"`
	Frame   compositor.Frame `json:"frame"`
	Seq     uint64           `json:"seq"`
	Command string           `json:"command"`
	Error   string           `json:"error"`
	ConnID  string           `json:"conn_id"`
}

type fixture struct {
	srv     *httptest.Server
	metrics *monitoring.Metrics
	stop    func()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := session.New(session.Options{Viewport: types.Size{Width: 1920, Height: 1080}})
	loop := session.NewLoop(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	metrics := monitoring.NewMetrics()
	router := gin.New()
	router.GET("/stream", NewHandler(loop, metrics, nil, Options{}).HandleConnection)
	srv := httptest.NewServer(router)

	stopped := false
	stopLoop := func() {
		if !stopped {
			stopped = true
			cancel()
			<-errc
		}
	}
	return &fixture{srv: srv, metrics: metrics, stop: func() {
		stopLoop()
		srv.Close()
	}}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(v)))
}

// readUntil skips messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(serverMessage) bool) serverMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg serverMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

func readNext(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	return readUntil(t, conn, func(serverMessage) bool { return true })
}

func ofType(kind string) func(serverMessage) bool {
	return func(m serverMessage) bool { return m.Type == kind }
}

func TestHandlerStreamsFramesAndAcks(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	defer f.stop()

	conn := f.dial(t)
	defer conn.Close()

	hello := readNext(t, conn)
	require.Equal(t, "system", hello.Type, "welcome precedes every frame")
	assert.True(t, strings.HasPrefix(hello.ConnID, "conn_"), hello.ConnID)
	first := readNext(t, conn)
	assert.Equal(t, "frame", first.Type)

	sendJSON(t, conn, `{"type":"ping"}`)
	readUntil(t, conn, ofType("pong"))

	sendJSON(t, conn, `{"type":"command","command":"open","app":"Terminal"}`)

	// The frame reflecting a command may arrive before or after its ack.
	var ack *serverMessage
	var latest compositor.Frame
	readUntil(t, conn, func(m serverMessage) bool {
		switch m.Type {
		case "ack":
			ack = &m
		case "frame":
			if m.Frame.Seq >= latest.Seq {
				latest = m.Frame
			}
		}
		return ack != nil && latest.Seq >= ack.Seq
	})
	assert.Equal(t, "open", ack.Command)

	layer, ok := latest.Layer(types.Terminal)
	require.True(t, ok)
	assert.Equal(t, 560.0, layer.X)

	assert.Equal(t, int64(1), f.metrics.Snapshot().ActiveConnections)
}

func TestHandlerReportsCommandErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	defer f.stop()

	conn := f.dial(t)
	defer conn.Close()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: `{"type":"command","command":"explode"}`, want: "unknown command"},
		{raw: `{"type":"command","command":"open","app":"Notepad"}`, want: "unknown app"},
		{raw: `{"type":"command","command":"workspace","index":7}`, want: ErrBadWorkspace.Error()},
		{raw: `{"type":"command","command":"snap","key":"z"}`, want: "unknown snap key"},
		{raw: `{"type":"command","command":"input","app":"Editor","payload":{"text":"x"}}`, want: "app not registered"},
		{raw: `{"type":"shout"}`, want: "unknown message type"},
		{raw: `not json`, want: "invalid message"},
	}

	for _, tt := range tests {
		sendJSON(t, conn, tt.raw)
		msg := readUntil(t, conn, ofType("error"))
		assert.Contains(t, msg.Error, tt.want, tt.raw)
	}
}

func TestHandlerClosesWhenSessionStops(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	defer f.stop()

	conn := f.dial(t)
	defer conn.Close()
	readUntil(t, conn, ofType("frame"))

	f.stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
			break
		}
	}
	assert.Eventually(t, func() bool {
		return f.metrics.Snapshot().ActiveConnections == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCommandMessage(t *testing.T) {
	tests := []struct {
		cmd  Command
		want host.Msg
	}{
		{cmd: Command{Command: "close", App: "Browser"}, want: session.CloseBrowser{}},
		{cmd: Command{Command: "close", App: "Terminal"}, want: session.CloseApp{App: types.Terminal}},
		{cmd: Command{Command: "toggle", App: "cortex"}, want: session.ToggleApp{App: types.Cortex}},
		{cmd: Command{Command: "snap", Key: "ArrowLeft"}, want: session.SnapFocused{Key: types.SnapLeft}},
		{cmd: Command{Command: "persona", Persona: "SmartHome"}, want: session.SwitchPersona{Persona: types.PersonaSmartHome}},
		{cmd: Command{Command: "pointer", Event: "down", App: "Editor", Region: "title", X: 1, Y: 2},
			want: session.PointerDown{App: types.Editor, Region: session.RegionTitle, X: 1, Y: 2}},
		{cmd: Command{Command: "pointer", Event: "down", App: "Editor"},
			want: session.PointerDown{App: types.Editor, Region: session.RegionBody}},
		{cmd: Command{Command: "action", Kind: "close_browser", App: "Browser"}, want: session.CloseBrowser{}},
		{cmd: Command{Command: "dismiss", ID: 3}, want: session.DismissNotification{ID: 3}},
		{cmd: Command{Command: "viewport", Width: 800, Height: 600}, want: session.SetViewport{Size: types.Size{Width: 800, Height: 600}}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Command, func(t *testing.T) {
			got, err := tt.cmd.message()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Command{Command: "viewport"}.message()
	assert.Error(t, err)
	_, err = Command{Command: "pointer", Event: "wheel"}.message()
	assert.Error(t, err)
}
