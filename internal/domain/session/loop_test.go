package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

func startLoop(t *testing.T, s *Session) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	loop := NewLoop(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()
	return loop, cancel, errc
}

func TestLoopCallReturnsFrame(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(Options{Viewport: types.Size{Width: 1920, Height: 1080}})
	loop, cancel, errc := startLoop(t, s)

	frame, err := loop.Call(context.Background(), OpenApp{App: types.Terminal})
	require.NoError(t, err)
	layer, ok := frame.Layer(types.Terminal)
	require.True(t, ok)
	assert.Equal(t, 560.0, layer.X)
	assert.Equal(t, frame.Seq, loop.Frame().Seq)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	_, err = loop.Call(context.Background(), ToggleReveal{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, loop.Send(ToggleReveal{}))
}

func TestLoopFeedsStreamOutputBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(Options{})
	app := &tickerApp{title: "ticker"}
	require.NoError(t, s.Register(types.Cortex, host.Host[tickerMsg](types.Cortex, app)))
	loop, cancel, errc := startLoop(t, s)

	_, err := loop.Call(context.Background(), OpenApp{App: types.Cortex})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		var n int
		_, err := loop.Do(context.Background(), func(*Session) error {
			n = app.count
			return nil
		})
		return err == nil && n > 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-errc
	assert.True(t, app.closed)
}

func TestLoopSubscribeLatestWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop, cancel, errc := startLoop(t, New(Options{}))
	frames, unsubscribe := loop.Subscribe()

	for i := 0; i < 5; i++ {
		_, err := loop.Call(context.Background(), ToggleDock{})
		require.NoError(t, err)
	}

	var last uint64
	timeout := time.After(2 * time.Second)
	for last < 5 {
		select {
		case f := <-frames:
			last = f.Seq
		case <-timeout:
			t.Fatalf("stuck at seq %d", last)
		}
	}
	unsubscribe()
	unsubscribe()

	cancel()
	<-errc
}

func TestLoopSubscriptionClosesOnShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop, cancel, errc := startLoop(t, New(Options{}))
	frames, _ := loop.Subscribe()

	cancel()
	<-errc

	for range frames {
	}
	_, open := <-frames
	assert.False(t, open)
}

func TestLoopDoReturnsError(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop, cancel, errc := startLoop(t, New(Options{}))
	defer func() {
		cancel()
		<-errc
	}()

	boom := errors.New("boom")
	_, err := loop.Do(context.Background(), func(*Session) error { return boom })
	assert.ErrorIs(t, err, boom)

	frame, err := loop.DoUpdate(context.Background(), func(s *Session) (host.Msg, error) {
		return OpenApp{App: types.Editor}, nil
	})
	require.NoError(t, err)
	_, ok := frame.Layer(types.Editor)
	assert.True(t, ok)
}

func TestLoopCommandsPostBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(Options{})
	loop, cancel, errc := startLoop(t, s)
	defer func() {
		cancel()
		<-errc
	}()

	// A raw command run through the loop posts its messages to the inbox.
	_, err := loop.Do(context.Background(), func(*Session) error {
		loop.run(host.Emit[host.Msg](OpenApp{App: types.Store}))
		return nil
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := loop.Frame().Layer(types.Store)
		return ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoopCallHonoursContext(t *testing.T) {
	loop := NewLoop(New(Options{}), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	for i := 0; i < inboxSize; i++ {
		loop.Send(ToggleDock{})
	}
	_, err := loop.Call(ctx, ToggleDock{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// inputApp records decoded input and echoes it once through a command.
type inputApp struct{ got []string }

func (a *inputApp) Title() string { return "Input" }

func (a *inputApp) Update(msg string, _ host.ShellContext) host.Task[string] {
	a.got = append(a.got, msg)
	if !strings.HasSuffix(msg, "!") {
		return host.Emit(msg + "!")
	}
	return nil
}

func (a *inputApp) View(types.Theme) host.Node { return host.Text(strings.Join(a.got, ",")) }

func (a *inputApp) Stream() host.Stream[string] { return nil }

func (a *inputApp) Decode(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("empty input")
	}
	return string(raw), nil
}

func TestLoopInputRunsCommand(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(Options{})
	app := &inputApp{}
	require.NoError(t, s.Register(types.Editor, host.Host[string](types.Editor, app)))
	loop, cancel, errc := startLoop(t, s)
	defer func() {
		cancel()
		<-errc
	}()

	_, err := loop.Input(context.Background(), types.Editor, []byte("hi"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		var n int
		_, _ = loop.Do(context.Background(), func(*Session) error {
			n = len(app.got)
			return nil
		})
		return n == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"hi", "hi!"}, app.got)

	_, err = loop.Input(context.Background(), types.Editor, nil)
	assert.EqualError(t, err, "failed to decode input for Editor: empty input")

	_, err = loop.Input(context.Background(), types.Browser, []byte("x"))
	assert.ErrorIs(t, err, registry.ErrUnknownApp)
}
