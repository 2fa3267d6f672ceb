package session

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/compositor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

const inboxSize = 256

type envelope struct {
	msg   host.Msg
	fn    func(*Session) error
	reply chan result
}

type result struct {
	frame compositor.Frame
	err   error
}

// Loop serializes all access to a Session through one goroutine. Commands
// returned by updates run in their own goroutines and post back to the inbox.
type Loop struct {
	session *Session
	log     *logging.Logger
	inbox   chan envelope
	done    chan struct{}
	current atomic.Pointer[compositor.Frame]

	ctx    context.Context
	cancel context.CancelFunc
	cmds   sync.WaitGroup

	subsMu sync.Mutex
	subs   map[int]chan compositor.Frame
	nextID int

	running atomic.Bool
}

// NewLoop wraps s. The loop becomes the session's stream dispatcher.
func NewLoop(s *Session, log *logging.Logger) *Loop {
	if log == nil {
		log = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		session: s,
		log:     log.Named("loop"),
		inbox:   make(chan envelope, inboxSize),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[int]chan compositor.Frame),
	}
	s.SetDispatch(func(m host.Msg) { l.Send(m) })
	frame := s.Frame()
	l.current.Store(&frame)
	return l
}

// Run processes messages until ctx is done, then closes the session.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.shutdown()

	l.session.Init()
	l.publish(l.session.Frame())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-l.inbox:
			l.handle(env)
		}
	}
}

func (l *Loop) handle(env envelope) {
	var err error
	if env.fn != nil {
		err = env.fn(l.session)
	}
	if env.msg != nil {
		l.run(l.session.Update(env.msg))
	}
	frame := l.session.Frame()
	l.publish(frame)
	if env.reply != nil {
		env.reply <- result{frame: frame, err: err}
	}
}

func (l *Loop) run(cmd host.Cmd) {
	if cmd == nil {
		return
	}
	l.cmds.Add(1)
	go func() {
		defer l.cmds.Done()
		cmd(l.ctx, func(m host.Msg) { l.Send(m) })
	}()
}

func (l *Loop) shutdown() {
	close(l.done)
	l.cancel()
	if err := l.session.Close(); err != nil {
		l.log.Warn("session close failed", zap.Error(err))
	}
	l.cmds.Wait()

	l.subsMu.Lock()
	for id, ch := range l.subs {
		close(ch)
		delete(l.subs, id)
	}
	l.subsMu.Unlock()
}

// Send enqueues msg without waiting. It reports false once the loop stopped.
func (l *Loop) Send(msg host.Msg) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- envelope{msg: msg}:
		return true
	case <-l.done:
		return false
	}
}

// Call applies msg and returns the frame that reflects it.
func (l *Loop) Call(ctx context.Context, msg host.Msg) (compositor.Frame, error) {
	return l.submit(ctx, envelope{msg: msg})
}

// Do runs fn on the loop goroutine with exclusive access to the session and
// returns the resulting frame. An error from fn is returned with the frame.
func (l *Loop) Do(ctx context.Context, fn func(*Session) error) (compositor.Frame, error) {
	return l.submit(ctx, envelope{fn: fn})
}

// DoUpdate runs fn on the loop goroutine and applies the message it returns.
func (l *Loop) DoUpdate(ctx context.Context, fn func(*Session) (host.Msg, error)) (compositor.Frame, error) {
	var msg host.Msg
	frame, err := l.Do(ctx, func(s *Session) error {
		m, err := fn(s)
		if err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil || msg == nil {
		return frame, err
	}
	return l.Call(ctx, msg)
}

// Input decodes raw for app id on the loop goroutine and applies it. The
// resulting command runs like any other.
func (l *Loop) Input(ctx context.Context, id types.AppID, raw []byte) (compositor.Frame, error) {
	return l.Do(ctx, func(s *Session) error {
		cmd, err := s.Input(id, raw)
		l.run(cmd)
		return err
	})
}

func (l *Loop) submit(ctx context.Context, env envelope) (compositor.Frame, error) {
	env.reply = make(chan result, 1)
	select {
	case l.inbox <- env:
	case <-l.done:
		return compositor.Frame{}, ErrClosed
	case <-ctx.Done():
		return compositor.Frame{}, ctx.Err()
	}
	select {
	case r := <-env.reply:
		return r.frame, r.err
	case <-l.done:
		return compositor.Frame{}, ErrClosed
	case <-ctx.Done():
		return compositor.Frame{}, ctx.Err()
	}
}

// Frame returns the most recently published frame.
func (l *Loop) Frame() compositor.Frame {
	return *l.current.Load()
}

// Subscribe returns a channel that always holds the latest frame. Slow
// readers skip intermediate frames. The channel closes when the loop stops.
func (l *Loop) Subscribe() (<-chan compositor.Frame, func()) {
	ch := make(chan compositor.Frame, 1)
	ch <- l.Frame()

	l.subsMu.Lock()
	select {
	case <-l.done:
		l.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	l.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.subsMu.Lock()
			defer l.subsMu.Unlock()
			if c, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(c)
			}
		})
	}
}

func (l *Loop) publish(frame compositor.Frame) {
	l.current.Store(&frame)

	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- frame
	}
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
