package host

import (
	"context"
	"sync"
)

// Msg is any shell-wide message.
type Msg interface{}

// Task is a one-shot unit of work run off the update loop. It reports back
// zero or more messages through emit.
type Task[M any] func(ctx context.Context, emit func(M))

// Stream is a long-lived producer that runs until ctx is done or its source
// is exhausted.
type Stream[M any] func(ctx context.Context, emit func(M))

// Cmd is a task producing shell messages.
type Cmd = Task[Msg]

// Sub is a stream producing shell messages.
type Sub = Stream[Msg]

// Emit returns a task that reports msgs immediately.
func Emit[M any](msgs ...M) Task[M] {
	if len(msgs) == 0 {
		return nil
	}
	return func(_ context.Context, emit func(M)) {
		for _, m := range msgs {
			emit(m)
		}
	}
}

// MapTask lifts the messages of t through f. A nil task stays nil.
func MapTask[M any](t Task[M], f func(M) Msg) Cmd {
	if t == nil {
		return nil
	}
	return func(ctx context.Context, emit func(Msg)) {
		t(ctx, func(m M) { emit(f(m)) })
	}
}

// MapStream lifts the messages of s through f. A nil stream stays nil.
func MapStream[M any](s Stream[M], f func(M) Msg) Sub {
	if s == nil {
		return nil
	}
	return func(ctx context.Context, emit func(Msg)) {
		s(ctx, func(m M) { emit(f(m)) })
	}
}

// Batch runs cmds concurrently and returns once all of them have finished.
// Nil commands are skipped; Batch of nothing is nil.
func Batch(cmds ...Cmd) Cmd {
	valid := make([]Cmd, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return func(ctx context.Context, emit func(Msg)) {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		locked := func(m Msg) {
			mu.Lock()
			defer mu.Unlock()
			emit(m)
		}
		for _, c := range valid {
			wg.Add(1)
			go func(c Cmd) {
				defer wg.Done()
				c(ctx, locked)
			}(c)
		}
		wg.Wait()
	}
}

// Collect runs cmd synchronously and returns everything it emitted.
func Collect(ctx context.Context, cmd Cmd) []Msg {
	if cmd == nil {
		return nil
	}
	var (
		mu  sync.Mutex
		out []Msg
	)
	cmd(ctx, func(m Msg) {
		mu.Lock()
		out = append(out, m)
		mu.Unlock()
	})
	return out
}
