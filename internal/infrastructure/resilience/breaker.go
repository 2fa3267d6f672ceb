package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrCircuitOpen is returned while the breaker refuses calls.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrProbeInFlight is returned while half-open and every probe slot is taken.
	ErrProbeInFlight = errors.New("circuit breaker probe in flight")
)

// State is the position of a Breaker.
type State uint8

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

var stateNames = [...]string{"closed", "half-open", "open"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Settings tune a Breaker. Zero values pick the defaults noted per field.
type Settings struct {
	Threshold int           // consecutive failures that open the breaker, default 5
	Cooldown  time.Duration // time spent open before probing, default 30s
	Probes    int           // successful probes needed to close, default 1

	// Failure classifies an outcome. By default any error except
	// cancellation is a failure.
	Failure func(err error) bool

	// OnTransition observes every state change. It runs with the breaker
	// locked and must not call back into it.
	OnTransition func(Transition)
}

// Transition describes one state change.
type Transition struct {
	Name     string
	From, To State
	At       time.Time
}

// Stats are the outcomes recorded since the last state change.
type Stats struct {
	Successes   int
	Failures    int
	Consecutive int // failures in a row while closed, successes in a row while half-open
}

// Breaker refuses calls to a dependency after it keeps failing, then lets
// a few probes through once the cooldown has passed.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	stats    Stats
	openedAt time.Time
	inflight int
	epoch    uint64
}

// New returns a closed breaker.
func New(name string, s Settings) *Breaker {
	if s.Threshold <= 0 {
		s.Threshold = 5
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.Probes <= 0 {
		s.Probes = 1
	}
	if s.Failure == nil {
		s.Failure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}
	return &Breaker{name: name, settings: s, now: time.Now}
}

func (b *Breaker) Name() string { return b.name }

// State reports the current state, moving open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick(b.now())
	return b.state
}

func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Guard runs fn when the breaker admits it.
func (b *Breaker) Guard(fn func() error) error {
	_, err := Call(b, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// Call runs fn when b admits it and records the outcome. A panic in fn is
// recorded as a failure and re-raised.
func Call[T any](b *Breaker, fn func() (T, error)) (res T, err error) {
	epoch, err := b.enter()
	if err != nil {
		return res, err
	}

	done := false
	defer func() {
		if !done {
			b.leave(epoch, true)
		}
	}()
	res, err = fn()
	done = true
	b.leave(epoch, b.settings.Failure(err))
	return res, err
}

func (b *Breaker) enter() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tick(b.now())
	switch b.state {
	case StateOpen:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if b.inflight >= b.settings.Probes {
			return 0, ErrProbeInFlight
		}
		b.inflight++
	}
	return b.epoch, nil
}

func (b *Breaker) leave(epoch uint64, failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if epoch != b.epoch {
		return
	}
	now := b.now()
	if b.state == StateHalfOpen {
		b.inflight--
	}

	if failed {
		b.stats.Failures++
		switch b.state {
		case StateClosed:
			b.stats.Consecutive++
			if b.stats.Consecutive >= b.settings.Threshold {
				b.move(StateOpen, now)
			}
		case StateHalfOpen:
			b.move(StateOpen, now)
		}
		return
	}

	b.stats.Successes++
	switch b.state {
	case StateClosed:
		b.stats.Consecutive = 0
	case StateHalfOpen:
		b.stats.Consecutive++
		if b.stats.Consecutive >= b.settings.Probes {
			b.move(StateClosed, now)
		}
	}
}

// tick applies the cooldown. Caller holds mu.
func (b *Breaker) tick(now time.Time) {
	if b.state == StateOpen && !now.Before(b.openedAt.Add(b.settings.Cooldown)) {
		b.move(StateHalfOpen, now)
	}
}

// move changes state and starts a new epoch so outcomes of calls admitted
// earlier are dropped. Caller holds mu.
func (b *Breaker) move(to State, now time.Time) {
	from := b.state
	b.state = to
	b.stats = Stats{}
	b.inflight = 0
	b.epoch++
	if to == StateOpen {
		b.openedAt = now
	}
	if b.settings.OnTransition != nil {
		b.settings.OnTransition(Transition{Name: b.name, From: from, To: to, At: now})
	}
}
