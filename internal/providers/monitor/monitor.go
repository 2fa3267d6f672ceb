package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

const (
	// DefaultInterval is the sampling period.
	DefaultInterval = time.Second

	// MaxSamples bounds the sample history.
	MaxSamples = 60

	mib = 1024 * 1024
)

// ErrUnknownCommand is returned by Decode for unrecognized input.
var ErrUnknownCommand = errors.New("unknown monitor command")

// Msg is the monitor's private message type.
type Msg interface{ monitorMsg() }

// Sampled delivers one runtime sample.
type Sampled struct{ Sample Sample }

// Reset drops the sample history.
type Reset struct{}

func (Sampled) monitorMsg() {}
func (Reset) monitorMsg()   {}

// Sample is a point-in-time reading of runtime statistics.
type Sample struct {
	At          time.Time `json:"at"`
	HeapAlloc   uint64    `json:"heap_alloc_bytes"`
	HeapObjects uint64    `json:"heap_objects"`
	Goroutines  int       `json:"goroutines"`
	NumGC       uint32    `json:"num_gc"`
}

// Sampler produces a sample.
type Sampler func() Sample

// ReadRuntime samples the current process.
func ReadRuntime() Sample {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return Sample{
		At:          time.Now(),
		HeapAlloc:   memStats.HeapAlloc,
		HeapObjects: memStats.HeapObjects,
		Goroutines:  runtime.NumGoroutine(),
		NumGC:       memStats.NumGC,
	}
}

// Summary aggregates the sample history.
type Summary struct {
	Count           int     `json:"count"`
	HeapMean        float64 `json:"heap_mean_bytes"`
	HeapStdDev      float64 `json:"heap_stddev_bytes"`
	GoroutineMean   float64 `json:"goroutine_mean"`
	GoroutineStdDev float64 `json:"goroutine_stddev"`
	Last            Sample  `json:"last"`
}

// Monitor is the hosted Cortex app.
type Monitor struct {
	interval time.Duration
	sample   Sampler
	samples  []Sample
}

// New creates a monitor sampling the runtime every interval.
func New(interval time.Duration) *Monitor {
	return NewWithSampler(interval, ReadRuntime)
}

// NewWithSampler creates a monitor with a custom sample source.
func NewWithSampler(interval time.Duration, sampler Sampler) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sampler == nil {
		sampler = ReadRuntime
	}
	return &Monitor{interval: interval, sample: sampler}
}

func (m *Monitor) Title() string {
	return "Cortex"
}

func (m *Monitor) Update(msg Msg, _ host.ShellContext) host.Task[Msg] {
	switch msg := msg.(type) {
	case Sampled:
		m.samples = append(m.samples, msg.Sample)
		if over := len(m.samples) - MaxSamples; over > 0 {
			m.samples = append(m.samples[:0:0], m.samples[over:]...)
		}
	case Reset:
		m.samples = nil
	}
	return nil
}

// Samples returns a copy of the history, oldest first.
func (m *Monitor) Samples() []Sample {
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Summary computes statistics over the history.
func (m *Monitor) Summary() Summary {
	n := len(m.samples)
	if n == 0 {
		return Summary{}
	}

	heap := make([]float64, n)
	goroutines := make([]float64, n)
	for i, s := range m.samples {
		heap[i] = float64(s.HeapAlloc)
		goroutines[i] = float64(s.Goroutines)
	}

	sum := Summary{Count: n, Last: m.samples[n-1]}
	sum.HeapMean, sum.HeapStdDev = meanStdDev(heap)
	sum.GoroutineMean, sum.GoroutineStdDev = meanStdDev(goroutines)
	return sum
}

func meanStdDev(xs []float64) (float64, float64) {
	mean, std := stat.MeanStdDev(xs, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

func (m *Monitor) View(theme types.Theme) host.Node {
	sum := m.Summary()
	if sum.Count == 0 {
		return host.Column(host.Text("Collecting samples...").WithProp("color", theme.Text))
	}

	return host.Column(
		host.Text(fmt.Sprintf("Heap: %.1f MiB (mean %.1f ± %.1f)",
			float64(sum.Last.HeapAlloc)/mib, sum.HeapMean/mib, sum.HeapStdDev/mib)),
		host.Text(fmt.Sprintf("Goroutines: %d (mean %.1f ± %.1f)",
			sum.Last.Goroutines, sum.GoroutineMean, sum.GoroutineStdDev)),
		host.Text(fmt.Sprintf("GC cycles: %d", sum.Last.NumGC)),
		host.Row(
			host.Text(fmt.Sprintf("%d samples", sum.Count)).WithProp("color", theme.Accent),
			host.Button("Reset", Reset{}),
		),
	)
}

// Stream emits a sample immediately and then once per interval.
func (m *Monitor) Stream() host.Stream[Msg] {
	interval, sample := m.interval, m.sample
	return func(ctx context.Context, emit func(Msg)) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		emit(Sampled{Sample: sample()})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit(Sampled{Sample: sample()})
			}
		}
	}
}

// Decode accepts {"reset": true}.
func (m *Monitor) Decode(raw []byte) (Msg, error) {
	var p struct {
		Reset bool `json:"reset"`
	}
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid monitor input: %w", err)
	}
	if !p.Reset {
		return nil, ErrUnknownCommand
	}
	return Reset{}, nil
}

var (
	_ host.App[Msg]     = (*Monitor)(nil)
	_ host.Decoder[Msg] = (*Monitor)(nil)
)
