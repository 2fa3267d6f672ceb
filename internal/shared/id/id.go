// Package id generates prefixed ULIDs for the shell.
//
// IDs sort by creation time, including IDs minted in the same millisecond,
// and carry a type prefix so they read well in logs (sess_*, conn_*, term_*).
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies one shell session.
type SessionID string

// ConnID identifies a WebSocket client connection.
type ConnID string

// TerminalID identifies a PTY process started by the terminal app.
type TerminalID string

const (
	SessionPrefix  = "sess"
	ConnPrefix     = "conn"
	TerminalPrefix = "term"
)

// Generator mints ULIDs from a monotonic entropy source. It is safe for
// concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewGenerator returns a generator seeded from crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy seeds the generator from r. Tests pass a fixed
// reader to get reproducible random parts.
func NewGeneratorWithEntropy(r io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(r, 0), now: time.Now}
}

var shared = sync.OnceValue(NewGenerator)

// Default returns the process-wide generator.
func Default() *Generator { return shared() }

// Generate returns a ULID greater than every earlier one from g.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix returns prefix_<ulid>.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return prefix + "_" + g.Generate().String()
}

func newID[T ~string](prefix string) T {
	return T(Default().GenerateWithPrefix(prefix))
}

func NewSessionID() SessionID   { return newID[SessionID](SessionPrefix) }
func NewConnID() ConnID         { return newID[ConnID](ConnPrefix) }
func NewTerminalID() TerminalID { return newID[TerminalID](TerminalPrefix) }

func (id SessionID) String() string  { return string(id) }
func (id ConnID) String() string     { return string(id) }
func (id TerminalID) String() string { return string(id) }

// Split separates a prefixed ID into prefix and ULID. A bare ULID splits
// with an empty prefix.
func Split(s string) (string, ulid.ULID, error) {
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok {
		prefix, raw = "", s
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return prefix, u, nil
}

// Timestamp extracts the creation time of a prefixed or bare ID.
func Timestamp(s string) (time.Time, error) {
	_, u, err := Split(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
