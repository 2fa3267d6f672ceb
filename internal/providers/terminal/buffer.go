package terminal

import "sync"

// Buffer is a thread-safe circular buffer for PTY output. When full, the
// oldest bytes are overwritten.
type Buffer struct {
	data []byte
	size int
	head int
	tail int
	full bool
	mu   sync.Mutex
}

// NewBuffer creates a buffer holding at most size bytes.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 1
	}
	return &Buffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write writes data to the buffer
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range p {
		if b.full {
			b.head = (b.head + 1) % b.size
		}
		b.data[b.tail] = c
		b.tail = (b.tail + 1) % b.size
		b.full = b.tail == b.head
	}

	return len(p), nil
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lenLocked()
}

func (b *Buffer) lenLocked() int {
	switch {
	case b.full:
		return b.size
	case b.tail >= b.head:
		return b.tail - b.head
	default:
		return b.size - b.head + b.tail
	}
}

// ReadAll drains and returns everything buffered.
func (b *Buffer) ReadAll() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.lenLocked()
	if n == 0 {
		return nil
	}

	result := make([]byte, n)
	if b.head < b.tail {
		copy(result, b.data[b.head:b.tail])
	} else {
		k := copy(result, b.data[b.head:])
		copy(result[k:], b.data[:b.tail])
	}

	b.head, b.tail, b.full = 0, 0, false
	return result
}
