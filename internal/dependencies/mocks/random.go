package mocks

import (
	"sync"

	"github.com/mcoot/crimeguessr/internal/dependencies/random"
)

// MockRandom replays queued results. Once a queue is drained it falls back to
// real randomness so tests that only care about the first few draws still
// get distinct room codes.
type MockRandom struct {
	mu       sync.Mutex
	intns    []int
	strings  []string
	fallback *random.CryptoRandom
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{fallback: random.New()}
}

// Intn returns the next queued result, reduced into [0, n)
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intns) == 0 {
		return r.fallback.Intn(n)
	}
	v := r.intns[0]
	r.intns = r.intns[1:]
	if n > 0 {
		v %= n
	}
	return v
}

// String returns the next queued result
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) == 0 {
		return r.fallback.String(length, alphabet)
	}
	v := r.strings[0]
	r.strings = r.strings[1:]
	return v
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intns = append(r.intns, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intns = nil
	r.strings = nil
}
