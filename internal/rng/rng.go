package rng

//go:generate mockgen -destination=mock/mock_source.go -package=mockrng -source=rng.go

import (
	"math/rand"
	"sync"
	"time"
)

// Source provides the randomness behind move selection and spawns.
// This allows us to inject deterministic implementations for testing.
type Source interface {
	// Intn returns a uniform int in [0, n)
	Intn(n int) int

	// Float64 returns a uniform float64 in [0.0, 1.0)
	Float64() float64
}

// randomSource implements Source over math/rand with its own seed and lock
type randomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource creates a time-seeded random source
func NewRandomSource() Source {
	return &randomSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededSource creates a source with a fixed seed for reproducible runs
func NewSeededSource(seed int64) Source {
	return &randomSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *randomSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
