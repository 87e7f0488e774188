package model

import "sync"

// Synchronized guards a Network with a read-write lock: Forward and
// Parameters take the read lock, SetParameters the write lock. Shape
// accessors are immutable and not locked.
type Synchronized struct {
	mu  sync.RWMutex
	net Network
}

var _ Network = (*Synchronized)(nil)

// NewSynchronized wraps net. net must not be used directly afterwards.
func NewSynchronized(net Network) *Synchronized {
	return &Synchronized{net: net}
}

// Forward runs concurrently with other Forward calls.
func (s *Synchronized) Forward(input []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.net.Forward(input)
}

// SetParameters waits for in-flight Forward calls to finish.
func (s *Synchronized) SetParameters(params []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.SetParameters(params)
}

func (s *Synchronized) Parameters() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.net.Parameters()
}

func (s *Synchronized) ParameterCount() int { return s.net.ParameterCount() }
func (s *Synchronized) InputSize() int      { return s.net.InputSize() }
func (s *Synchronized) OutputSize() int     { return s.net.OutputSize() }
func (s *Synchronized) ModelType() string   { return s.net.ModelType() }

// Unwrap returns the guarded network.
func (s *Synchronized) Unwrap() Network { return s.net }
