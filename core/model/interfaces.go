// Package model defines the capability set shared by every network variant,
// plus the small amount of machinery built purely on that contract:
// descriptions, a read/write guarded wrapper, and parameter snapshots.
//
// # Concurrency
//
// Network implementations do no internal locking. Forward only reads the
// parameters, so any number of Forward calls may run concurrently against a
// stable parameter set, but SetParameters must never overlap a Forward on the
// same instance. Callers sharing one instance across goroutines either
// serialize those calls themselves or wrap the instance with NewSynchronized.
package model

// Predictor computes an output vector from one input vector.
type Predictor interface {
	// Forward requires len(input) == InputSize() and fails with a
	// DimensionError otherwise. It never mutates the receiver.
	Forward(input []float64) ([]float64, error)
}

// ParameterSetter replaces and exposes the flat parameter sequence.
type ParameterSetter interface {
	// SetParameters requires len(params) == ParameterCount(). A rejected
	// call leaves the previous parameters in effect; an accepted call
	// replaces all of them. params is copied.
	SetParameters(params []float64) error

	// ParameterCount returns the shape-derived expected parameter count.
	ParameterCount() int

	// Parameters returns a copy of the current parameters in SetParameters
	// layout. A freshly constructed network returns all zeros.
	Parameters() []float64
}

// Shape describes construction-time metadata, immutable after construction.
type Shape interface {
	InputSize() int
	OutputSize() int

	// ModelType returns a human-readable, stable name for the variant.
	ModelType() string
}

// Network is the capability set every model variant implements.
type Network interface {
	Predictor
	ParameterSetter
	Shape
}
