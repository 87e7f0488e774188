package casefile

import "github.com/YuminosukeSato/polyinfer/pkg/log"

// DefaultTolerance is the accepted absolute deviation per output element.
const DefaultTolerance = 0.01

// DefaultParallelThreshold is the case count above which Evaluate fans out
// across CPU cores.
const DefaultParallelThreshold = 256

type config struct {
	tolerance         float64
	logger            log.Logger
	parallelThreshold int
	parameters        []float64
}

func defaultConfig() *config {
	return &config{
		tolerance:         DefaultTolerance,
		logger:            log.GetLoggerWithName("casefile"),
		parallelThreshold: DefaultParallelThreshold,
	}
}

// Option configures Evaluate.
type Option func(*config)

// WithTolerance sets the accepted absolute deviation per output element.
func WithTolerance(tol float64) Option {
	return func(c *config) {
		c.tolerance = tol
	}
}

// WithLogger sets the logger used for per-case and summary records.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithParallelThreshold sets the case count up to which evaluation stays on
// the calling goroutine.
func WithParallelThreshold(n int) Option {
	return func(c *config) {
		c.parallelThreshold = n
	}
}

// WithParameters supplies the parameter set for cases read from the
// two-field form. Cases that carry their own parameters ignore it.
func WithParameters(params []float64) Option {
	return func(c *config) {
		c.parameters = append([]float64(nil), params...)
	}
}
