package casefile

import (
	"context"
	"fmt"
	"time"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/core/parallel"
	"github.com/YuminosukeSato/polyinfer/metrics"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
)

// Factory builds a fresh network. Evaluate calls it once per worker, so each
// network is only ever used from a single goroutine.
type Factory func() (model.Network, error)

// Outcome is the evaluation of one case.
type Outcome struct {
	Case   Case
	Output []float64
	// MaxAbsError is the largest element-wise deviation from Case.Expected.
	// It is zero when Err is set.
	MaxAbsError float64
	Passed      bool
	// Err is set when the case could not be run, e.g. a dimension mismatch
	// or a non-finite output.
	Err error
}

// Report summarizes an evaluation run. Outcomes are in case order.
type Report struct {
	Outcomes    []Outcome
	Passed      int
	Failed      int
	MaxAbsError float64
	Tolerance   float64
}

// OK reports whether every case passed.
func (r *Report) OK() bool { return r.Failed == 0 }

// Failures returns the outcomes that did not pass.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			out = append(out, o)
		}
	}
	return out
}

// Evaluate runs every case through a network built by factory and compares
// the output with the expected vector. A failing case never stops the run;
// the returned error covers only an empty case list, a factory failure, or
// cancellation of ctx.
func Evaluate(ctx context.Context, factory Factory, cases []Case, opts ...Option) (*Report, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cases) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "casefile: no cases to evaluate")
	}

	start := time.Now()
	outcomes := make([]Outcome, len(cases))
	err := parallel.ParallelizeWithThreshold(ctx, len(cases), cfg.parallelThreshold,
		func(ctx context.Context, lo, hi int) error {
			net, err := factory()
			if err != nil {
				return errors.Wrap(err, "casefile: build network")
			}
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				outcomes[i] = evaluateCase(net, cases[i], cfg)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	rep := &Report{Outcomes: outcomes, Tolerance: cfg.tolerance}
	for _, o := range outcomes {
		if o.Passed {
			rep.Passed++
		} else {
			rep.Failed++
			logFailure(cfg.logger, o)
		}
		if o.MaxAbsError > rep.MaxAbsError {
			rep.MaxAbsError = o.MaxAbsError
		}
	}

	cfg.logger.Info("evaluation finished",
		log.OperationKey, log.OperationEvaluate,
		log.CasesKey, len(cases),
		log.PassedKey, rep.Passed,
		log.FailedKey, rep.Failed,
		log.MaxAbsErrorKey, rep.MaxAbsError,
		log.ToleranceKey, cfg.tolerance,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return rep, nil
}

func evaluateCase(net model.Network, c Case, cfg *config) Outcome {
	o := Outcome{Case: c}
	o.Err = errors.SafeExecute(c.Name(), func() error {
		params := c.Parameters
		if params == nil {
			params = cfg.parameters
		}
		if params == nil {
			// networks are reused across cases; start from the zero state
			params = make([]float64, net.ParameterCount())
		}
		if err := net.SetParameters(params); err != nil {
			return err
		}

		out, err := net.Forward(c.Input)
		if err != nil {
			return err
		}
		o.Output = out
		if err := errors.CheckNumericalStability(c.Name(), out); err != nil {
			return err
		}

		maxErr, err := metrics.MaxAbsError(c.Expected, out)
		if err != nil {
			return err
		}
		o.MaxAbsError = maxErr
		o.Passed, err = metrics.WithinTolerance(c.Expected, out, cfg.tolerance)
		return err
	})
	if o.Err != nil {
		o.Passed = false
		o.MaxAbsError = 0
	}
	return o
}

func logFailure(logger log.Logger, o Outcome) {
	fields := []any{
		log.CaseLineKey, o.Case.Line,
		log.InputSizeKey, len(o.Case.Input),
	}
	if code := log.ErrorCode(o.Err); code != "" {
		fields = append(fields, log.ErrorCodeKey, code)
	}
	if o.Err != nil {
		logger.Warn("case failed", append(fields, "error", o.Err.Error())...)
		return
	}
	logger.Warn("case failed", append(fields,
		"expected", model.FormatVector(o.Case.Expected, 3),
		"got", model.FormatVector(o.Output, 3),
		log.MaxAbsErrorKey, o.MaxAbsError,
	)...)
}

// String renders a one-line summary, e.g. "3/4 passed (max abs error 0.0004, tolerance 0.01)".
func (r *Report) String() string {
	return fmt.Sprintf("%d/%d passed (max abs error %.4g, tolerance %g)",
		r.Passed, r.Passed+r.Failed, r.MaxAbsError, r.Tolerance)
}
