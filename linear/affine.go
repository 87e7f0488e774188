package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// affine holds n weights and one bias: z = bias + Σ w[i]*x[i].
type affine struct {
	weights *mat.VecDense
	bias    float64
}

func newAffine(n int) affine {
	return affine{weights: mat.NewVecDense(n, nil)}
}

func (a *affine) inputSize() int { return a.weights.Len() }

func (a *affine) paramCount() int { return a.weights.Len() + 1 }

// combine assumes len(x) has already been checked.
func (a *affine) combine(x []float64) float64 {
	return a.bias + floats.Dot(a.weights.RawVector().Data, x)
}

func (a *affine) set(op string, params []float64) error {
	if len(params) != a.paramCount() {
		return errors.NewDimensionError(op, errors.OperandParameters, a.paramCount(), len(params))
	}
	n := a.weights.Len()
	a.weights.CopyVec(mat.NewVecDense(n, params[:n]))
	a.bias = params[n]
	return nil
}

func (a *affine) params() []float64 {
	out := make([]float64, 0, a.paramCount())
	out = append(out, a.weights.RawVector().Data...)
	return append(out, a.bias)
}

func checkInput(op string, want int, input []float64) error {
	if len(input) != want {
		return errors.NewDimensionError(op, errors.OperandInput, want, len(input))
	}
	return nil
}

func checkSize(op, name string, v int) error {
	if v <= 0 {
		return errors.NewValueError(op, name+" must be positive")
	}
	return nil
}

// checkAffineSize validates n and the n+1 parameters it implies.
func checkAffineSize(op string, n int) error {
	if err := checkSize(op, "input size", n); err != nil {
		return err
	}
	_, err := model.CountParameters(op, [2]int{n, 1}, [2]int{1, 1})
	return err
}
