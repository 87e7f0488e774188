// Package neural provides network variants with hidden representations.
package neural

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// TwoLayerPerceptron is input -> ReLU hidden layer -> linear output layer.
//
// Parameter layout, in order:
//
//	W1  n*h values, weight from input i to hidden j at i*h + j
//	b1  h values
//	W2  h*m values, weight from hidden j to output o at j*m + o
//	b2  m values
//
// W1 and W2 are therefore the row-major data of an n×h and an h×m matrix.
// This is the transpose of the MultiClassClassifier convention (rows there are
// indexed by output), and the two must not be mixed up.
type TwoLayerPerceptron struct {
	w1 *mat.Dense    // n×h
	b1 *mat.VecDense // h
	w2 *mat.Dense    // h×m
	b2 *mat.VecDense // m
}

var _ model.Network = (*TwoLayerPerceptron)(nil)

// NewTwoLayerPerceptron creates a perceptron with the given layer widths.
func NewTwoLayerPerceptron(inputSize, hiddenSize, outputSize int) (*TwoLayerPerceptron, error) {
	for _, d := range []struct {
		name string
		v    int
	}{
		{"input size", inputSize},
		{"hidden size", hiddenSize},
		{"output size", outputSize},
	} {
		if d.v <= 0 {
			return nil, errors.NewValueError("NewTwoLayerPerceptron", d.name+" must be positive")
		}
	}
	if _, err := model.CountParameters("NewTwoLayerPerceptron",
		[2]int{inputSize, hiddenSize}, [2]int{hiddenSize, 1},
		[2]int{hiddenSize, outputSize}, [2]int{outputSize, 1}); err != nil {
		return nil, err
	}
	return &TwoLayerPerceptron{
		w1: mat.NewDense(inputSize, hiddenSize, nil),
		b1: mat.NewVecDense(hiddenSize, nil),
		w2: mat.NewDense(hiddenSize, outputSize, nil),
		b2: mat.NewVecDense(outputSize, nil),
	}, nil
}

// Forward computes b2 + W2ᵀ·relu(b1 + W1ᵀ·x).
func (p *TwoLayerPerceptron) Forward(input []float64) ([]float64, error) {
	hidden, err := p.hidden("TwoLayerPerceptron.Forward", input)
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(p.OutputSize(), nil)
	out.MulVec(p.w2.T(), hidden)
	out.AddVec(out, p.b2)
	return out.RawVector().Data, nil
}

// Hidden returns the post-ReLU hidden activations for input. Every entry is >= 0
// (or NaN if the parameters or input are not finite).
func (p *TwoLayerPerceptron) Hidden(input []float64) ([]float64, error) {
	h, err := p.hidden("TwoLayerPerceptron.Hidden", input)
	if err != nil {
		return nil, err
	}
	return h.RawVector().Data, nil
}

func (p *TwoLayerPerceptron) hidden(op string, input []float64) (*mat.VecDense, error) {
	if len(input) != p.InputSize() {
		return nil, errors.NewDimensionError(op, errors.OperandInput, p.InputSize(), len(input))
	}
	h := mat.NewVecDense(p.HiddenSize(), nil)
	h.MulVec(p.w1.T(), mat.NewVecDense(len(input), input))
	h.AddVec(h, p.b1)
	relu(h.RawVector().Data)
	return h, nil
}

func relu(v []float64) {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		}
	}
}

// SetParameters expects W1, b1, W2, b2 concatenated as documented on the type.
func (p *TwoLayerPerceptron) SetParameters(params []float64) error {
	if len(params) != p.ParameterCount() {
		return errors.NewDimensionError("TwoLayerPerceptron.SetParameters", errors.OperandParameters, p.ParameterCount(), len(params))
	}
	n, h, m := p.InputSize(), p.HiddenSize(), p.OutputSize()

	off := 0
	p.w1.Copy(mat.NewDense(n, h, params[off:off+n*h]))
	off += n * h
	p.b1.CopyVec(mat.NewVecDense(h, params[off:off+h]))
	off += h
	p.w2.Copy(mat.NewDense(h, m, params[off:off+h*m]))
	off += h * m
	p.b2.CopyVec(mat.NewVecDense(m, params[off:off+m]))
	return nil
}

func (p *TwoLayerPerceptron) Parameters() []float64 {
	out := make([]float64, 0, p.ParameterCount())
	out = append(out, p.w1.RawMatrix().Data...)
	out = append(out, p.b1.RawVector().Data...)
	out = append(out, p.w2.RawMatrix().Data...)
	return append(out, p.b2.RawVector().Data...)
}

// ParameterCount is n*h + h + h*m + m.
func (p *TwoLayerPerceptron) ParameterCount() int {
	n, h, m := p.InputSize(), p.HiddenSize(), p.OutputSize()
	return n*h + h + h*m + m
}

func (p *TwoLayerPerceptron) InputSize() int {
	n, _ := p.w1.Dims()
	return n
}

func (p *TwoLayerPerceptron) HiddenSize() int { return p.b1.Len() }

func (p *TwoLayerPerceptron) OutputSize() int { return p.b2.Len() }

func (p *TwoLayerPerceptron) ModelType() string { return "Two-Layer MLP" }
