package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// MultiClassClassifier computes softmax(W·x + b) over k classes.
//
// Row c of weights holds the n weights of class c, so the first k*n flat
// parameters are the row-major data of a k×n matrix. The k biases follow as a
// separate trailing block.
type MultiClassClassifier struct {
	weights *mat.Dense    // k×n
	biases  *mat.VecDense // k
}

var _ model.Network = (*MultiClassClassifier)(nil)

// NewMultiClassClassifier creates a classifier over inputSize features and numClasses classes.
func NewMultiClassClassifier(inputSize, numClasses int) (*MultiClassClassifier, error) {
	if err := checkSize("NewMultiClassClassifier", "input size", inputSize); err != nil {
		return nil, err
	}
	if err := checkSize("NewMultiClassClassifier", "class count", numClasses); err != nil {
		return nil, err
	}
	if _, err := model.CountParameters("NewMultiClassClassifier",
		[2]int{numClasses, inputSize}, [2]int{numClasses, 1}); err != nil {
		return nil, err
	}
	return &MultiClassClassifier{
		weights: mat.NewDense(numClasses, inputSize, nil),
		biases:  mat.NewVecDense(numClasses, nil),
	}, nil
}

// Forward returns the class probability distribution.
func (mc *MultiClassClassifier) Forward(input []float64) ([]float64, error) {
	z, err := mc.logits("MultiClassClassifier.Forward", input)
	if err != nil {
		return nil, err
	}
	errors.SoftmaxInPlace(z)
	return z, nil
}

// Logits returns the per-class pre-softmax scores z_c = b[c] + Σ w[c][i]*x[i].
func (mc *MultiClassClassifier) Logits(input []float64) ([]float64, error) {
	return mc.logits("MultiClassClassifier.Logits", input)
}

// LogProbabilities returns log(softmax(z)) computed as z - logsumexp(z).
func (mc *MultiClassClassifier) LogProbabilities(input []float64) ([]float64, error) {
	z, err := mc.logits("MultiClassClassifier.LogProbabilities", input)
	if err != nil {
		return nil, err
	}
	lse := errors.LogSumExp(z)
	for i := range z {
		z[i] -= lse
	}
	return z, nil
}

func (mc *MultiClassClassifier) logits(op string, input []float64) ([]float64, error) {
	if err := checkInput(op, mc.InputSize(), input); err != nil {
		return nil, err
	}
	z := mat.NewVecDense(mc.OutputSize(), nil)
	z.MulVec(mc.weights, mat.NewVecDense(len(input), input))
	z.AddVec(z, mc.biases)
	return z.RawVector().Data, nil
}

// SetParameters expects k*n weights (class by class) followed by k biases.
func (mc *MultiClassClassifier) SetParameters(params []float64) error {
	k, n := mc.weights.Dims()
	if len(params) != mc.ParameterCount() {
		return errors.NewDimensionError("MultiClassClassifier.SetParameters", errors.OperandParameters, mc.ParameterCount(), len(params))
	}
	mc.weights.Copy(mat.NewDense(k, n, params[:k*n]))
	mc.biases.CopyVec(mat.NewVecDense(k, params[k*n:]))
	return nil
}

func (mc *MultiClassClassifier) Parameters() []float64 {
	out := make([]float64, 0, mc.ParameterCount())
	out = append(out, mc.weights.RawMatrix().Data...)
	return append(out, mc.biases.RawVector().Data...)
}

func (mc *MultiClassClassifier) ParameterCount() int {
	k, n := mc.weights.Dims()
	return k*n + k
}

func (mc *MultiClassClassifier) InputSize() int {
	_, n := mc.weights.Dims()
	return n
}

// NumClasses is the same as OutputSize.
func (mc *MultiClassClassifier) NumClasses() int { return mc.biases.Len() }

func (mc *MultiClassClassifier) OutputSize() int { return mc.biases.Len() }

func (mc *MultiClassClassifier) ModelType() string {
	return fmt.Sprintf("Multi-Class Classifier (%d classes)", mc.NumClasses())
}
