package linear

import (
	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// LogisticRegressor computes σ(bias + Σ weight[i]*input[i]).
// The output is always in the open interval (0, 1).
type LogisticRegressor struct {
	affine
}

var _ model.Network = (*LogisticRegressor)(nil)

// NewLogisticRegressor creates a binary classifier over inputSize features.
func NewLogisticRegressor(inputSize int) (*LogisticRegressor, error) {
	if err := checkAffineSize("NewLogisticRegressor", inputSize); err != nil {
		return nil, err
	}
	return &LogisticRegressor{affine: newAffine(inputSize)}, nil
}

// Forward returns the positive-class probability.
func (lr *LogisticRegressor) Forward(input []float64) ([]float64, error) {
	if err := checkInput("LogisticRegressor.Forward", lr.inputSize(), input); err != nil {
		return nil, err
	}
	return []float64{errors.StableSigmoid(lr.combine(input))}, nil
}

// DecisionFunction returns the pre-activation z.
func (lr *LogisticRegressor) DecisionFunction(input []float64) (float64, error) {
	if err := checkInput("LogisticRegressor.DecisionFunction", lr.inputSize(), input); err != nil {
		return 0, err
	}
	return lr.combine(input), nil
}

// SetParameters expects n weights followed by the bias.
func (lr *LogisticRegressor) SetParameters(params []float64) error {
	return lr.set("LogisticRegressor.SetParameters", params)
}

func (lr *LogisticRegressor) Parameters() []float64 { return lr.params() }
func (lr *LogisticRegressor) ParameterCount() int   { return lr.paramCount() }
func (lr *LogisticRegressor) InputSize() int        { return lr.inputSize() }
func (lr *LogisticRegressor) OutputSize() int       { return 1 }
func (lr *LogisticRegressor) ModelType() string     { return "Logistic Regression" }
