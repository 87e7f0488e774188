package linear

import (
	"github.com/YuminosukeSato/polyinfer/core/model"
)

// LinearRegressor computes output[0] = bias + Σ weight[i]*input[i].
type LinearRegressor struct {
	affine
}

var _ model.Network = (*LinearRegressor)(nil)

// NewLinearRegressor creates a regressor over inputSize features.
func NewLinearRegressor(inputSize int) (*LinearRegressor, error) {
	if err := checkAffineSize("NewLinearRegressor", inputSize); err != nil {
		return nil, err
	}
	return &LinearRegressor{affine: newAffine(inputSize)}, nil
}

// Forward returns the single regression output.
func (lr *LinearRegressor) Forward(input []float64) ([]float64, error) {
	if err := checkInput("LinearRegressor.Forward", lr.inputSize(), input); err != nil {
		return nil, err
	}
	return []float64{lr.combine(input)}, nil
}

// SetParameters expects n weights followed by the bias.
func (lr *LinearRegressor) SetParameters(params []float64) error {
	return lr.set("LinearRegressor.SetParameters", params)
}

func (lr *LinearRegressor) Parameters() []float64 { return lr.params() }
func (lr *LinearRegressor) ParameterCount() int   { return lr.paramCount() }
func (lr *LinearRegressor) InputSize() int        { return lr.inputSize() }
func (lr *LinearRegressor) OutputSize() int       { return 1 }
func (lr *LinearRegressor) ModelType() string     { return "Linear Regression" }
