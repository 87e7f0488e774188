package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// Scenario is a demo configuration file:
//
//	input: [0.5, -0.2]
//	models:
//	  - type: linear
//	    shape: [2]
//	    parameters: [0.7, 0.3, 0.0]
//	  - name: MLP demo
//	    type: mlp
//	    shape: [2, 3, 2]
//	    fill: 0.1
//	    input: [1.5, -0.8]
type Scenario struct {
	// Input is shared by every entry that does not set its own.
	Input  []float64       `yaml:"input,flow"`
	Models []ModelScenario `yaml:"models"`
}

// ModelScenario is one model of a Scenario.
type ModelScenario struct {
	Name       string    `yaml:"name,omitempty"`
	Type       string    `yaml:"type"`
	Shape      []int     `yaml:"shape,flow"`
	Parameters []float64 `yaml:"parameters,flow,omitempty"`
	// Fill sets every parameter to the same value when Parameters is empty.
	Fill  *float64  `yaml:"fill,omitempty"`
	Input []float64 `yaml:"input,flow,omitempty"`
}

// title is the heading printed before the entry's output.
func (m ModelScenario) title() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Type
}

// input returns the entry's own input or the shared one.
func (m ModelScenario) input(shared []float64) []float64 {
	if len(m.Input) > 0 {
		return m.Input
	}
	return shared
}

// loadScenario reads and validates a scenario file.
func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if err := s.validate(); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Models) == 0 {
		return errors.NewValueError("Scenario", "no models")
	}
	for i, m := range s.Models {
		if m.Type == "" {
			return errors.NewValueError("Scenario", fmt.Sprintf("models[%d]: type is required", i))
		}
		if len(m.input(s.Input)) == 0 {
			return errors.NewValueError("Scenario", fmt.Sprintf("models[%d]: no input", i))
		}
		if len(m.Parameters) > 0 && m.Fill != nil {
			return errors.NewValueError("Scenario", fmt.Sprintf("models[%d]: parameters and fill are exclusive", i))
		}
	}
	return nil
}

func fill(v float64) *float64 { return &v }

// builtinScenario reproduces the walk-through printed by "polyinfer demo"
// without a config file: one example per model type, then every type run
// against a shared input.
func builtinScenario() *Scenario {
	return &Scenario{
		Input: []float64{0.5, -0.2},
		Models: []ModelScenario{
			{
				Name:       "Linear Regression",
				Type:       "linear",
				Shape:      []int{3},
				Parameters: []float64{0.5, 0.3, 0.2, 0.1},
				Input:      []float64{1.0, 2.0, -0.5},
			},
			{
				Name:       "Logistic Regression",
				Type:       "logistic",
				Shape:      []int{2},
				Parameters: []float64{1.2, -0.8, 0.5},
				Input:      []float64{0.8, -0.3},
			},
			{
				Name:       "Multi-Class Classifier",
				Type:       "multiclass",
				Shape:      []int{2, 3},
				Parameters: []float64{1.0, 0.5, 0.2, -0.5, 1.2, -0.1, 0.2, -0.8, 0.3},
				Input:      []float64{0.6, -0.4},
			},
			{
				Name:  "Two-Layer MLP",
				Type:  "mlp",
				Shape: []int{2, 3, 2},
				Fill:  fill(0.1),
				Input: []float64{1.5, -0.8},
			},
			{Type: "linear", Shape: []int{2}, Parameters: []float64{0.7, 0.3, 0.0}},
			{Type: "logistic", Shape: []int{2}, Parameters: []float64{0.8, -0.4, 0.1}},
			{Type: "multiclass", Shape: []int{2, 3}, Parameters: []float64{0.5, 0.3, 0.1, -0.2, 0.6, -0.1, 0.1, -0.4, 0.2}},
			{Type: "mlp", Shape: []int{2, 4, 2}, Fill: fill(0.2)},
		},
	}
}
