// Package polyinfer runs small feed-forward models behind one interface.
//
// A model is chosen by a type id and a list of shape integers, loaded once
// with a flat parameter list, and then evaluated on single input vectors.
// Four variants are available:
//
//   - "linear" (input_size): bias + w·x
//   - "logistic" (input_size): sigmoid(bias + w·x), strictly inside (0, 1)
//   - "multiclass" (input_size, num_classes): softmax over per-class logits
//   - "mlp" (input_size, hidden_size, output_size): ReLU hidden layer, linear readout
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/polyinfer/registry"
//	)
//
//	func main() {
//	    net, err := registry.Create("linear", 3)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := net.SetParameters([]float64{0.5, 0.3, 0.2, 0.1}); err != nil {
//	        log.Fatal(err)
//	    }
//	    out, err := net.Forward([]float64{1.0, 2.0, -0.5})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out) // [1.1]
//	}
//
// # Parameter Layouts
//
// Parameters are always a flat list. Their order is fixed per variant:
//
//   - linear, logistic: n weights, then the bias
//   - multiclass: the n weights of class 0, class 1, ... then all k biases
//   - mlp: W1 (index i*h+j), b1, W2 (index j*m+o), b2
//
// # Packages
//
//   - core/model: the Network interface, descriptions, weights files, Synchronized
//   - linear: LinearRegressor, LogisticRegressor, MultiClassClassifier
//   - neural: TwoLayerPerceptron
//   - registry: Create, IsRegistered, RegisteredTypes, Build
//   - casefile: line-oriented test cases and their evaluation
//   - metrics: vector comparison (MaxAbsError, MAE, MSE, ArgMax)
//   - core/parallel: range fan-out used by the evaluator and the plot sweep
//   - server: JSON HTTP API hosting models (polyinfer serve)
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Errors
//
// Every failure is a returned error. A wrong input or parameter length
// matches errors.ErrDimensionMismatch and leaves the model unchanged. An
// unknown type id, a wrong number of shape integers, or a non-positive shape
// integer matches errors.ErrUnknownModelType.
//
// # Concurrency
//
// A network does no locking. Concurrent Forward calls are safe while no
// SetParameters call is in flight; wrap the network with
// model.NewSynchronized to have that enforced.
package polyinfer
