// Package registry maps model type identifiers plus shape integers to
// constructed networks.
//
// The set of identifiers is compiled in and never changes at runtime, so the
// package holds no mutable state and is safe for concurrent use.
package registry

import (
	"fmt"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/linear"
	"github.com/YuminosukeSato/polyinfer/neural"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
)

// Type identifiers understood by Create.
const (
	TypeLinear     = "linear"
	TypeLogistic   = "logistic"
	TypeMultiClass = "multiclass"
	TypeMLP        = "mlp"
)

// constructor builds a network from shape integers whose count has already
// been checked against the entry's arity.
type constructor func(shape []int) (model.Network, error)

type entry struct {
	typeID string
	arity  int
	usage  string
	build  constructor
}

// entries is ordered; RegisteredTypes reports identifiers in this order.
var entries = [...]entry{
	{
		typeID: TypeLinear,
		arity:  1,
		usage:  "input_size",
		build: func(s []int) (model.Network, error) {
			return linear.NewLinearRegressor(s[0])
		},
	},
	{
		typeID: TypeLogistic,
		arity:  1,
		usage:  "input_size",
		build: func(s []int) (model.Network, error) {
			return linear.NewLogisticRegressor(s[0])
		},
	},
	{
		typeID: TypeMultiClass,
		arity:  2,
		usage:  "input_size num_classes",
		build: func(s []int) (model.Network, error) {
			return linear.NewMultiClassClassifier(s[0], s[1])
		},
	},
	{
		typeID: TypeMLP,
		arity:  3,
		usage:  "input_size hidden_size output_size",
		build: func(s []int) (model.Network, error) {
			return neural.NewTwoLayerPerceptron(s[0], s[1], s[2])
		},
	},
}

func lookup(typeID string) (entry, bool) {
	for _, e := range entries {
		if e.typeID == typeID {
			return e, true
		}
	}
	return entry{}, false
}

// Create constructs the network registered under typeID.
//
// It fails with an error matching errors.ErrUnknownModelType when typeID is
// not registered, when the number of shape integers differs from the type's
// arity, when any shape integer is not positive, or when the shape implies
// more than model.MaxParameterCount parameters.
func Create(typeID string, shape ...int) (model.Network, error) {
	logger := log.GetLoggerWithName("registry").With(
		log.OperationKey, log.OperationCreate,
		log.TypeIDKey, typeID,
		log.ShapeKey, shape,
	)

	e, ok := lookup(typeID)
	if !ok {
		err := errors.NewUnknownModelTypeError(typeID, shape, "type is not registered")
		logger.Debug("create rejected", log.ErrorCodeKey, log.ErrorUnknownModelType)
		return nil, err
	}
	if len(shape) != e.arity {
		err := errors.NewUnknownModelTypeError(typeID, shape,
			fmt.Sprintf("expected %d shape integers (%s), got %d", e.arity, e.usage, len(shape)))
		logger.Debug("create rejected",
			log.ErrorCodeKey, log.ErrorUnknownModelType,
			log.SuggestionKey, "shape is: "+e.usage)
		return nil, err
	}
	for i, v := range shape {
		if v <= 0 {
			err := errors.NewUnknownModelTypeError(typeID, shape,
				fmt.Sprintf("shape integer %d must be positive, got %d", i, v))
			logger.Debug("create rejected", log.ErrorCodeKey, log.ErrorUnknownModelType)
			return nil, err
		}
	}

	net, err := e.build(shape)
	if err != nil {
		var ve *errors.ValueError
		if errors.As(err, &ve) {
			logger.Debug("create rejected", log.ErrorCodeKey, log.ErrorUnknownModelType)
			return nil, errors.NewUnknownModelTypeError(typeID, shape, ve.Message)
		}
		return nil, errors.Wrapf(err, "registry: create %q", typeID)
	}
	logger.Debug("model created",
		log.ModelNameKey, net.ModelType(),
		log.ParamCountKey, net.ParameterCount(),
	)
	return net, nil
}

// IsRegistered reports whether typeID is one of the compiled-in identifiers.
func IsRegistered(typeID string) bool {
	_, ok := lookup(typeID)
	return ok
}

// RegisteredTypes returns the registered identifiers in a stable order.
// The returned slice is a copy and may be modified by the caller.
func RegisteredTypes() []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.typeID
	}
	return ids
}

// Arity returns how many shape integers typeID expects.
func Arity(typeID string) (int, bool) {
	e, ok := lookup(typeID)
	if !ok {
		return 0, false
	}
	return e.arity, true
}

// Usage returns the names of typeID's shape integers, e.g. "input_size num_classes".
func Usage(typeID string) (string, bool) {
	e, ok := lookup(typeID)
	if !ok {
		return "", false
	}
	return e.usage, true
}

// Build restores a network from serialized weights. Empty Parameters leave
// the network zero-initialized.
func Build(mw *model.ModelWeights) (model.Network, error) {
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	net, err := Create(mw.TypeID, mw.Shape...)
	if err != nil {
		return nil, err
	}
	if len(mw.Parameters) == 0 {
		return net, nil
	}
	if err := net.SetParameters(mw.Parameters); err != nil {
		return nil, errors.Wrapf(err, "registry: restore %q", mw.TypeID)
	}
	return net, nil
}
