package registry

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		typeID     string
		shape      []int
		wantIn     int
		wantOut    int
		wantParams int
		wantName   string
	}{
		{TypeLinear, []int{3}, 3, 1, 4, "Linear Regression"},
		{TypeLogistic, []int{5}, 5, 1, 6, "Logistic Regression"},
		{TypeMultiClass, []int{2, 3}, 2, 3, 9, "Multi-Class Classifier (3 classes)"},
		{TypeMLP, []int{2, 3, 2}, 2, 2, 17, "Two-Layer MLP"},
	}

	for _, tt := range tests {
		t.Run(tt.typeID, func(t *testing.T) {
			net, err := Create(tt.typeID, tt.shape...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIn, net.InputSize())
			assert.Equal(t, tt.wantOut, net.OutputSize())
			assert.Equal(t, tt.wantParams, net.ParameterCount())
			assert.Equal(t, tt.wantName, net.ModelType())

			out, err := net.Forward(make([]float64, tt.wantIn))
			require.NoError(t, err)
			assert.Len(t, out, tt.wantOut)
		})
	}
}

func TestCreate_UnknownModelType(t *testing.T) {
	tests := []struct {
		name   string
		typeID string
		shape  []int
	}{
		{"unregistered", "bogus", []int{2}},
		{"empty id", "", []int{2}},
		{"case sensitive", "Linear", []int{2}},
		{"too many shape integers", TypeLinear, []int{2, 3}},
		{"too few shape integers", TypeMultiClass, []int{2}},
		{"no shape", TypeMLP, nil},
		{"zero size", TypeLinear, []int{0}},
		{"negative hidden", TypeMLP, []int{2, -1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, err := Create(tt.typeID, tt.shape...)
			require.Error(t, err)
			assert.Nil(t, net)
			assert.True(t, errors.Is(err, errors.ErrUnknownModelType), "got %v", err)
			assert.False(t, errors.Is(err, errors.ErrDimensionMismatch))

			var ute *errors.UnknownModelTypeError
			require.True(t, errors.As(err, &ute))
			assert.Equal(t, tt.typeID, ute.TypeID)
		})
	}
}

func TestCreate_OversizedShape(t *testing.T) {
	tests := []struct {
		name   string
		typeID string
		shape  []int
	}{
		{"linear max int", TypeLinear, []int{math.MaxInt}},
		{"logistic over limit", TypeLogistic, []int{model.MaxParameterCount}},
		{"multiclass product wraps", TypeMultiClass, []int{1 << 62, 4}},
		{"multiclass over limit", TypeMultiClass, []int{1 << 13, 1 << 13}},
		{"mlp wide hidden layer", TypeMLP, []int{100000, 100000, 1}},
		{"mlp max int output", TypeMLP, []int{2, 2, math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, err := Create(tt.typeID, tt.shape...)
			require.Error(t, err)
			assert.Nil(t, net)
			assert.True(t, errors.Is(err, errors.ErrUnknownModelType), "got %v", err)

			var ute *errors.UnknownModelTypeError
			require.True(t, errors.As(err, &ute))
			assert.Contains(t, ute.Reason, "exceeds the limit")
		})
	}
}

func TestCreate_ReturnsIndependentInstances(t *testing.T) {
	a, err := Create(TypeLinear, 2)
	require.NoError(t, err)
	b, err := Create(TypeLinear, 2)
	require.NoError(t, err)

	require.NoError(t, a.SetParameters([]float64{1, 1, 1}))
	out, err := b.Forward([]float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, out)
}

func TestCreate_Logging(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() { log.SetProvider(log.NewZerologProvider(io.Discard, log.LevelInfo)) })

	logger := provider.GetLogger().(*log.TestLogger)

	_, err := Create(TypeMultiClass, 4, 3)
	require.NoError(t, err)
	assert.True(t, logger.ContainsMessage("model created"))
	assert.True(t, logger.ContainsField(log.ParamCountKey, float64(15)))
	assert.True(t, logger.ContainsField(log.ComponentKey, "registry"))

	logger.Clear()
	_, err = Create("bogus", 1)
	require.Error(t, err)
	assert.True(t, logger.ContainsField(log.ErrorCodeKey, log.ErrorUnknownModelType))
}

func TestIsRegistered(t *testing.T) {
	for _, id := range []string{"linear", "logistic", "multiclass", "mlp"} {
		assert.True(t, IsRegistered(id), id)
	}
	for _, id := range []string{"", "bogus", "MLP", "linear "} {
		assert.False(t, IsRegistered(id), id)
	}
}

func TestRegisteredTypes(t *testing.T) {
	want := []string{"linear", "logistic", "multiclass", "mlp"}
	assert.Equal(t, want, RegisteredTypes())

	got := RegisteredTypes()
	got[0] = "mutated"
	assert.Equal(t, want, RegisteredTypes())
}

func TestArityAndUsage(t *testing.T) {
	for id, want := range map[string]int{"linear": 1, "logistic": 1, "multiclass": 2, "mlp": 3} {
		got, ok := Arity(id)
		require.True(t, ok)
		assert.Equal(t, want, got, id)
	}
	_, ok := Arity("bogus")
	assert.False(t, ok)

	usage, ok := Usage(TypeMLP)
	require.True(t, ok)
	assert.Equal(t, "input_size hidden_size output_size", usage)
}

func TestBuild(t *testing.T) {
	params := []float64{1.0, 0.5, 0.2, -0.5, 1.2, -0.1, 0.2, -0.8, 0.3}
	mw := &model.ModelWeights{
		TypeID:     TypeMultiClass,
		Version:    model.WeightsFormatVersion,
		Shape:      []int{2, 3},
		Parameters: params,
	}

	net, err := Build(mw)
	require.NoError(t, err)
	assert.Equal(t, params, net.Parameters())

	snap := model.Snapshot(TypeMultiClass, []int{2, 3}, net)
	assert.Equal(t, mw.Hash(), snap.Hash())
}

func TestBuild_Errors(t *testing.T) {
	t.Run("zero parameters", func(t *testing.T) {
		net, err := Build(&model.ModelWeights{TypeID: TypeMLP, Version: model.WeightsFormatVersion, Shape: []int{1, 1, 1}})
		require.NoError(t, err)
		out, err := net.Forward([]float64{5})
		require.NoError(t, err)
		assert.Equal(t, []float64{0}, out)
	})

	t.Run("wrong parameter count", func(t *testing.T) {
		_, err := Build(&model.ModelWeights{
			TypeID:     TypeLinear,
			Version:    model.WeightsFormatVersion,
			Shape:      []int{2},
			Parameters: []float64{1, 2},
		})
		assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Build(&model.ModelWeights{TypeID: "bogus", Version: model.WeightsFormatVersion, Shape: []int{2}})
		assert.True(t, errors.Is(err, errors.ErrUnknownModelType))
	})

	t.Run("missing version", func(t *testing.T) {
		_, err := Build(&model.ModelWeights{TypeID: TypeLinear, Shape: []int{2}})
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve))
	})
}
