package linear

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

func TestLinearRegressor_Forward(t *testing.T) {
	lr, err := NewLinearRegressor(3)
	require.NoError(t, err)
	require.NoError(t, lr.SetParameters([]float64{0.5, 0.3, 0.2, 0.1}))

	out, err := lr.Forward([]float64{1.0, 2.0, -0.5})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.1, out[0], 1e-12)
}

func TestLinearRegressor_MatchesDefinition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 16; n++ {
		lr, err := NewLinearRegressor(n)
		require.NoError(t, err)

		params := randVec(rng, n+1)
		x := randVec(rng, n)
		require.NoError(t, lr.SetParameters(params))

		want := params[n]
		for i := 0; i < n; i++ {
			want += params[i] * x[i]
		}
		out, err := lr.Forward(x)
		require.NoError(t, err)
		assert.InDelta(t, want, out[0], 1e-12, "n=%d", n)
	}
}

func TestLogisticRegressor_Forward(t *testing.T) {
	lr, err := NewLogisticRegressor(2)
	require.NoError(t, err)
	require.NoError(t, lr.SetParameters([]float64{1.2, -0.8, 0.5}))

	out, err := lr.Forward([]float64{0.8, -0.3})
	require.NoError(t, err)
	assert.InDelta(t, 0.8455347349164652, out[0], 1e-12)

	z, err := lr.DecisionFunction([]float64{0.8, -0.3})
	require.NoError(t, err)
	assert.InDelta(t, 1.7, z, 1e-12)
}

func TestLogisticRegressor_OpenInterval(t *testing.T) {
	lr, err := NewLogisticRegressor(1)
	require.NoError(t, err)

	for _, w := range []float64{-1e6, -1000, -40, -1, 0, 1, 40, 1000, 1e6} {
		require.NoError(t, lr.SetParameters([]float64{w, 0}))
		out, err := lr.Forward([]float64{1})
		require.NoError(t, err)
		assert.Greater(t, out[0], 0.0, "w=%v", w)
		assert.Less(t, out[0], 1.0, "w=%v", w)
	}
}

func TestMultiClassClassifier_Forward(t *testing.T) {
	tests := []struct {
		name       string
		params     []float64
		wantLogits []float64
		wantProbs  []float64
	}{
		{
			// class 0 weights, class 1 weights, class 2 weights, then biases
			name:       "trailing bias block",
			params:     []float64{1.0, 0.5, -0.5, 1.2, 0.2, -0.8, 0.2, -0.1, 0.3},
			wantLogits: []float64{0.6, -0.88, 0.74},
			wantProbs:  []float64{0.42053709962108177, 0.0957300932373762, 0.48373280714154193},
		},
		{
			// the same nine numbers read with the trailing layout, not per-class triples
			name:       "demo blob",
			params:     []float64{1.0, 0.5, 0.2, -0.5, 1.2, -0.1, 0.2, -0.8, 0.3},
			wantLogits: []float64{0.6, -0.48, 1.06},
			wantProbs:  []float64{0.34203592313048237, 0.11615386910494817, 0.5418102077645695},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc, err := NewMultiClassClassifier(2, 3)
			require.NoError(t, err)
			require.NoError(t, mc.SetParameters(tt.params))

			logits, err := mc.Logits([]float64{0.6, -0.4})
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.wantLogits, logits, 1e-12)

			out, err := mc.Forward([]float64{0.6, -0.4})
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.wantProbs, out, 1e-12)
			assert.InDelta(t, 1.0, sum(out), 1e-12)
		})
	}
}

func TestMultiClassClassifier_LargeLogits(t *testing.T) {
	mc, err := NewMultiClassClassifier(1, 3)
	require.NoError(t, err)
	require.NoError(t, mc.SetParameters([]float64{1000, -1000, 999, 0, 0, 0}))

	for _, x := range []float64{1, -1, 1000} {
		out, err := mc.Forward([]float64{x})
		require.NoError(t, err)
		for _, p := range out {
			assert.False(t, math.IsNaN(p))
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
		assert.InDelta(t, 1.0, sum(out), 1e-3, "x=%v", x)
	}
}

func TestMultiClassClassifier_LogProbabilities(t *testing.T) {
	mc, err := NewMultiClassClassifier(2, 3)
	require.NoError(t, err)
	require.NoError(t, mc.SetParameters([]float64{1.0, 0.5, 0.2, -0.5, 1.2, -0.1, 0.2, -0.8, 0.3}))

	x := []float64{0.6, -0.4}
	probs, err := mc.Forward(x)
	require.NoError(t, err)
	logp, err := mc.LogProbabilities(x)
	require.NoError(t, err)
	for i := range probs {
		assert.InDelta(t, math.Log(probs[i]), logp[i], 1e-12)
	}
}

func TestMultiClassClassifier_RandomDistributions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n, k := 1+rng.Intn(6), 1+rng.Intn(6)
		mc, err := NewMultiClassClassifier(n, k)
		require.NoError(t, err)

		params := randVec(rng, k*n+k)
		for i := range params {
			params[i] *= 500
		}
		require.NoError(t, mc.SetParameters(params))

		out, err := mc.Forward(randVec(rng, n))
		require.NoError(t, err)
		require.Len(t, out, k)
		for _, p := range out {
			assert.True(t, p >= 0 && p <= 1, "p=%v", p)
		}
		assert.InDelta(t, 1.0, sum(out), 1e-3)
	}
}

func TestFreshModelsBehaveAsZero(t *testing.T) {
	lin, _ := NewLinearRegressor(4)
	logit, _ := NewLogisticRegressor(4)
	x := []float64{3, -1, 7, 0.25}

	out, err := lin.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, out)

	out, err = logit.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, out)

	for k := 1; k <= 5; k++ {
		mc, err := NewMultiClassClassifier(4, k)
		require.NoError(t, err)
		out, err := mc.Forward(x)
		require.NoError(t, err)
		for _, p := range out {
			assert.InDelta(t, 1/float64(k), p, 1e-15)
		}
	}

	assert.Equal(t, make([]float64, 5), lin.Parameters())
}

func TestShapesAndNames(t *testing.T) {
	lin, _ := NewLinearRegressor(3)
	logit, _ := NewLogisticRegressor(2)
	mc, _ := NewMultiClassClassifier(2, 3)

	tests := []struct {
		net        model.Network
		in, out, p int
		name       string
	}{
		{lin, 3, 1, 4, "Linear Regression"},
		{logit, 2, 1, 3, "Logistic Regression"},
		{mc, 2, 3, 9, "Multi-Class Classifier (3 classes)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, tt.net.InputSize())
			assert.Equal(t, tt.out, tt.net.OutputSize())
			assert.Equal(t, tt.p, tt.net.ParameterCount())
			assert.Equal(t, tt.name, tt.net.ModelType())
		})
	}
}

func TestDimensionMismatch(t *testing.T) {
	lin, _ := NewLinearRegressor(3)
	logit, _ := NewLogisticRegressor(3)
	mc, _ := NewMultiClassClassifier(3, 2)

	for _, net := range []model.Network{lin, logit, mc} {
		t.Run(net.ModelType(), func(t *testing.T) {
			_, err := net.Forward([]float64{1, 2})
			assert.True(t, errors.Is(err, errors.ErrDimensionMismatch), "forward: %v", err)

			_, err = net.Forward(nil)
			assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))

			err = net.SetParameters(make([]float64, net.ParameterCount()+1))
			var dimErr *errors.DimensionError
			require.True(t, errors.As(err, &dimErr), "set: %v", err)
			assert.Equal(t, errors.OperandParameters, dimErr.Operand)
			assert.Equal(t, net.ParameterCount(), dimErr.Expected)
		})
	}
}

func TestRejectedParametersKeepPrevious(t *testing.T) {
	lr, _ := NewLinearRegressor(3)
	require.NoError(t, lr.SetParameters([]float64{0.5, 0.3, 0.2, 0.1}))

	err := lr.SetParameters([]float64{9, 9, 9})
	require.Error(t, err)
	assert.Equal(t, []float64{0.5, 0.3, 0.2, 0.1}, lr.Parameters())

	out, err := lr.Forward([]float64{1.0, 2.0, -0.5})
	require.NoError(t, err)
	assert.InDelta(t, 1.1, out[0], 1e-12)

	mc, _ := NewMultiClassClassifier(2, 2)
	good := []float64{1, 2, 3, 4, 5, 6}
	require.NoError(t, mc.SetParameters(good))
	require.Error(t, mc.SetParameters([]float64{0, 0, 0, 0, 0}))
	assert.Equal(t, good, mc.Parameters())
}

func TestSetParametersCopiesInput(t *testing.T) {
	lr, _ := NewLinearRegressor(2)
	params := []float64{1, 2, 3}
	require.NoError(t, lr.SetParameters(params))
	params[0] = 100

	out, err := lr.Forward([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, out[0], 1e-12)
}

func TestForwardDoesNotMutateInput(t *testing.T) {
	mc, _ := NewMultiClassClassifier(2, 3)
	require.NoError(t, mc.SetParameters([]float64{1.0, 0.5, 0.2, -0.5, 1.2, -0.1, 0.2, -0.8, 0.3}))
	x := []float64{0.6, -0.4}
	_, err := mc.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, -0.4}, x)
}

func TestConstructorsRejectNonPositive(t *testing.T) {
	_, err := NewLinearRegressor(0)
	assert.Error(t, err)
	_, err = NewLogisticRegressor(-2)
	assert.Error(t, err)
	_, err = NewMultiClassClassifier(2, 0)
	assert.Error(t, err)
}

func TestConstructorsRejectOversized(t *testing.T) {
	var ve *errors.ValueError

	_, err := NewLinearRegressor(math.MaxInt)
	assert.True(t, errors.As(err, &ve), "got %v", err)
	_, err = NewLogisticRegressor(model.MaxParameterCount)
	assert.True(t, errors.As(err, &ve), "got %v", err)
	_, err = NewMultiClassClassifier(4, 1<<62)
	assert.True(t, errors.As(err, &ve), "got %v", err)
	_, err = NewMultiClassClassifier(1<<62, 4)
	assert.True(t, errors.As(err, &ve), "got %v", err)

	lr, err := NewLinearRegressor(1 << 10)
	require.NoError(t, err)
	assert.Equal(t, 1<<10+1, lr.ParameterCount())
}

func randVec(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}
