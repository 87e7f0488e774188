package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	var unstable []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable)
	}
	return nil
}

// StableSigmoid computes 1 / (1 + e^(-z)) without overflowing e^(-z) for
// large negative z. The result is clamped to the open interval (0, 1): in
// float64 the exact value rounds to 1 for z > ~37 and to 0 for z < ~-745.
func StableSigmoid(z float64) float64 {
	var s float64
	if z >= 0 {
		s = 1 / (1 + math.Exp(-z))
	} else {
		ez := math.Exp(z)
		s = ez / (1 + ez)
	}
	switch {
	case s >= 1:
		return sigmoidUpper
	case s <= 0:
		return math.SmallestNonzeroFloat64
	}
	return s
}

var sigmoidUpper = math.Nextafter(1, 0)

// SoftmaxInPlace replaces logits with exp(z - max) / sum(exp(z - max)).
// Subtracting the maximum keeps every exponent <= 0, so the largest term is
// exactly 1 and the sum can never overflow.
func SoftmaxInPlace(logits []float64) {
	if len(logits) == 0 {
		return
	}
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	var sum float64
	for i, v := range logits {
		e := math.Exp(v - maxVal)
		logits[i] = e
		sum += e
	}
	for i := range logits {
		logits[i] /= sum
	}
}

// LogSumExp computes log(sum(exp(values))) in a numerically stable way.
func LogSumExp(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}

	maxVal := values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	// If max is -Inf, all values are -Inf
	if math.IsInf(maxVal, -1) {
		return math.Inf(-1)
	}

	sum := 0.0
	for _, v := range values {
		sum += math.Exp(v - maxVal)
	}

	return maxVal + math.Log(sum)
}
