package model

import (
	"fmt"
	"strings"
)

// Describe returns a one-line summary, e.g.
// "Model: Linear Regression (Input: 3, Output: 1)".
func Describe(n Shape) string {
	return fmt.Sprintf("Model: %s (Input: %d, Output: %d)", n.ModelType(), n.InputSize(), n.OutputSize())
}

// FormatVector renders v as "[a, b, c]" with prec digits after the decimal point.
func FormatVector(v []float64, prec int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%.*f", prec, x))
	}
	b.WriteByte(']')
	return b.String()
}
