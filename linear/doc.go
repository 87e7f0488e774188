// Package linear provides the affine network variants: LinearRegressor,
// LogisticRegressor and MultiClassClassifier.
//
// All three store their weights in gonum vectors and matrices and accept
// parameters as one flat sequence:
//
//	LinearRegressor, LogisticRegressor: w[0..n-1], bias
//	MultiClassClassifier:               w[0][0..n-1], ..., w[k-1][0..n-1], b[0..k-1]
//
// A freshly constructed model has all-zero parameters.
package linear
