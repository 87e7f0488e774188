// Package metrics は予測ベクトルと期待ベクトルの比較指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// validate は長さの一致と非空を検証する
func validate(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, errors.OperandInput, len(yTrue), len(yPred))
	}
	return nil
}

// MaxAbsError は要素ごとの絶対誤差の最大値（L∞距離）を計算する
func MaxAbsError(yTrue, yPred []float64) (float64, error) {
	if err := validate("MaxAbsError", yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, math.Inf(1)), nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// WithinTolerance は全要素の絶対誤差が tol 以下かを判定する
// NaN を含む場合は常に false。
func WithinTolerance(yTrue, yPred []float64, tol float64) (bool, error) {
	if err := validate("WithinTolerance", yTrue, yPred); err != nil {
		return false, err
	}
	for i := range yTrue {
		if !(math.Abs(yTrue[i]-yPred[i]) <= tol) {
			return false, nil
		}
	}
	return true, nil
}

// ArgMax は最大要素のインデックスを返す（同値の場合は最初のもの）
// 分類器の出力から予測クラスを得るのに使う。
func ArgMax(v []float64) (int, error) {
	if len(v) == 0 {
		return 0, errors.NewValueError("ArgMax", "empty vector")
	}
	return floats.MaxIdx(v), nil
}
