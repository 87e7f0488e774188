package model

import (
	"fmt"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// MaxParameterCount はひとつのネットワークが持てるフラットなパラメータ数の上限
// （float64 で 512 MiB）
const MaxParameterCount = 1 << 26

// CountParameters は因数の組ごとの積 a*b の総和を返す
//
// 各ネットワークは重み行列とバイアスの寸法をここに渡してから確保する。
// 総和が MaxParameterCount を超える場合は、int のオーバーフローや確保に
// 進む前に ValueError を返す。
func CountParameters(op string, pairs ...[2]int) (int, error) {
	total := 0
	for _, p := range pairs {
		a, b := p[0], p[1]
		if a <= 0 || b <= 0 {
			return 0, errors.NewValueError(op, fmt.Sprintf("layer dimensions must be positive, got %d×%d", a, b))
		}
		if a > MaxParameterCount/b || a*b > MaxParameterCount-total {
			return 0, errors.NewValueError(op, fmt.Sprintf("parameter count exceeds the limit of %d", MaxParameterCount))
		}
		total += a * b
	}
	return total, nil
}
