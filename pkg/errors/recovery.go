package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicError は順伝播やケース評価中に発生した panic を回復した結果のエラーです。
// Op には "Line 12" のように panic が起きたケースや範囲が入ります。
type PanicError struct {
	Op    string
	Value any
	Stack string

	// Prior は panic の時点で既に返そうとしていたエラー（無ければ nil）
	Prior error
}

func (e *PanicError) Error() string {
	if e.Prior != nil {
		return fmt.Sprintf("polyinfer: %s: panic: %v (while returning: %v)", e.Op, e.Value, e.Prior)
	}
	return fmt.Sprintf("polyinfer: %s: panic: %v", e.Op, e.Value)
}

// Unwrap は Prior を返し、errors.Is で元のエラーを辿れるようにします。
func (e *PanicError) Unwrap() error { return e.Prior }

// String はスタックトレースを含む詳細を返します。
func (e *PanicError) String() string {
	return e.Error() + "\n" + e.Stack
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("panic", fmt.Sprint(e.Value)).
		Str("type", "PanicError")
}

// Recover は defer で使い、panic を *PanicError として *err に格納します。
//
//	func evaluate(c Case) (err error) {
//	    defer errors.Recover(&err, c.Name())
//	    ...
//	}
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	*err = &PanicError{
		Op:    op,
		Value: r,
		Stack: string(debug.Stack()),
		Prior: *err,
	}
}

// SafeExecute は fn を実行し、panic をエラーに変換して返します。
func SafeExecute(op string, fn func() error) (err error) {
	defer Recover(&err, op)
	return fn()
}
