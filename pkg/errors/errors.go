// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 推論コアが返すエラーは全て呼び出し側で回復可能な前提条件違反であり、
// 構造化されたエラー情報とスタックトレースを保持します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("polyinfer-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// MalformedLineWarning はテストケースファイルの行が解析できずスキップされた場合の警告です。
type MalformedLineWarning struct {
	Source string
	Line   int
	Reason string
}

func (w *MalformedLineWarning) Error() string {
	return fmt.Sprintf("%s:%d: malformed line skipped: %s", w.Source, w.Line, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *MalformedLineWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", w.Source).
		Int("line", w.Line).
		Str("reason", w.Reason).
		Str("type", "MalformedLineWarning")
}

// NewMalformedLineWarning は新しいMalformedLineWarningを作成します。
func NewMalformedLineWarning(source string, line int, reason string) *MalformedLineWarning {
	return &MalformedLineWarning{Source: source, Line: line, Reason: reason}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

var (
	// ErrDimensionMismatch は入力長またはパラメータ長が形状と一致しない場合のエラーです。
	ErrDimensionMismatch = New("dimension mismatch")

	// ErrUnknownModelType は未登録の型識別子、または形状引数の個数・意味が不正な場合のエラーです。
	ErrUnknownModelType = New("unknown model type")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)

// Operand の値
const (
	OperandInput      = "input"
	OperandParameters = "parameters"
)

// DimensionError はベクトル長が期待値と異なる場合のエラーです。
// errors.Is(err, ErrDimensionMismatch) が true になります。
type DimensionError struct {
	Op       string
	Operand  string // "input" または "parameters"
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("polyinfer: %s: dimension mismatch on %s. Expected %d, got %d", e.Op, e.Operand, e.Expected, e.Got)
}

// Is は ErrDimensionMismatch との比較を可能にします。
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("operand", e.Operand).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op, operand string, expected, got int) error {
	err := &DimensionError{Op: op, Operand: operand, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// UnknownModelTypeError はファクトリがモデルを構築できない場合のエラーです。
// errors.Is(err, ErrUnknownModelType) が true になります。
type UnknownModelTypeError struct {
	TypeID string
	Shape  []int
	Reason string
}

func (e *UnknownModelTypeError) Error() string {
	return fmt.Sprintf("polyinfer: unknown model type %q with shape %v: %s", e.TypeID, e.Shape, e.Reason)
}

// Is は ErrUnknownModelType との比較を可能にします。
func (e *UnknownModelTypeError) Is(target error) bool {
	return target == ErrUnknownModelType
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnknownModelTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type_id", e.TypeID).
		Ints("shape", e.Shape).
		Str("reason", e.Reason).
		Str("type", "UnknownModelTypeError")
}

// NewUnknownModelTypeError は新しいUnknownModelTypeErrorを作成し、スタックトレースを付与します。
func NewUnknownModelTypeError(typeID string, shape []int, reason string) error {
	s := make([]int, len(shape))
	copy(s, shape)
	err := &UnknownModelTypeError{TypeID: typeID, Shape: s, Reason: reason}
	return errors.WithStack(err)
}

// ParseError はテストケース行の解析に失敗した場合のエラーです。
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("polyinfer: line %d: %s", e.Line, e.Reason)
}

// NewParseError は新しいParseErrorを作成し、スタックトレースを付与します。
func NewParseError(line int, reason string) error {
	return errors.WithStack(&ParseError{Line: line, Reason: reason})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("polyinfer: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// NumericalInstabilityError は順伝播の結果にNaNやInfが含まれていた場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("polyinfer: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64) error {
	err := &NumericalInstabilityError{Operation: operation, Values: values}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
