package log

import (
	"context"
	"log/slog"

	cerrors "github.com/cockroachdb/errors"

	"github.com/YuminosukeSato/polyinfer/pkg/errors"
)

// ErrorCode maps an error from the inference packages to the ErrorCodeKey
// value logged with it. Unrecognized errors map to "".
func ErrorCode(err error) string {
	var (
		nie *errors.NumericalInstabilityError
		mlw *errors.MalformedLineWarning
		pe  *errors.ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.ErrDimensionMismatch):
		return ErrorDimensionMismatch
	case errors.Is(err, errors.ErrUnknownModelType):
		return ErrorUnknownModelType
	case errors.As(err, &nie):
		return ErrorNumerical
	case errors.As(err, &mlw), errors.As(err, &pe):
		return ErrorMalformedLine
	}
	return ""
}

// ErrFmtHandler decorates records that carry an error under ErrAttrKey with
// the error's code and the stack recorded by cockroachdb/errors.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		err, _ = attr.Value.Any().(error)
		return false
	})
	if err == nil {
		return eh.handler.Handle(ctx, r)
	}

	if code := ErrorCode(err); code != "" {
		r.AddAttrs(slog.String(ErrorCodeKey, code))
	}
	if stack := stacktraceOf(err); stack != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stack))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// stacktraceOf returns the first stack found while unwrapping err.
func stacktraceOf(err error) string {
	for e := err; e != nil; e = cerrors.UnwrapOnce(e) {
		if d := cerrors.GetSafeDetails(e).SafeDetails; len(d) > 0 {
			return d[0]
		}
	}
	return ""
}
