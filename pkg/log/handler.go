package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	scierrors "github.com/YuminosukeSato/scitab/pkg/errors"
)

// ErrFmtHandler decorates records carrying an error attribute with the
// cockroachdb/errors stacktrace and a structured error code.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with an ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			found = err
		}
		return false
	})
	if found != nil {
		if st := extractStacktrace(found); st != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, st))
		}
		if code := ErrorCode(found); code != "" {
			r.AddAttrs(slog.String(ErrorCodeKey, code))
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// ErrorCode maps the library's typed errors onto the ErrorXxx attribute values.
// It returns "" for errors it does not recognise.
func ErrorCode(err error) string {
	var (
		notFitted *scierrors.NotFittedError
		dim       *scierrors.DimensionError
		shape     *scierrors.InputShapeError
		val       *scierrors.ValueError
		valid     *scierrors.ValidationError
	)
	switch {
	case errors.Is(err, scierrors.ErrEmptyData):
		return ErrorEmptyData
	case errors.As(err, &notFitted):
		return ErrorNotFitted
	case errors.As(err, &dim), errors.As(err, &shape):
		return ErrorDimensionMismatch
	case errors.As(err, &val), errors.As(err, &valid):
		return ErrorInvalidInput
	}
	return ""
}

func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) > 0 {
		return details[0]
	}
	if st := errors.GetReportableStackTrace(err); st != nil && len(st.Frames) > 0 {
		f := st.Frames[len(st.Frames)-1]
		return f.Function + " " + f.AbsPath
	}
	return ""
}
