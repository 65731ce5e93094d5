package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// DefaultLogger creates a logger writing to the standard error with the specified parameters.
// Standard output is left for the results of commands.
func DefaultLogger(params Parameters) (*zap.Logger, error) {
	return NewLogger(params, os.Stderr)
}

// NewLogger creates a logger based on the logger type, level and filter rules of params.
func NewLogger(params Parameters, w io.Writer) (*zap.Logger, error) {
	core := zapcore.NewCore(newEncoder(params.Type, w), zapcore.Lock(zapcore.AddSync(w)), params.Level)
	if params.Filter != "" {
		rules, err := zapfilter.ParseRules(params.Filter)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log filter %q", params.Filter)
		}
		core = zapfilter.NewFilteringCore(core, rules)
	}
	return zap.New(core), nil
}

func newEncoder(loggerType LoggerType, w io.Writer) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	switch loggerType {
	case LoggerText:
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	case LoggerJSON:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case LoggerPretty:
		type fd interface{ Fd() uintptr }
		if f, ok := w.(fd); ok && isatty.IsTerminal(f.Fd()) {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(ec)
	case LoggerPrettyNoColor:
		return zapcore.NewConsoleEncoder(ec)
	default:
		panic(fmt.Sprintf("unsupported logger type %d", loggerType))
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Error returns the error field, nil errors are skipped.
func Error(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}

// ErrorTrace returns the stack trace of errors created with github.com/pkg/errors.
func ErrorTrace(err error) zap.Field {
	const key = "trace"
	if err == nil {
		return zap.Skip()
	}
	if st, ok := err.(stackTracer); ok {
		return zap.String(key, fmt.Sprintf("%+v", st.StackTrace()))
	}
	return zap.Skip()
}
