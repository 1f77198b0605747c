package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	operatorKey  ctxKey = "operator_id"
)

// Config mirrors config.LoggerConfig but avoids importing the config package here.
type Config struct {
	Level string
	// Encoding is json (default) or console.
	Encoding string
	// Service, when set, is attached to every entry.
	Service string
	// Output defaults to stdout. The CLI points it at stderr so command
	// output stays machine-readable.
	Output io.Writer
}

// New builds a zap.Logger. An unknown level falls back to info; an unknown
// encoding is a configuration error.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoder, err := newEncoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	sink := zapcore.Lock(zapcore.AddSync(out))

	opts := []zap.Option{zap.AddCaller(), zap.ErrorOutput(sink)}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zap.New(zapcore.NewCore(encoder, sink, level), opts...), nil
}

func newEncoder(encoding string) (zapcore.Encoder, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	switch encoding {
	case "", "json":
		return zapcore.NewJSONEncoder(encoderCfg), nil
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg), nil
	default:
		return nil, fmt.Errorf("logger: unknown encoding %q", encoding)
	}
}

// ContextWithRequestID attaches a request ID to the provided context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextWithOperator attaches the authenticated operator to ctx so entries
// logged for the request name who issued it.
func ContextWithOperator(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorKey, operatorID)
}

// WithRequestID enriches base with the request ID and operator stored in ctx.
func WithRequestID(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}
	fields := make([]zap.Field, 0, 2)
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if operator, ok := ctx.Value(operatorKey).(string); ok && operator != "" {
		fields = append(fields, zap.String("operator_id", operator))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
