// Package logging defines the structured-logging interface used across the
// project, with slog and zerolog implementations selected by New.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs, e.g.:
//
//	log.Info(ctx, "command done", "command", name, "elapsed", d)
//
// Pairs attached to ctx with ContextWith are added to every record.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying args in addition to any pairs
// already attached to it.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := contextFields(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func contextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// withContext puts the pairs carried by ctx in front of args, keeping a
// dangling key in args last.
func withContext(ctx context.Context, args []any) []any {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(args)+len(fields))
	out = append(out, fields...)
	return append(out, args...)
}
