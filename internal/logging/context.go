// internal/logging/context.go
package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/contextkeys"
)

// WithTraceID guarda el trace id del request en el contexto.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.TraceIDKey, traceID)
}

// TraceIDFrom extrae el trace id del contexto, si existe.
func TraceIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextkeys.TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// FieldsFromContext devuelve los campos de logging del request como zap.Field.
func FieldsFromContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if id := TraceIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}
