package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldOutcome   = "semantic_outcome"
	FieldRequestID = "request_id"
)

// Fields turns key/value pairs into string fields. Pairs with a blank key or
// value are skipped, as is a trailing key without a value.
func Fields(pairs ...string) []zap.Field {
	result := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithCommonFields tags the logger with the AI provider and model.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, Fields(FieldProvider, provider, FieldModel, model)...)
}

// Outcome records how the semantic scoring step ended.
func Outcome(kind string) zap.Field {
	return zap.String(FieldOutcome, kind)
}

func RequestID(id string) zap.Field {
	return zap.String(FieldRequestID, id)
}
