package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldProvider    = "ai_provider"
	FieldModel       = "ai_model"
	FieldRunID       = "run_id"
	FieldJobID       = "job_id"
	FieldCandidateID = "candidate_id"
	FieldRequestID   = "request_id"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Blank keys and values are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// AIFields describe the provider and model behind a scorer.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithAI(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

// WithRun tags every entry of one scoring run.
func WithRun(logger *zap.Logger, runID, jobID string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldRunID, Value: runID},
		StringField{Key: FieldJobID, Value: jobID},
	)...)
}

func Candidate(id string) zap.Field {
	return zap.String(FieldCandidateID, id)
}
