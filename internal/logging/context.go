package logging

import (
	"context"
	"log/slog"

	"dubline/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTranscriptID is the standardized key for transcript identifiers.
	FieldTranscriptID = "transcript_id"
	// FieldTrackID is the standardized key for subtitle or voice track identifiers.
	FieldTrackID = "track_id"
	// FieldLanguage is the standardized key for canonical language codes.
	FieldLanguage = "language"
	// FieldStage is the standardized key for workflow stage names.
	FieldStage = "stage"
	// FieldLane is the standardized key for workflow lane names.
	FieldLane = "lane"
	// FieldEventType labels machine-consumable event categories.
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's suggested next step on failures.
	FieldErrorHint = "error_hint"
	// FieldCorrelationID is the standardized key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldTrackID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if lane, ok := services.LaneFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLane, lane))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
