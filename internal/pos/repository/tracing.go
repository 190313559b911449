package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/till-pos/internal/pos/domain"
)

var tracer = otel.Tracer("pos-repository")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// spanError marks the span as failed and hands err back. Not-found is an
// ordinary outcome and leaves the span status alone.
func spanError(span trace.Span, err error) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
