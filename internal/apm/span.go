package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span wraps trace.Span with a small error-aware surface.
type Span struct {
	span trace.Span
}

// SetAttributes attaches attributes to the span.
func (s Span) SetAttributes(values ...attribute.KeyValue) {
	s.span.SetAttributes(values...)
}

// AddEvent records a point-in-time event on the span.
func (s Span) AddEvent(name string, options ...trace.EventOption) {
	s.span.AddEvent(name, options...)
}

// NoticeError records err and marks the span as failed.
func (s Span) NoticeError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End finishes the span.
func (s Span) End(options ...trace.SpanEndOption) {
	s.span.End(options...)
}
