// Package telemetry traces loader calls with OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
)

// Span attribute keys.
const (
	AttrLoader   = "twine.loader"
	AttrTemplate = "twine.template"
	AttrExists   = "twine.exists"
	AttrResult   = "twine.result"
)

var _ ports.Loader = (*Loader)(nil)

// Loader wraps a ports.Loader and records a span for every call.
type Loader struct {
	next   ports.Loader
	name   string
	tracer trace.Tracer
}

// Wrap returns a Loader tracing calls to next with tracer.
func Wrap(next ports.Loader, tracer trace.Tracer) *Loader {
	name := fmt.Sprintf("%T", next)
	if s, ok := next.(fmt.Stringer); ok {
		name = s.String()
	}
	return &Loader{next: next, name: name, tracer: tracer}
}

// String returns the wrapped loader's description.
func (l *Loader) String() string {
	return l.name
}

func (l *Loader) start(ctx context.Context, op, name string) (context.Context, trace.Span) {
	return l.tracer.Start(ctx, "loader."+op, trace.WithAttributes(
		attribute.String(AttrLoader, l.name),
		attribute.String(AttrTemplate, name),
	))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Exists implements ports.Loader.
func (l *Loader) Exists(ctx context.Context, name string) bool {
	ctx, span := l.start(ctx, "exists", name)
	ok := l.next.Exists(ctx, name)
	span.SetAttributes(attribute.Bool(AttrExists, ok))
	span.End()
	return ok
}

// Source implements ports.Loader.
func (l *Loader) Source(ctx context.Context, name string) (*domain.Source, error) {
	ctx, span := l.start(ctx, "source", name)
	src, err := l.next.Source(ctx, name)
	if err == nil && src.Path != "" {
		span.SetAttributes(attribute.String(AttrResult, src.Path))
	}
	end(span, err)
	return src, err
}

// CacheKey implements ports.Loader.
func (l *Loader) CacheKey(ctx context.Context, name string) (string, error) {
	ctx, span := l.start(ctx, "cache_key", name)
	key, err := l.next.CacheKey(ctx, name)
	if err == nil {
		span.SetAttributes(attribute.String(AttrResult, key))
	}
	end(span, err)
	return key, err
}

// IsFresh implements ports.Loader.
func (l *Loader) IsFresh(ctx context.Context, name string, t time.Time) (bool, error) {
	ctx, span := l.start(ctx, "is_fresh", name)
	fresh, err := l.next.IsFresh(ctx, name, t)
	if err == nil {
		span.SetAttributes(attribute.Bool(AttrResult, fresh))
	}
	end(span, err)
	return fresh, err
}

// StartOperation starts a span for op on template name. The returned function
// ends the span, marking it failed when err is non-nil.
func StartOperation(ctx context.Context, tracer trace.Tracer, op, name string) (context.Context, func(err error)) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attribute.String(AttrTemplate, name)))
	return ctx, func(err error) { end(span, err) }
}
