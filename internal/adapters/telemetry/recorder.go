package telemetry

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var _ sdktrace.SpanProcessor = (*Recorder)(nil)

// SpanRecord is a finished span flattened for display.
type SpanRecord struct {
	Name       string
	Depth      int
	Start      time.Time
	Duration   time.Duration
	Attributes map[string]string
	// Err is the status description of a failed span.
	Err string

	id     trace.SpanID
	parent trace.SpanID
}

// Recorder is a span processor keeping every finished span in memory.
type Recorder struct {
	mu    sync.Mutex
	spans []SpanRecord
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewProvider returns a tracer provider sampling every span into r.
func NewProvider(r *Recorder) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(r),
	)
}

// OnStart does nothing.
func (r *Recorder) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd records s.
func (r *Recorder) OnEnd(s sdktrace.ReadOnlySpan) {
	rec := SpanRecord{
		Name:       s.Name(),
		Start:      s.StartTime(),
		Duration:   s.EndTime().Sub(s.StartTime()),
		Attributes: make(map[string]string, len(s.Attributes())),
		id:         s.SpanContext().SpanID(),
		parent:     s.Parent().SpanID(),
	}
	for _, kv := range s.Attributes() {
		rec.Attributes[string(kv.Key)] = kv.Value.Emit()
	}
	if s.Status().Code == codes.Error {
		rec.Err = s.Status().Description
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, rec)
}

// Spans returns the recorded spans in start order, each with its depth below
// the outermost recorded span.
func (r *Recorder) Spans() []SpanRecord {
	r.mu.Lock()
	spans := slices.Clone(r.spans)
	r.mu.Unlock()

	parents := make(map[trace.SpanID]trace.SpanID, len(spans))
	for _, s := range spans {
		parents[s.id] = s.parent
	}
	for i := range spans {
		p := spans[i].parent
		for {
			next, ok := parents[p]
			if !ok {
				break
			}
			spans[i].Depth++
			p = next
		}
	}

	slices.SortStableFunc(spans, func(a, b SpanRecord) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.Depth - b.Depth
	})
	return spans
}

// ForceFlush does nothing.
func (r *Recorder) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (r *Recorder) Shutdown(_ context.Context) error {
	return nil
}
