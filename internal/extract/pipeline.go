// Package extract turns a streamed model response into a typed artifact.
//
// A response is expected to carry a short human-readable summary introduced by
// a summary marker, followed by a JSON payload between an opening and a closing
// marker:
//
//	RESPONSE: I have created the page.
//	JSON_START
//	{"html": "...", "css": "...", "js": "..."}
//	JSON_END
//
// Extraction never fails on the shape of the model output. A missing or
// malformed payload is replaced by the pipeline's error artifact; only
// transport failures and cancellation are returned as errors.
package extract

import (
	"context"

	"go.uber.org/zap"

	"pagecrafter/internal/port"
)

// Config parameterises a Pipeline for one artifact shape.
type Config[T any] struct {
	// Name labels log entries and metrics, e.g. "web" or "document".
	Name            string
	Markers         Markers
	FallbackSummary string
	// ErrorArtifact builds the artifact returned when no usable payload exists.
	ErrorArtifact func(message string) T
	Logger        *zap.Logger
}

// Result is the outcome of one extraction. It is never mutated after Extract returns.
type Result[T any] struct {
	ResponseText string
	Document     T
	Outcome      Outcome
}

// Pipeline runs aggregation, location, sanitization and decoding for one
// artifact shape. A Pipeline holds no per-request state and is safe for
// concurrent use.
type Pipeline[T any] struct {
	name     string
	markers  Markers
	fallback string
	errorDoc func(message string) T
	log      *zap.Logger
}

// New builds a pipeline from cfg.
func New[T any](cfg Config[T]) *Pipeline[T] {
	log := cfg.Logger
	if log == nil {
		log = zap.L().Named("extract")
	}
	return &Pipeline[T]{
		name:     cfg.Name,
		markers:  cfg.Markers.WithDefaults(),
		fallback: cfg.FallbackSummary,
		errorDoc: cfg.ErrorArtifact,
		log:      log.With(zap.String("pipeline", cfg.Name)),
	}
}

// Name returns the pipeline label.
func (p *Pipeline[T]) Name() string { return p.name }

// Markers returns the sentinel tokens this pipeline scans for.
func (p *Pipeline[T]) Markers() Markers { return p.markers }

// Run aggregates stream and extracts the result from the full text.
func (p *Pipeline[T]) Run(ctx context.Context, stream port.FragmentStream) (Result[T], error) {
	text, err := Aggregate(ctx, stream)
	if err != nil {
		return Result[T]{}, err
	}
	return p.Extract(text), nil
}

// Extract splits an already aggregated response and decodes its payload.
func (p *Pipeline[T]) Extract(text string) Result[T] {
	segments := Locate(text, p.markers, p.fallback)
	decoded := Decode[T](segments.Payload)

	doc := decoded.Value
	switch decoded.Outcome {
	case OutcomeSuccess:
	case OutcomeDegraded:
		p.log.Warn("payload could not be decoded",
			zap.Error(decoded.Cause),
			zap.Int("payload_bytes", len(segments.Payload.Text)),
		)
		doc = p.errorDoc(decoded.Outcome.Message())
	case OutcomeAbsent:
		p.log.Warn("no payload markers in model response",
			zap.Int("response_bytes", len(text)),
		)
		doc = p.errorDoc(decoded.Outcome.Message())
	}

	return Result[T]{
		ResponseText: segments.Summary,
		Document:     doc,
		Outcome:      decoded.Outcome,
	}
}
