package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
	"pagecrafter/internal/generator"
	"pagecrafter/internal/metrics"
	"pagecrafter/internal/port"
	"pagecrafter/internal/prompt"
)

// CodeRequest asks for a new or revised web page bundle.
type CodeRequest struct {
	Prompt       string
	PreviousHTML string
	PreviousCSS  string
	PreviousJS   string
	// PreviousPages are the extra pages of the bundle being revised.
	PreviousPages map[string]domain.Page
}

// DocumentRequest asks for a report document.
type DocumentRequest struct {
	Prompt string
}

// CodeResult is the extraction result of the web pipeline.
type CodeResult = extract.Result[domain.CodeBundle]

// DocumentResult is the extraction result of the document pipeline.
type DocumentResult = extract.Result[domain.ReportDocument]

// GenerationService runs a prompt through the model and the extraction pipeline.
// Only configuration and transport failures are returned as errors; unusable
// model output yields a result carrying an error artifact.
type GenerationService interface {
	GenerateCode(ctx context.Context, req CodeRequest) (*CodeResult, error)
	GenerateDocument(ctx context.Context, req DocumentRequest) (*DocumentResult, error)
}

type generationService struct {
	gen     port.Generator
	prompts *prompt.Catalog
	code    *extract.CodePipeline
	doc     *extract.DocumentPipeline
	log     *zap.Logger
}

// NewGenerationService creates a GenerationService. gen may be nil when no
// provider is configured; every call then fails with
// domain.ErrGeneratorNotConfigured without contacting a model.
func NewGenerationService(gen port.Generator, prompts *prompt.Catalog, log *zap.Logger) GenerationService {
	if log == nil {
		log = zap.NewNop()
	}
	markers := prompts.Markers()
	return &generationService{
		gen:     gen,
		prompts: prompts,
		code:    extract.NewCodePipeline(markers, log.Named("extract")),
		doc:     extract.NewDocumentPipeline(markers, log.Named("extract")),
		log:     log.Named("generation"),
	}
}

func (s *generationService) GenerateCode(ctx context.Context, req CodeRequest) (*CodeResult, error) {
	return generate(ctx, s, s.code, domain.ProjectKindWeb, prompt.Data{
		Prompt:       req.Prompt,
		PreviousHTML: req.PreviousHTML,
		PreviousCSS:  req.PreviousCSS,
		PreviousJS:   req.PreviousJS,

		PreviousPages: req.PreviousPages,
	})
}

func (s *generationService) GenerateDocument(ctx context.Context, req DocumentRequest) (*DocumentResult, error) {
	return generate(ctx, s, s.doc, domain.ProjectKindDocument, prompt.Data{Prompt: req.Prompt})
}

func generate[T any](
	ctx context.Context,
	s *generationService,
	p *extract.Pipeline[T],
	kind domain.ProjectKind,
	data prompt.Data,
) (*extract.Result[T], error) {
	name := p.Name()
	if strings.TrimSpace(data.Prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if s.gen == nil {
		metrics.GenerationFailures.WithLabelValues(name, "not_configured").Inc()
		return nil, domain.ErrGeneratorNotConfigured
	}

	text, err := s.prompts.Render(kind, data)
	if err != nil {
		return nil, fmt.Errorf("generation.%s: %w", name, err)
	}

	start := time.Now()
	stream, err := s.gen.Stream(ctx, port.GenerateInput{Prompt: text})
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(name, failureReason(err)).Inc()
		return nil, fmt.Errorf("generation.%s: %w: %w", name, domain.ErrGenerationFailed, err)
	}

	result, err := p.Run(ctx, stream)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(name, failureReason(err)).Inc()
		return nil, fmt.Errorf("generation.%s: %w: %w", name, domain.ErrGenerationFailed, err)
	}

	elapsed := time.Since(start)
	metrics.GenerationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	metrics.ExtractionOutcomes.WithLabelValues(name, result.Outcome.String()).Inc()
	s.log.Info("generation completed",
		zap.String("pipeline", name),
		zap.String("model", s.gen.Model()),
		zap.Stringer("outcome", result.Outcome),
		zap.Duration("elapsed", elapsed),
	)
	return &result, nil
}

func failureReason(err error) string {
	var rlErr *generator.RateLimitError
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rlErr):
		return "rate_limited"
	default:
		return "transport"
	}
}
