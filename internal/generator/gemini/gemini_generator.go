package gemini

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"sync/atomic"

	"google.golang.org/genai"

	"pagecrafter/internal/config"
	"pagecrafter/internal/generator"
	"pagecrafter/internal/port"
)

const (
	defaultModel = "gemini-2.5-flash"
	providerName = "gemini"
)

func init() {
	generator.RegisterProvider(providerName, func(cfg *config.GeneratorConfig) (port.Generator, error) {
		return NewGenerator(context.Background(), cfg)
	})
}

// Generator implements port.Generator with the Gemini API through the genai SDK.
type Generator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGenerator creates a Gemini generator. cfg.BaseURL overrides the API host.
func NewGenerator(ctx context.Context, cfg *config.GeneratorConfig) (*Generator, error) {
	model := cfg.Model
	if model == "" || !strings.HasPrefix(model, "gemini") {
		model = defaultModel
	}

	httpClient := generator.HTTPClient(cfg.TimeoutSecs)
	httpClient.Transport = &statusRecorder{base: http.DefaultTransport}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(cfg.ThinkingBudget)),
		},
	}
	if cfg.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(cfg.MaxTokens)
	}

	return &Generator{client: client, model: model, config: genCfg}, nil
}

// Model returns the model identifier sent with each request.
func (g *Generator) Model() string { return g.model }

// Stream opens a streaming generation. The first response is awaited before
// returning so that authentication and quota failures are reported here
// rather than through the stream.
func (g *Generator) Stream(ctx context.Context, input port.GenerateInput) (port.FragmentStream, error) {
	status := &callStatus{}
	ctx = context.WithValue(ctx, callStatusKey{}, status)

	seq := g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(input.Prompt), g.config)
	next, stop := iter.Pull2(seq)

	first, err, ok := next()
	if err != nil {
		stop()
		return nil, status.wrap(err)
	}

	return func(yield func(port.Fragment, error) bool) {
		defer stop()
		resp := first
		for ok {
			if err != nil {
				yield(port.Fragment{}, status.wrap(err))
				return
			}
			if !yield(port.Fragment{Text: resp.Text()}, nil) {
				return
			}
			resp, err, ok = next()
		}
	}, nil
}

type callStatusKey struct{}

// callStatus records a 429 seen by the transport for one Stream call. The
// SDK's error values do not carry the Retry-After header.
type callStatus struct {
	rateLimited atomic.Bool
	retryAfter  atomic.Int64
}

func (s *callStatus) wrap(err error) error {
	base := fmt.Errorf("gemini generate: %w", err)
	if s.rateLimited.Load() {
		return generator.NewRateLimitError(providerName, base, int(s.retryAfter.Load()))
	}
	return base
}

// statusRecorder is an http.RoundTripper that reports 429 responses to the
// callStatus carried by the request context.
type statusRecorder struct {
	base http.RoundTripper
}

func (t *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}
	if status, ok := req.Context().Value(callStatusKey{}).(*callStatus); ok {
		status.rateLimited.Store(true)
		status.retryAfter.Store(int64(generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))))
	}
	return resp, nil
}
