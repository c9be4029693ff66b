package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pagecrafter/internal/config"
	"pagecrafter/internal/generator"
	"pagecrafter/internal/port"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
	providerName = "openai"
	doneSentinel = "[DONE]"
)

func init() {
	generator.RegisterProvider(providerName, func(cfg *config.GeneratorConfig) (port.Generator, error) {
		return NewGenerator(cfg), nil
	})
}

// Generator implements port.Generator using the OpenAI Chat Completions API
// in streaming mode.
type Generator struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewGenerator creates an OpenAI generator. cfg.BaseURL overrides the API
// endpoint, which also allows OpenAI-compatible servers.
func NewGenerator(cfg *config.GeneratorConfig) *Generator {
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gemini") || strings.HasPrefix(model, "claude") {
		model = defaultModel
	}
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return &Generator{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: cfg.MaxTokens,
		endpoint:  endpoint,
		client:    generator.HTTPClient(cfg.TimeoutSecs),
	}
}

// Model returns the model identifier sent with each request.
func (g *Generator) Model() string { return g.model }

// Stream opens a streaming chat completion.
func (g *Generator) Stream(ctx context.Context, input port.GenerateInput) (port.FragmentStream, error) {
	reqBody := map[string]interface{}{
		"model":  g.model,
		"stream": true,
		"messages": []map[string]interface{}{
			{"role": "user", "content": input.Prompt},
		},
	}
	if g.maxTokens > 0 {
		reqBody["max_completion_tokens"] = g.maxTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	body, err := generator.OpenEventStream(g.client, req, providerName)
	if err != nil {
		return nil, err
	}

	return func(yield func(port.Fragment, error) bool) {
		defer func() { _ = body.Close() }()
		for ev, err := range generator.ReadSSE(body) {
			if err != nil {
				yield(port.Fragment{}, fmt.Errorf("reading openai stream: %w", err))
				return
			}
			if ev.Data == doneSentinel {
				return
			}
			if ev.Data == "" {
				continue
			}
			var chunk chatChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				yield(port.Fragment{}, fmt.Errorf("decoding openai chunk: %w", err))
				return
			}
			if chunk.Error != nil {
				yield(port.Fragment{}, fmt.Errorf("openai stream error: %s", chunk.Error.Message))
				return
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(port.Fragment{Text: choice.Delta.Content}, nil) {
					return
				}
			}
		}
		yield(port.Fragment{}, fmt.Errorf("openai stream ended before [DONE]: %w", io.ErrUnexpectedEOF))
	}, nil
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
