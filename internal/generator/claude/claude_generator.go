package claude

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
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	providerName = "claude"
)

func init() {
	generator.RegisterProvider(providerName, func(cfg *config.GeneratorConfig) (port.Generator, error) {
		return NewGenerator(cfg), nil
	})
}

// Generator implements port.Generator using the streaming Anthropic Messages API.
type Generator struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewGenerator creates a Claude generator. cfg.BaseURL overrides the API endpoint.
func NewGenerator(cfg *config.GeneratorConfig) *Generator {
	model := cfg.Model
	if model == "" || !isClaudeModel(model) {
		model = defaultModel
	}
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &Generator{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  endpoint,
		client:    generator.HTTPClient(cfg.TimeoutSecs),
	}
}

// Model returns the model identifier sent with each request.
func (g *Generator) Model() string { return g.model }

// Stream opens a streaming completion. The returned stream must be consumed
// (or broken out of) to release the connection.
func (g *Generator) Stream(ctx context.Context, input port.GenerateInput) (port.FragmentStream, error) {
	reqBody := map[string]interface{}{
		"model":      g.model,
		"max_tokens": g.maxTokens,
		"stream":     true,
		"messages": []map[string]interface{}{
			{"role": "user", "content": input.Prompt},
		},
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
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	body, err := generator.OpenEventStream(g.client, req, providerName)
	if err != nil {
		return nil, err
	}

	return func(yield func(port.Fragment, error) bool) {
		defer func() { _ = body.Close() }()
		for ev, err := range generator.ReadSSE(body) {
			if err != nil {
				yield(port.Fragment{}, fmt.Errorf("reading anthropic stream: %w", err))
				return
			}
			switch ev.Event {
			case "content_block_delta":
				var delta contentBlockDelta
				if err := json.Unmarshal([]byte(ev.Data), &delta); err != nil {
					yield(port.Fragment{}, fmt.Errorf("decoding anthropic delta: %w", err))
					return
				}
				if delta.Delta.Type != "text_delta" {
					continue
				}
				if !yield(port.Fragment{Text: delta.Delta.Text}, nil) {
					return
				}
			case "error":
				var apiErr streamError
				_ = json.Unmarshal([]byte(ev.Data), &apiErr)
				yield(port.Fragment{}, apiErr.asError())
				return
			case "message_stop":
				return
			}
		}
		yield(port.Fragment{}, fmt.Errorf("anthropic stream ended before message_stop: %w", io.ErrUnexpectedEOF))
	}, nil
}

type contentBlockDelta struct {
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

type streamError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e streamError) asError() error {
	err := fmt.Errorf("anthropic stream error (%s): %s", e.Error.Type, e.Error.Message)
	if e.Error.Type == "rate_limit_error" {
		return generator.NewRateLimitError(providerName, err, 0)
	}
	return err
}

func isClaudeModel(model string) bool {
	return strings.HasPrefix(model, "claude")
}
