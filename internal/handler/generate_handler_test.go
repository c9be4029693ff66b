package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
	"pagecrafter/internal/generator"
	"pagecrafter/internal/handler"
	"pagecrafter/internal/service"
	"pagecrafter/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupGenerateRouter(gen *mocks.MockGenerationService) *gin.Engine {
	h := handler.NewGenerateHandler(gen, zap.NewNop())
	r := gin.New()
	r.POST("/api/generate", h.Code)
	r.POST("/api/generate-pdf", h.Document)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGenerateHandler_Code_Success(t *testing.T) {
	gen := new(mocks.MockGenerationService)
	gen.On("GenerateCode", mock.Anything, service.CodeRequest{
		Prompt:       "a landing page",
		PreviousHTML: "<p>old</p>",
	}).Return(&service.CodeResult{
		ResponseText: "I built it.",
		Document:     domain.CodeBundle{HTML: "<h1>Hi</h1>", CSS: "h1{}", JS: ""},
		Outcome:      extract.OutcomeSuccess,
	}, nil)

	w := postJSON(setupGenerateRouter(gen), "/api/generate", map[string]string{
		"prompt":       "a landing page",
		"previousHtml": "<p>old</p>",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "I built it.", resp["response"])
	code := resp["code"].(map[string]interface{})
	assert.Equal(t, "<h1>Hi</h1>", code["html"])
	assert.Equal(t, "h1{}", code["css"])
	assert.NotContains(t, code, "pages")
	assert.NotContains(t, resp, "pages")
	gen.AssertExpectations(t)
}

func TestGenerateHandler_Code_MultiPageBundle(t *testing.T) {
	gen := new(mocks.MockGenerationService)
	gen.On("GenerateCode", mock.Anything, service.CodeRequest{Prompt: "a bakery site"}).
		Return(&service.CodeResult{
			ResponseText: "Two pages.",
			Document: domain.CodeBundle{
				HTML: "<h1>Home</h1>",
				Pages: map[string]domain.Page{
					"menu": {Title: "Menu", HTML: "<h1>Menu</h1>"},
				},
			},
			Outcome: extract.OutcomeSuccess,
		}, nil)

	w := postJSON(setupGenerateRouter(gen), "/api/generate", map[string]string{"prompt": "a bakery site"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	require.Contains(t, resp, "pages")
	pages := resp["pages"].(map[string]interface{})
	menu := pages["menu"].(map[string]interface{})
	assert.Equal(t, "Menu", menu["title"])
	assert.Equal(t, "<h1>Menu</h1>", menu["html"])
	code := resp["code"].(map[string]interface{})
	assert.Equal(t, "<h1>Home</h1>", code["html"])
}

func TestGenerateHandler_Code_LegacyMessageField(t *testing.T) {
	gen := new(mocks.MockGenerationService)
	gen.On("GenerateCode", mock.Anything, service.CodeRequest{Prompt: "old client"}).Return(&service.CodeResult{
		ResponseText: extract.FallbackCodeSummary,
		Document:     domain.ErrorCodeBundle(extract.MessageAbsent),
		Outcome:      extract.OutcomeAbsent,
	}, nil)

	w := postJSON(setupGenerateRouter(gen), "/api/generate", map[string]string{"message": "old client"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, extract.FallbackCodeSummary, resp["response"])
	gen.AssertExpectations(t)
}

func TestGenerateHandler_Document_ErrorDocumentIsStill200(t *testing.T) {
	gen := new(mocks.MockGenerationService)
	gen.On("GenerateDocument", mock.Anything, service.DocumentRequest{Prompt: "report"}).Return(&service.DocumentResult{
		ResponseText: "Here you go.",
		Document:     domain.ErrorReportDocument(extract.MessageDegraded),
		Outcome:      extract.OutcomeDegraded,
	}, nil)

	w := postJSON(setupGenerateRouter(gen), "/api/generate-pdf", map[string]string{"prompt": "report"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "Here you go.", resp["response"])
	doc := resp["document"].(map[string]interface{})
	assert.Equal(t, domain.ErrorTitle, doc["title"])
	sections := doc["sections"].([]interface{})
	require.Len(t, sections, 1)
	assert.Equal(t, extract.MessageDegraded, sections[0].(map[string]interface{})["content"])
}

func TestGenerateHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantRetry  string
	}{
		{
			name:       "empty prompt",
			err:        domain.ErrEmptyPrompt,
			wantStatus: http.StatusBadRequest,
			wantError:  "prompt must not be empty",
		},
		{
			name:       "missing key",
			err:        domain.ErrGeneratorNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantError:  "generator API key is not configured",
		},
		{
			name:       "transport failure",
			err:        errors.Join(domain.ErrGenerationFailed, errors.New("connection reset")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to generate PDF content.",
		},
		{
			name:       "provider rate limit",
			err:        generator.NewRateLimitError("gemini", errors.New("quota"), 12),
			wantStatus: http.StatusTooManyRequests,
			wantRetry:  "12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mocks.MockGenerationService)
			gen.On("GenerateDocument", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := postJSON(setupGenerateRouter(gen), "/api/generate-pdf", map[string]string{"prompt": "report"})

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeBody(t, w)
			assert.NotEmpty(t, resp["error"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
		})
	}
}

func TestGenerateHandler_InvalidBody(t *testing.T) {
	gen := new(mocks.MockGenerationService)
	r := setupGenerateRouter(gen)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	gen.AssertNotCalled(t, "GenerateCode", mock.Anything, mock.Anything)
}

func TestGenerateHandler_ClientCancelled(t *testing.T) {
	gen := new(mocks.MockGenerationService)
	gen.On("GenerateCode", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	r := setupGenerateRouter(gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, "/api/generate", bytes.NewBufferString(`{"prompt":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, 499, w.Code)
	assert.Empty(t, w.Body.String())
}
