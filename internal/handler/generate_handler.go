package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/service"
)

// statusClientClosedRequest is recorded when the caller goes away mid-generation.
const statusClientClosedRequest = 499

// GenerateHandler serves the stateless generation API used by the editor UI.
// Errors are written as {"error": message} rather than the API envelope.
type GenerateHandler struct {
	generation service.GenerationService
	log        *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generation service.GenerationService, log *zap.Logger) *GenerateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerateHandler{generation: generation, log: log.Named("generate")}
}

// GenerateCodeRequest is the body of POST /api/generate. Message is the
// field name older clients send and is used when Prompt is empty.
type GenerateCodeRequest struct {
	Prompt       string `json:"prompt"`
	Message      string `json:"message"`
	PreviousHTML string `json:"previousHtml"`
	PreviousCSS  string `json:"previousCss"`
	PreviousJS   string `json:"previousJs"`

	PreviousPages map[string]domain.Page `json:"previousPages"`
}

// GenerateCodeResponse is the body of a successful POST /api/generate.
// Pages repeats the bundle's extra pages at the top level for clients that
// read them there.
type GenerateCodeResponse struct {
	Response string                 `json:"response"`
	Code     domain.CodeBundle      `json:"code"`
	Pages    map[string]domain.Page `json:"pages,omitempty"`
}

// GenerateDocumentRequest is the body of POST /api/generate-pdf.
type GenerateDocumentRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateDocumentResponse is the body of a successful POST /api/generate-pdf.
type GenerateDocumentResponse struct {
	Response string                `json:"response"`
	Document domain.ReportDocument `json:"document"`
}

// Code handles POST /api/generate
func (h *GenerateHandler) Code(c *gin.Context) {
	var req GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = req.Message
	}

	res, err := h.generation.GenerateCode(c.Request.Context(), service.CodeRequest{
		Prompt:       prompt,
		PreviousHTML: req.PreviousHTML,
		PreviousCSS:  req.PreviousCSS,
		PreviousJS:   req.PreviousJS,

		PreviousPages: req.PreviousPages,
	})
	if err != nil {
		h.fail(c, err, "Failed to generate code.")
		return
	}

	c.JSON(http.StatusOK, GenerateCodeResponse{
		Response: res.ResponseText,
		Code:     res.Document,
		Pages:    res.Document.Pages,
	})
}

// Document handles POST /api/generate-pdf
func (h *GenerateHandler) Document(c *gin.Context) {
	var req GenerateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.generation.GenerateDocument(c.Request.Context(), service.DocumentRequest{Prompt: req.Prompt})
	if err != nil {
		h.fail(c, err, "Failed to generate PDF content.")
		return
	}

	c.JSON(http.StatusOK, GenerateDocumentResponse{Response: res.ResponseText, Document: res.Document})
}

func (h *GenerateHandler) fail(c *gin.Context, err error, fallback string) {
	if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
		h.log.Debug("client cancelled generation", zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}

	status, _, msg := MapDomainError(err)
	if status == http.StatusInternalServerError && !errors.Is(err, domain.ErrGeneratorNotConfigured) {
		msg = fallback
	}
	logError(c, status, err)
	setRetryAfter(c, err)
	c.JSON(status, gin.H{"error": msg})
}
