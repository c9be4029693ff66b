package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
	"pagecrafter/internal/generator"
	"pagecrafter/internal/port"
	"pagecrafter/internal/prompt"
	"pagecrafter/internal/service"
	"pagecrafter/mocks"
)

func testCatalog(t *testing.T) *prompt.Catalog {
	t.Helper()
	c, err := prompt.Default(extract.DefaultMarkers)
	require.NoError(t, err)
	return c
}

func promptContaining(s string) interface{} {
	return mock.MatchedBy(func(in port.GenerateInput) bool {
		return strings.Contains(in.Prompt, s)
	})
}

func TestGenerationService_GenerateDocument_Success(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.NewNop())

	gen.On("Model").Return("gemini-2.5-flash")
	gen.On("Stream", mock.Anything, promptContaining("quarterly report")).Return(mocks.StreamOf(
		"RESPONSE: Here is your report.\nJSON_START\n",
		`{"title":"Q3","sections":[{"heading":"Intro","content":"Hello"}]}`,
		"\nJSON_END",
	), nil)

	res, err := svc.GenerateDocument(context.Background(), service.DocumentRequest{Prompt: "write a quarterly report"})

	require.NoError(t, err)
	assert.Equal(t, extract.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "Here is your report.", res.ResponseText)
	assert.Equal(t, "Q3", res.Document.Title)
	require.Len(t, res.Document.Sections, 1)
	assert.Equal(t, "Intro", res.Document.Sections[0].Heading)
	gen.AssertExpectations(t)
}

func TestGenerationService_LogsUnderOwnNames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.New(core))

	gen.On("Model").Return("gemini-2.5-flash")
	gen.On("Stream", mock.Anything, mock.Anything).Return(mocks.StreamOf("no markers here"), nil)

	_, err := svc.GenerateCode(context.Background(), service.CodeRequest{Prompt: "a page"})
	require.NoError(t, err)

	completed := logs.FilterMessage("generation completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "generation", completed[0].LoggerName)
	absent := logs.FilterMessage("no payload markers in model response").All()
	require.Len(t, absent, 1)
	assert.Equal(t, "extract", absent[0].LoggerName)
}

func TestGenerationService_GenerateCode_PassesPreviousBundle(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.NewNop())

	gen.On("Model").Return("gemini-2.5-flash")
	gen.On("Stream", mock.Anything, promptContaining("<h1>Old</h1>")).Return(mocks.StreamOf(
		"RESPONSE: Updated.\nJSON_START\n```json\n",
		`{"html":"<h1>New</h1>","css":"h1{}","js":""}`,
		"\n```\nJSON_END",
	), nil)

	res, err := svc.GenerateCode(context.Background(), service.CodeRequest{
		Prompt:       "make the heading say New",
		PreviousHTML: "<h1>Old</h1>",
	})

	require.NoError(t, err)
	assert.Equal(t, extract.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "<h1>New</h1>", res.Document.HTML)
	gen.AssertExpectations(t)
}

func TestGenerationService_GenerateCode_DegradedPayload(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.NewNop())

	gen.On("Model").Return("gemini-2.5-flash")
	gen.On("Stream", mock.Anything, mock.Anything).Return(mocks.StreamOf(
		"RESPONSE: Done.\nJSON_START\n{\"html\": broken\nJSON_END",
	), nil)

	res, err := svc.GenerateCode(context.Background(), service.CodeRequest{Prompt: "a page"})

	require.NoError(t, err)
	assert.Equal(t, extract.OutcomeDegraded, res.Outcome)
	assert.Equal(t, "Done.", res.ResponseText)
	assert.Contains(t, res.Document.HTML, extract.MessageDegraded)
}

func TestGenerationService_EmptyPrompt(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.NewNop())

	res, err := svc.GenerateDocument(context.Background(), service.DocumentRequest{Prompt: "   "})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)
	gen.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything)
}

func TestGenerationService_NotConfigured(t *testing.T) {
	svc := service.NewGenerationService(nil, testCatalog(t), zap.NewNop())

	res, err := svc.GenerateCode(context.Background(), service.CodeRequest{Prompt: "a page"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrGeneratorNotConfigured)
}

func TestGenerationService_OpenFailure(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.NewNop())

	rlErr := generator.NewRateLimitError("gemini", errors.New("quota"), 30)
	gen.On("Stream", mock.Anything, mock.Anything).Return(nil, rlErr)

	res, err := svc.GenerateDocument(context.Background(), service.DocumentRequest{Prompt: "report"})

	assert.Nil(t, res)
	var got *generator.RateLimitError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 30*time.Second, got.RetryAfter)
}

func TestGenerationService_MidStreamFailure(t *testing.T) {
	gen := new(mocks.MockGenerator)
	svc := service.NewGenerationService(gen, testCatalog(t), zap.NewNop())

	transportErr := errors.New("connection reset")
	gen.On("Stream", mock.Anything, mock.Anything).Return(
		mocks.FailingStream(transportErr, "RESPONSE: partial"), nil)

	res, err := svc.GenerateDocument(context.Background(), service.DocumentRequest{Prompt: "report"})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, transportErr)
}
