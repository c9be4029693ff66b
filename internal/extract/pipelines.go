package extract

import (
	"go.uber.org/zap"

	"pagecrafter/internal/domain"
)

// Fallback summaries used when a response carries no summary.
const (
	FallbackCodeSummary     = "I have generated your web page."
	FallbackDocumentSummary = "I have generated your document content."
)

// CodePipeline extracts web page bundles.
type CodePipeline = Pipeline[domain.CodeBundle]

// DocumentPipeline extracts report documents.
type DocumentPipeline = Pipeline[domain.ReportDocument]

// NewCodePipeline returns the web page pipeline.
func NewCodePipeline(markers Markers, log *zap.Logger) *CodePipeline {
	return New(Config[domain.CodeBundle]{
		Name:            "web",
		Markers:         markers,
		FallbackSummary: FallbackCodeSummary,
		ErrorArtifact:   domain.ErrorCodeBundle,
		Logger:          log,
	})
}

// NewDocumentPipeline returns the report document pipeline.
func NewDocumentPipeline(markers Markers, log *zap.Logger) *DocumentPipeline {
	return New(Config[domain.ReportDocument]{
		Name:            "document",
		Markers:         markers,
		FallbackSummary: FallbackDocumentSummary,
		ErrorArtifact:   domain.ErrorReportDocument,
		Logger:          log,
	})
}
