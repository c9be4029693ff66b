package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
)

// output is the JSON printed by extract and generate.
type output struct {
	Response string                 `json:"response"`
	Outcome  string                 `json:"outcome"`
	Code     *domain.CodeBundle     `json:"code,omitempty"`
	Document *domain.ReportDocument `json:"document,omitempty"`
}

func addKindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVarP(kind, "kind", "k", string(domain.ProjectKindWeb), "pipeline to run: web or document")
}

func parseKind(raw string) (domain.ProjectKind, error) {
	kind := domain.ProjectKind(raw)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidProjectKind, raw)
	}
	return kind, nil
}

func markersFrom(cfg *config.Config) extract.Markers {
	return extract.Markers{
		Summary:      cfg.Extraction.SummaryMarker,
		PayloadStart: cfg.Extraction.PayloadStart,
		PayloadEnd:   cfg.Extraction.PayloadEnd,
	}.WithDefaults()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
