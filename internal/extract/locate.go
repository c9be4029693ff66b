package extract

import "strings"

// Markers are the sentinel tokens that delimit the summary and the payload in
// model output. Matching is case-exact.
type Markers struct {
	Summary      string `json:"summary" yaml:"summary"`
	PayloadStart string `json:"payload_start" yaml:"payload_start"`
	PayloadEnd   string `json:"payload_end" yaml:"payload_end"`
}

// DefaultMarkers are the tokens the prompt catalog instructs models to emit.
var DefaultMarkers = Markers{
	Summary:      "RESPONSE:",
	PayloadStart: "JSON_START",
	PayloadEnd:   "JSON_END",
}

// WithDefaults fills empty tokens from DefaultMarkers.
func (m Markers) WithDefaults() Markers {
	if m.Summary == "" {
		m.Summary = DefaultMarkers.Summary
	}
	if m.PayloadStart == "" {
		m.PayloadStart = DefaultMarkers.PayloadStart
	}
	if m.PayloadEnd == "" {
		m.PayloadEnd = DefaultMarkers.PayloadEnd
	}
	return m
}

// Span is a located region of text. Found is false when the delimiting
// markers were not both present, in which case Text is empty.
type Span struct {
	Text  string
	Found bool
}

// Segments is the split of a model response into its two parts.
type Segments struct {
	Summary string
	Payload Span
}

// Locate splits text into a summary and a payload span.
//
// The summary runs from the first summary marker to the next payload opening
// marker, or to the end of text. When the marker is missing or introduces only
// whitespace, fallback is used instead.
//
// The payload is the shortest span between the first opening marker and the
// first closing marker after it. Without a closing marker the payload is absent.
func Locate(text string, markers Markers, fallback string) Segments {
	return Segments{
		Summary: locateSummary(text, markers, fallback),
		Payload: locatePayload(text, markers),
	}
}

func locateSummary(text string, m Markers, fallback string) string {
	i := strings.Index(text, m.Summary)
	if i < 0 {
		return fallback
	}
	rest := text[i+len(m.Summary):]
	if end := strings.Index(rest, m.PayloadStart); end >= 0 {
		rest = rest[:end]
	}
	if summary := strings.TrimSpace(rest); summary != "" {
		return summary
	}
	return fallback
}

func locatePayload(text string, m Markers) Span {
	start := strings.Index(text, m.PayloadStart)
	if start < 0 {
		return Span{}
	}
	body := text[start+len(m.PayloadStart):]
	end := strings.Index(body, m.PayloadEnd)
	if end < 0 {
		return Span{}
	}
	return Span{Text: strings.TrimSpace(body[:end]), Found: true}
}
