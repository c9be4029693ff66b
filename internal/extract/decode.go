package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Outcome is the terminal state of one extraction.
type Outcome int

const (
	// OutcomeSuccess means the payload decoded into the expected shape.
	OutcomeSuccess Outcome = iota
	// OutcomeDegraded means payload markers were found but the content did not decode.
	OutcomeDegraded
	// OutcomeAbsent means no delimited payload was found.
	OutcomeAbsent
)

// User-facing explanations carried by error artifacts.
const (
	MessageAbsent   = "Error: no structured data found in the AI response."
	MessageDegraded = "Error: failed to parse the structured data returned by the AI."
)

var errNotObject = errors.New("payload is not a JSON object")

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeAbsent:
		return "absent"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Message returns the user-facing explanation for a failed outcome and ""
// for success.
func (o Outcome) Message() string {
	switch o {
	case OutcomeDegraded:
		return MessageDegraded
	case OutcomeAbsent:
		return MessageAbsent
	default:
		return ""
	}
}

// Decoded is the result of decoding a payload span. Value is only meaningful
// when Outcome is OutcomeSuccess; Cause is set for OutcomeDegraded.
type Decoded[T any] struct {
	Value   T
	Outcome Outcome
	Cause   error
}

// OK reports whether decoding succeeded.
func (d Decoded[T]) OK() bool {
	return d.Outcome == OutcomeSuccess
}

// Decode sanitizes the span and parses it as a single JSON object into T.
// Decode never panics and never returns an error; failures are reported
// through the Outcome.
func Decode[T any](payload Span) Decoded[T] {
	if !payload.Found {
		return Decoded[T]{Outcome: OutcomeAbsent}
	}

	text := Sanitize(payload.Text)
	if !strings.HasPrefix(text, "{") {
		return Decoded[T]{Outcome: OutcomeDegraded, Cause: errNotObject}
	}

	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Decoded[T]{Outcome: OutcomeDegraded, Cause: err}
	}
	return Decoded[T]{Value: v, Outcome: OutcomeSuccess}
}
