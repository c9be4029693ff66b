package port

import (
	"context"
	"iter"
)

// Fragment is one chunk of model output text. Empty fragments are legal.
type Fragment struct {
	Text string
}

// FragmentStream is an ordered, finite, single-use sequence of fragments.
// A non-nil error ends the sequence.
type FragmentStream = iter.Seq2[Fragment, error]

// GenerateInput carries a fully rendered prompt to a model.
type GenerateInput struct {
	Prompt string
}

// Generator abstracts a streaming language model.
// Stream returns an error before any fragment when the call cannot be opened;
// failures after that surface through the stream.
type Generator interface {
	Stream(ctx context.Context, input GenerateInput) (FragmentStream, error)
	Model() string
}
