package mocks

import (
	"pagecrafter/internal/port"
)

// StreamOf returns a fragment stream yielding texts in order.
func StreamOf(texts ...string) port.FragmentStream {
	return func(yield func(port.Fragment, error) bool) {
		for _, t := range texts {
			if !yield(port.Fragment{Text: t}, nil) {
				return
			}
		}
	}
}

// FailingStream yields texts and then fails with err.
func FailingStream(err error, texts ...string) port.FragmentStream {
	return func(yield func(port.Fragment, error) bool) {
		for _, t := range texts {
			if !yield(port.Fragment{Text: t}, nil) {
				return
			}
		}
		yield(port.Fragment{}, err)
	}
}
