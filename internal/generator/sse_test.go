package generator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecrafter/internal/generator"
)

func collectSSE(t *testing.T, body string) []generator.SSEEvent {
	t.Helper()
	var events []generator.SSEEvent
	for ev, err := range generator.ReadSSE(strings.NewReader(body)) {
		require.NoError(t, err)
		events = append(events, ev)
	}
	return events
}

func TestReadSSE_Events(t *testing.T) {
	body := ": keep-alive\n" +
		"event: message_start\ndata: {\"a\":1}\n\n" +
		"data: line one\ndata: line two\n\n" +
		"event: ping\n\n" +
		"data: no trailing blank line"

	events := collectSSE(t, body)

	assert.Equal(t, []generator.SSEEvent{
		{Event: "message_start", Data: `{"a":1}`},
		{Data: "line one\nline two"},
		{Event: "ping"},
		{Data: "no trailing blank line"},
	}, events)
}

func TestReadSSE_Empty(t *testing.T) {
	assert.Empty(t, collectSSE(t, ""))
	assert.Empty(t, collectSSE(t, "\n\n: comment\n\n"))
}

func TestReadSSE_StopsWhenConsumerBreaks(t *testing.T) {
	body := "data: 1\n\ndata: 2\n\ndata: 3\n\n"
	var seen []string
	for ev, err := range generator.ReadSSE(strings.NewReader(body)) {
		require.NoError(t, err)
		seen = append(seen, ev.Data)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, seen)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestReadSSE_ReaderError(t *testing.T) {
	var gotErr error
	for _, err := range generator.ReadSSE(failingReader{}) {
		gotErr = err
	}
	assert.EqualError(t, gotErr, "connection reset")
}
