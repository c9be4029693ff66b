package generator

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

// maxSSELine bounds a single event line; model deltas are far smaller.
const maxSSELine = 1 << 20

// SSEEvent is one server-sent event.
type SSEEvent struct {
	Event string
	Data  string
}

// ReadSSE iterates over the events of a text/event-stream body. Multi-line
// data fields are joined with "\n"; comments and unknown fields are skipped.
func ReadSSE(r io.Reader) iter.Seq2[SSEEvent, error] {
	return func(yield func(SSEEvent, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

		var ev SSEEvent
		var data []string
		flush := func() bool {
			if len(data) == 0 && ev.Event == "" {
				return true
			}
			ev.Data = strings.Join(data, "\n")
			ok := yield(ev, nil)
			ev, data = SSEEvent{}, nil
			return ok
		}

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if !flush() {
					return
				}
				continue
			}
			if strings.HasPrefix(line, ":") {
				continue
			}
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				ev.Event = value
			case "data":
				data = append(data, value)
			}
		}
		if err := scanner.Err(); err != nil {
			yield(SSEEvent{}, err)
			return
		}
		flush()
	}
}
