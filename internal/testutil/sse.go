package testutil

import (
	"encoding/json"
	"strings"
	"testing"
)

// Event is one parsed server-sent event. The chat stream emits three kinds:
// "chunk" (partial answer text), "done" (final response and session id) and
// "error".
type Event struct {
	Name string // event field, "message" when the stream omits it
	Data string // data lines joined with newline
}

// ReadSSE parses an event-stream body. Events are separated by a blank
// line; comment lines are skipped.
func ReadSSE(t *testing.T, body string) []Event {
	t.Helper()

	var events []Event
	for _, block := range strings.Split(body, "\n\n") {
		var name string
		var data []string
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, ":"):
				// comment
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			}
		}
		if name == "" && len(data) == 0 {
			continue
		}
		if name == "" {
			name = "message"
		}
		events = append(events, Event{Name: name, Data: strings.Join(data, "\n")})
	}
	return events
}

// Decode unmarshals the event data into v, failing the test on bad JSON.
func (e Event) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(e.Data), v); err != nil {
		t.Fatalf("decoding %q event data %q: %v", e.Name, e.Data, err)
	}
}

// FirstEvent returns the first event with the given name, or nil.
func FirstEvent(events []Event, name string) *Event {
	for i := range events {
		if events[i].Name == name {
			return &events[i]
		}
	}
	return nil
}
