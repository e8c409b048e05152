package testutil

import "testing"

func TestReadSSEChunkStream(t *testing.T) {
	body := "event: chunk\ndata: {\"text\":\"O CPF\"}\n\n" +
		"event: chunk\ndata: {\"text\":\" é gratuito.\"}\n\n" +
		"event: done\ndata: {\"response\":\"O CPF é gratuito.\",\"sessionId\":\"abc-123\"}\n\n"

	events := ReadSSE(t, body)
	if len(events) != 3 {
		t.Fatalf("ReadSSE() = %d events, want 3", len(events))
	}
	if events[0].Name != "chunk" || events[1].Name != "chunk" {
		t.Errorf("event names = %q, %q, want chunk, chunk", events[0].Name, events[1].Name)
	}

	var done struct {
		Response  string `json:"response"`
		SessionID string `json:"sessionId"`
	}
	events[2].Decode(t, &done)
	if done.SessionID != "abc-123" {
		t.Errorf("done sessionId = %q, want abc-123", done.SessionID)
	}
	if done.Response != "O CPF é gratuito." {
		t.Errorf("done response = %q, want full answer", done.Response)
	}
}

func TestReadSSEDefaultsAndComments(t *testing.T) {
	body := ": keep-alive\n\n" +
		"data: primeira linha\ndata: segunda linha\n\n" +
		"event: error\ndata: {\"code\":\"EMPTY_QUERY\",\"message\":\"Pergunta vazia\"}\n\n"

	events := ReadSSE(t, body)
	if len(events) != 2 {
		t.Fatalf("ReadSSE() = %d events, want 2 (comment skipped)", len(events))
	}
	if events[0].Name != "message" {
		t.Errorf("nameless event Name = %q, want message", events[0].Name)
	}
	if events[0].Data != "primeira linha\nsegunda linha" {
		t.Errorf("multi-line data = %q, want lines joined", events[0].Data)
	}
	if events[1].Name != "error" {
		t.Errorf("event name = %q, want error", events[1].Name)
	}
}

func TestFirstEvent(t *testing.T) {
	events := []Event{
		{Name: "chunk", Data: `{"text":"a"}`},
		{Name: "done", Data: `{"response":"a","sessionId":"s"}`},
	}

	if got := FirstEvent(events, "done"); got == nil || got.Data != events[1].Data {
		t.Errorf("FirstEvent(done) = %+v, want the done event", got)
	}
	if got := FirstEvent(events, "error"); got != nil {
		t.Errorf("FirstEvent(error) = %+v, want nil", got)
	}
}
