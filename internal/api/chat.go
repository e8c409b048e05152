package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/guiacidadao/guia/internal/chat"
)

// maxChatBodyBytes limits chat request bodies.
const maxChatBodyBytes = 1024 * 1024

// SSE event types for chat streaming.
const (
	eventChunk = "chunk" // partial response text
	eventDone  = "done"  // stream completed successfully
	eventError = "error" // error occurred during streaming
)

// chunkPayload is the SSE data payload for streaming text chunks.
type chunkPayload struct {
	Text string `json:"text"`
}

// donePayload is the SSE data payload when streaming completes.
type donePayload struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// errorPayload is the SSE data payload when an error occurs.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// chatHandler handles chat endpoints. Both the synchronous and the streaming
// endpoint go through the same flow for consistency.
type chatHandler struct {
	flow   *chat.Flow
	logger *slog.Logger
}

// send handles the synchronous chat endpoint.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var input chat.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if input.Query == "" {
		writeError(w, http.StatusBadRequest, "empty_query", "Pergunta vazia")
		return
	}

	output, err := h.flow.Run(r.Context(), input)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// writeChatError maps turn errors to HTTP status codes.
func (h *chatHandler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyUtterance):
		writeError(w, http.StatusBadRequest, "empty_query", "Pergunta vazia")
	case errors.Is(err, chat.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, "invalid_session", "invalid session")
	case errors.Is(err, chat.ErrExecutionFailed):
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusBadGateway, "execution_failed", "answer generation failed")
	default:
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// stream handles SSE streaming chat requests, emitting partial responses as
// they arrive from the model.
func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	var input chat.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = writeEvent(w, flusher, eventError, errorPayload{
			Code:    "INVALID_REQUEST",
			Message: "Invalid request body",
		})
		return
	}
	if input.Query == "" {
		_ = writeEvent(w, flusher, eventError, errorPayload{
			Code:    "EMPTY_QUERY",
			Message: "Pergunta vazia",
		})
		return
	}

	ctx := r.Context()
	h.logger.Debug("SSE stream started", "sessionId", input.SessionID)

	var (
		finalOutput chat.Output
		streamErr   error
		chunks      int
	)

	for streamValue, err := range h.flow.Stream(ctx, input) {
		select {
		case <-ctx.Done():
			h.logger.Info("client disconnected", "sessionId", input.SessionID)
			return
		default:
		}

		if err != nil {
			streamErr = err
			break
		}

		if streamValue.Done {
			finalOutput = streamValue.Output
			break
		}

		if streamValue.Stream.Text != "" {
			chunks++
			if err := writeEvent(w, flusher, eventChunk, chunkPayload{
				Text: streamValue.Stream.Text,
			}); err != nil {
				// Write failure usually means the connection closed.
				h.logger.Error("failed to write chunk", "error", err)
				return
			}
		}
	}

	if streamErr != nil {
		h.streamError(w, flusher, streamErr)
		return
	}

	_ = writeEvent(w, flusher, eventDone, donePayload{
		Response:  finalOutput.Response,
		SessionID: finalOutput.SessionID,
	})

	h.logger.Info("SSE stream completed", "sessionId", finalOutput.SessionID, "chunks", chunks)
}

// streamError maps turn errors to SSE error events.
func (*chatHandler) streamError(w io.Writer, f http.Flusher, err error) {
	code := "STREAM_ERROR"
	switch {
	case errors.Is(err, chat.ErrEmptyUtterance):
		code = "EMPTY_QUERY"
	case errors.Is(err, chat.ErrInvalidSession):
		code = "INVALID_SESSION"
	case errors.Is(err, chat.ErrExecutionFailed):
		code = "EXECUTION_FAILED"
	}

	_ = writeEvent(w, f, eventError, errorPayload{
		Code:    code,
		Message: err.Error(),
	})
}

// writeEvent writes a single SSE event with JSON-encoded data.
// SSE format: "event: <type>\ndata: <json>\n\n"
func writeEvent[T any](w io.Writer, flusher http.Flusher, event string, data T) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	flusher.Flush()
	return nil
}
