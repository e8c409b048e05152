package chat

import (
	"context"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"

	"github.com/guiacidadao/guia/internal/profile"
)

// FlowName is the registered genkit flow name.
const FlowName = "guia/chat"

// Input is the flow request.
type Input struct {
	Query     string           `json:"query"`
	SessionID string           `json:"sessionId,omitempty"`
	Profile   *profile.Profile `json:"perfil,omitempty"`
}

// Output is the flow response.
type Output struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// StreamChunk is one streamed piece of the response.
type StreamChunk struct {
	Text string `json:"text"`
}

// Flow is the streaming chat flow type.
type Flow = core.Flow[Input, Output, StreamChunk]

var (
	flowOnce sync.Once
	flowInst *Flow
)

// NewFlow returns the singleton chat flow, defining it on first call. Genkit
// panics when the same flow name is defined twice, hence the once guard.
func NewFlow(g *genkit.Genkit, agent *Agent) *Flow {
	flowOnce.Do(func() {
		flowInst = defineFlow(g, agent)
	})
	return flowInst
}

// ResetFlowForTesting clears the singleton so tests can define the flow
// against a fresh genkit instance.
func ResetFlowForTesting() {
	flowOnce = sync.Once{}
	flowInst = nil
}

func defineFlow(g *genkit.Genkit, agent *Agent) *Flow {
	return genkit.DefineStreamingFlow(g, FlowName,
		func(ctx context.Context, input Input, stream func(context.Context, StreamChunk) error) (Output, error) {
			var callback StreamCallback
			if stream != nil {
				callback = func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
					if text := chunkText(chunk); text != "" {
						return stream(ctx, StreamChunk{Text: text})
					}
					return nil
				}
			}

			resp, err := agent.HandleTurn(ctx, input.SessionID, input.Query, input.Profile, callback)
			if err != nil {
				return Output{}, err
			}

			// Direct replies never reach the model, so nothing was streamed.
			// Emit the canned text as a single chunk to keep the stream
			// contract uniform for clients.
			if resp.Direct && stream != nil {
				if err := stream(ctx, StreamChunk{Text: resp.Text}); err != nil {
					return Output{}, err
				}
			}

			return Output{Response: resp.Text, SessionID: resp.SessionID}, nil
		})
}
