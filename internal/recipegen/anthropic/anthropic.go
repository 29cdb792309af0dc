// Package anthropic generates recipes through the Anthropic Messages
// API. Claude does not emit inline images, so this backend produces
// text-only chunk streams; recipes render without step photos.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/recipestudio/internal/recipegen"
)

// maxTokens leaves room for a long multi-step recipe; a typical
// response runs well under this.
const maxTokens = 4096

type Generator struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string, opts ...anthropic.ClientOption) *Generator {
	return &Generator{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// GenerateStream sends the prompt as a single user message and forwards
// text deltas as chunks. The SDK call blocks until the stream ends, so
// it runs in a goroutine feeding the returned channel; a failure after
// content has arrived surfaces as a single terminal Err event.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (<-chan recipegen.StreamEvent, error) {
	if g.model == "" {
		return nil, errors.New("anthropic model is required")
	}

	ch := make(chan recipegen.StreamEvent, 16)

	go func() {
		defer close(ch)

		_, err := g.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
			MessagesRequest: anthropic.MessagesRequest{
				Model:     anthropic.Model(g.model),
				MaxTokens: maxTokens,
				Messages: []anthropic.Message{
					anthropic.NewUserTextMessage(prompt),
				},
			},
			OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
				if data.Delta.Text == nil || *data.Delta.Text == "" {
					return
				}
				select {
				case ch <- recipegen.StreamEvent{Chunk: &recipegen.Chunk{Text: *data.Delta.Text}}:
				case <-ctx.Done():
				}
			},
		})
		if err != nil {
			// Includes cancellation: a stream cut short must never look
			// like a clean finish to the assembler.
			ch <- recipegen.StreamEvent{Err: fmt.Errorf("anthropic stream: %w", err)}
		}
	}()

	return ch, nil
}
