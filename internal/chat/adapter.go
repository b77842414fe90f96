package chat

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Adapter abstracts chat completion providers.
type Adapter interface {
	// Reply sends the history and the function catalog to the model and
	// returns the assistant text plus any function calls it emitted.
	Reply(ctx context.Context, history []Message, tools []llms.Tool) (text string, toolCalls []ToolCall, err error)
}
