package llm

import (
	"context"
	"fmt"
	"os"

	"tasktalk/internal/chat"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

type AnthropicAdapter struct {
	client *anthropic.LLM
	model  string
}

func NewAnthropicAdapter(model string) (chat.Adapter, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(model),
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		opts = append(opts, anthropic.WithToken(apiKey))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}
	return &AnthropicAdapter{client: client, model: model}, nil
}

func (a *AnthropicAdapter) Reply(ctx context.Context, history []chat.Message, tools []llms.Tool) (string, []chat.ToolCall, error) {
	opts := []llms.CallOption{llms.WithModel(a.model)}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(tools))
	}

	resp, err := a.client.GenerateContent(ctx, convertHistory(history), opts...)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("empty response from model")
	}

	choice := resp.Choices[0]
	return choice.Content, collectToolCalls(choice), nil
}
