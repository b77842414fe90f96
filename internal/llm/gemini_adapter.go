package llm

import (
	"context"
	"fmt"
	"os"

	"tasktalk/internal/chat"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

type GeminiAdapter struct {
	client *googleai.GoogleAI
	model  string
}

func NewGeminiAdapter(model, baseURL string) (chat.Adapter, error) {
	effectiveModel := model
	if effectiveModel == "" {
		effectiveModel = googleai.DefaultOptions().DefaultModel
	}

	opts := []googleai.Option{
		googleai.WithDefaultModel(effectiveModel),
	}
	if baseURL != "" {
		opts = append(opts, googleai.WithRest())
	}
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key != "" {
		opts = append(opts, googleai.WithAPIKey(key))
	}

	ctx := context.Background()
	client, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GeminiAdapter{
		client: client,
		model:  effectiveModel,
	}, nil
}

func (a *GeminiAdapter) Reply(ctx context.Context, history []chat.Message, tools []llms.Tool) (string, []chat.ToolCall, error) {
	opts := []llms.CallOption{llms.WithModel(a.model)}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(tools))
	}

	resp, err := a.client.GenerateContent(ctx, convertHistory(history), opts...)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("empty response from Gemini model")
	}

	choice := resp.Choices[0]
	return choice.Content, collectToolCalls(choice), nil
}
