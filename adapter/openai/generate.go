package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) Generate(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(a.params.MaxTokens)),
		Temperature: openai.Float(a.params.Temperature),
	}

	a.logger.Sugar().With(
		"model", a.model,
		"documents", len(documents),
	).Info("generating answer")

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ragchat.Answer{}, fmt.Errorf("creating chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return ragchat.Answer{}, fmt.Errorf("chat completion has no choices")
	}

	return ragchat.Answer{Text: completion.Choices[0].Message.Content}, nil
}
