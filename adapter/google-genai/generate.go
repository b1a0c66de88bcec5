package googlegenai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) Generate(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(a.params.MaxTokens),
		Temperature:     genai.Ptr(float32(a.params.Temperature)),
	}

	a.logger.Sugar().With(
		"model", a.generativeModel,
		"documents", len(documents),
	).Info("generating answer")

	resp, err := a.client.Models.GenerateContent(
		ctx,
		a.generativeModel,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return ragchat.Answer{}, fmt.Errorf("calling generative model: %w", err)
	}
	if len(resp.Candidates) != 1 {
		return ragchat.Answer{}, fmt.Errorf("got %v candidates, expected 1", len(resp.Candidates))
	}

	a.logger.Sugar().Debugf("genai response: %s", resp.Text())

	return ragchat.Answer{Text: resp.Text()}, nil
}
