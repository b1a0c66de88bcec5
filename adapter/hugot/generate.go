package hugot

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot/pipelines"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) Generate(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
	if a.generative == nil {
		return ragchat.Answer{}, fmt.Errorf("no generative model configured")
	}

	a.logger.Sugar().With(
		"model", a.generativeConfig.name,
		"documents", len(documents),
	).Info("generating answer")

	batchResult, err := a.generative.RunWithTemplate([][]pipelines.Message{
		{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return ragchat.Answer{}, fmt.Errorf("calling generative model: %w", err)
	}
	outputs := batchResult.GetOutput()
	if len(outputs) != 1 {
		return ragchat.Answer{}, fmt.Errorf("got %d outputs, expected 1", len(outputs))
	}

	result, ok := outputs[0].(string)
	if !ok {
		return ragchat.Answer{}, fmt.Errorf("unexpected output type %T", outputs[0])
	}

	a.logger.Sugar().Debugf("hugot response: %s", result)

	return ragchat.Answer{Text: result}, nil
}
