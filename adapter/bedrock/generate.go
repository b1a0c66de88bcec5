package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/RichardKnop/ragchat"
)

const contentType = "application/json"

func (a *Adapter) Generate(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
	c, ok := codecs[a.family]
	if !ok {
		return ragchat.Answer{}, fmt.Errorf("unsupported bedrock model family: %q", a.family)
	}

	body, err := c.encode(prompt, a.params)
	if err != nil {
		return ragchat.Answer{}, fmt.Errorf("encoding request: %w", err)
	}

	a.logger.Sugar().With(
		"model", a.generativeModel,
		"documents", len(documents),
	).Info("generating answer")

	out, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.generativeModel),
		ContentType: aws.String(contentType),
		Accept:      aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return ragchat.Answer{}, fmt.Errorf("invoking %s: %w", a.generativeModel, err)
	}

	text, err := c.decode(out.Body)
	if err != nil {
		return ragchat.Answer{}, err
	}

	return ragchat.Answer{Text: text}, nil
}
