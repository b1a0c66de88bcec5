package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/RichardKnop/ragchat"
)

type embeddingRequest struct {
	InputText string `json:"inputText"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (a *Adapter) EmbedContent(ctx context.Context, content string) (ragchat.Vector, error) {
	body, err := json.Marshal(embeddingRequest{InputText: content})
	if err != nil {
		return nil, err
	}

	out, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.embeddingModel),
		ContentType: aws.String(contentType),
		Accept:      aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", a.embeddingModel, err)
	}

	var resp embeddingResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshalling embedding response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}

	return resp.Embedding, nil
}
