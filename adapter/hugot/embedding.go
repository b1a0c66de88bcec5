package hugot

import (
	"context"
	"fmt"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) EmbedContent(ctx context.Context, content string) (ragchat.Vector, error) {
	if a.embedding == nil {
		return nil, fmt.Errorf("no embedding model configured")
	}
	embeddingResult, err := a.embedding.RunPipeline([]string{content})
	if err != nil {
		return nil, fmt.Errorf("running embedding pipeline: %w", err)
	}
	if len(embeddingResult.Embeddings) != 1 {
		return nil, fmt.Errorf("got %d embeddings, expected 1", len(embeddingResult.Embeddings))
	}
	return embeddingResult.Embeddings[0], nil
}
