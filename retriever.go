package ragchat

import (
	"context"
	"fmt"
)

type vectorRetriever struct {
	embedder  Embedder
	index     VectorIndex
	selection RetrieverSelection
}

// NewVectorRetriever returns a Retriever that embeds the query and runs a nearest neighbour
// search against the index named by the selection.
func NewVectorRetriever(embedder Embedder, index VectorIndex, selection RetrieverSelection) Retriever {
	return &vectorRetriever{
		embedder:  embedder,
		index:     index,
		selection: selection,
	}
}

func (r *vectorRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	// Embed the query contents.
	vector, err := r.embedder.EmbedContent(ctx, query)
	if err != nil {
		return nil, Unavailable(r.index.Name(), fmt.Errorf("embedding query with %s: %w", r.embedder.Name(), err))
	}

	// Find the most relevant (closest in vector space) documents to the query.
	documents, err := r.index.SearchDocuments(ctx, DocumentFilter{
		Index:      r.selection.IndexID,
		Vector:     vector,
		Attributes: r.selection.Filters,
	}, r.selection.TopK)
	if err != nil {
		return nil, Unavailable(r.index.Name(), fmt.Errorf("searching documents: %w", err))
	}

	return documents, nil
}
