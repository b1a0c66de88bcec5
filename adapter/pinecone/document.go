package pinecone

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RichardKnop/ragchat"
)

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Namespace       string         `json:"namespace,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
	Filter          map[string]any `json:"filter,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (a *Adapter) SearchDocuments(ctx context.Context, filter ragchat.DocumentFilter, limit int) ([]ragchat.Document, error) {
	host, err := a.indexHost(ctx, filter.Index)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		Vector:          filter.Vector,
		TopK:            limit,
		Namespace:       a.namespace,
		IncludeMetadata: true,
		Filter:          metadataFilter(filter.Attributes),
	}

	var resp queryResponse
	if err := a.doJSON(ctx, http.MethodPost, host+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("querying index %s: %w", filter.Index, err)
	}

	documents := make([]ragchat.Document, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		doc := ragchat.Document{
			Metadata: make(map[string]any, len(match.Metadata)),
			Score:    match.Score,
		}
		for k, v := range match.Metadata {
			if k == a.textField {
				doc.Text, _ = v.(string)
				continue
			}
			doc.Metadata[k] = v
		}
		doc.Metadata["id"] = match.ID
		documents = append(documents, doc.Sanitize())
	}

	return documents, nil
}

// metadataFilter builds a Pinecone metadata filter, {"attr": {"$eq": value}} per attribute,
// combined with $and when there is more than one.
func metadataFilter(attributes ragchat.Filters) map[string]any {
	if len(attributes) == 0 {
		return nil
	}

	clauses := make([]any, 0, len(attributes))
	for _, key := range attributes.SortedKeys() {
		clauses = append(clauses, map[string]any{key: map[string]any{"$eq": attributes[key]}})
	}
	if len(clauses) == 1 {
		return clauses[0].(map[string]any)
	}
	return map[string]any{"$and": clauses}
}
