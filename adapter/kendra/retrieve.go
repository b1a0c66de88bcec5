package kendra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/aws/aws-sdk-go-v2/service/kendra/types"

	"github.com/RichardKnop/ragchat"
)

// Retriever returns a ragchat.Retriever querying the Kendra index named by the selection.
func (a *Adapter) Retriever(selection ragchat.RetrieverSelection) ragchat.Retriever {
	return ragchat.RetrieveFunc(func(ctx context.Context, query string) ([]ragchat.Document, error) {
		return a.Retrieve(ctx, selection, query)
	})
}

func (a *Adapter) Retrieve(ctx context.Context, selection ragchat.RetrieverSelection, query string) ([]ragchat.Document, error) {
	input := &kendra.RetrieveInput{
		IndexId:         aws.String(selection.IndexID),
		QueryText:       aws.String(query),
		PageSize:        aws.Int32(int32(selection.TopK)),
		AttributeFilter: attributeFilter(selection.Filters),
	}

	a.logger.Sugar().With(
		"index", selection.IndexID,
		"top k", selection.TopK,
		"filters", selection.Filters,
	).Info("retrieving passages")

	out, err := a.client.Retrieve(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("retrieving from index %s: %w", selection.IndexID, err)
	}

	documents := make([]ragchat.Document, 0, len(out.ResultItems))
	for _, item := range out.ResultItems {
		documents = append(documents, toDocument(item).Sanitize())
	}

	return documents, nil
}

// attributeFilter turns equality filters into a Kendra filter. A single filter is sent as is,
// several are combined with AndAllFilters.
func attributeFilter(filters ragchat.Filters) *types.AttributeFilter {
	if len(filters) == 0 {
		return nil
	}

	equals := make([]types.AttributeFilter, 0, len(filters))
	for _, key := range filters.SortedKeys() {
		equals = append(equals, types.AttributeFilter{
			EqualsTo: &types.DocumentAttribute{
				Key: aws.String(key),
				Value: &types.DocumentAttributeValue{
					StringValue: aws.String(filters[key]),
				},
			},
		})
	}

	if len(equals) == 1 {
		return &equals[0]
	}
	return &types.AttributeFilter{AndAllFilters: equals}
}

var confidenceScores = map[types.ScoreConfidence]float64{
	types.ScoreConfidenceVeryHigh: 1,
	types.ScoreConfidenceHigh:     0.75,
	types.ScoreConfidenceMedium:   0.5,
	types.ScoreConfidenceLow:      0.25,
}

func toDocument(item types.RetrieveResultItem) ragchat.Document {
	doc := ragchat.Document{
		Text:     aws.ToString(item.Content),
		Metadata: map[string]any{},
	}
	if item.DocumentId != nil {
		doc.Metadata["document_id"] = aws.ToString(item.DocumentId)
	}
	if item.DocumentTitle != nil {
		doc.Metadata["title"] = aws.ToString(item.DocumentTitle)
	}
	if item.DocumentURI != nil {
		doc.Metadata["source"] = aws.ToString(item.DocumentURI)
	}
	if item.ScoreAttributes != nil {
		doc.Metadata["score_confidence"] = string(item.ScoreAttributes.ScoreConfidence)
		doc.Score = confidenceScores[item.ScoreAttributes.ScoreConfidence]
	}
	return doc
}
