package kendra

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/aws/aws-sdk-go-v2/service/kendra/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RichardKnop/ragchat"
)

type fakeAPI struct {
	input  *kendra.RetrieveInput
	output *kendra.RetrieveOutput
	err    error
}

func (f *fakeAPI) Retrieve(ctx context.Context, params *kendra.RetrieveInput, optFns ...func(*kendra.Options)) (*kendra.RetrieveOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func TestAdapter_Retrieve(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{output: &kendra.RetrieveOutput{
		ResultItems: []types.RetrieveResultItem{
			{
				Content:         aws.String("  Democracy is government\nby the people. "),
				DocumentId:      aws.String("doc-1"),
				DocumentTitle:   aws.String("Civics 101"),
				DocumentURI:     aws.String("s3://civics/101.pdf"),
				ScoreAttributes: &types.ScoreAttributes{ScoreConfidence: types.ScoreConfidenceHigh},
			},
			{
				Content: aws.String("Citizens vote."),
			},
		},
	}}
	a := New(api)

	selection := ragchat.RetrieverSelection{
		Label:   "Kendra",
		Kind:    ragchat.BackendKindManagedSearch,
		IndexID: "idx-123",
		TopK:    3,
		Filters: ragchat.Filters{"_language_code": "en"},
	}

	documents, err := a.Retriever(selection).Retrieve(context.Background(), "What is democracy?")
	require.NoError(t, err)

	require.Len(t, documents, 2)
	assert.Equal(t, ragchat.Document{
		Text: "Democracy is government\nby the people.",
		Metadata: map[string]any{
			"document_id":      "doc-1",
			"title":            "Civics 101",
			"source":           "s3://civics/101.pdf",
			"score_confidence": "HIGH",
		},
		Score: 0.75,
	}, documents[0])
	assert.Equal(t, "Citizens vote.", documents[1].Text)
	assert.Zero(t, documents[1].Score)

	assert.Equal(t, "idx-123", aws.ToString(api.input.IndexId))
	assert.Equal(t, "What is democracy?", aws.ToString(api.input.QueryText))
	assert.Equal(t, int32(3), aws.ToInt32(api.input.PageSize))
	require.NotNil(t, api.input.AttributeFilter)
	require.NotNil(t, api.input.AttributeFilter.EqualsTo)
	assert.Equal(t, "_language_code", aws.ToString(api.input.AttributeFilter.EqualsTo.Key))
	assert.Equal(t, "en", aws.ToString(api.input.AttributeFilter.EqualsTo.Value.StringValue))
}

func TestAdapter_Retrieve_Error(t *testing.T) {
	t.Parallel()

	a := New(&fakeAPI{err: errors.New("AccessDeniedException")})

	_, err := a.Retrieve(context.Background(), ragchat.RetrieverSelection{IndexID: "idx-123", TopK: 3}, "What is democracy?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDeniedException")
}

func TestAttributeFilter(t *testing.T) {
	t.Parallel()

	assert.Nil(t, attributeFilter(nil))

	filter := attributeFilter(ragchat.Filters{"_language_code": "en", "category": "civics"})
	require.NotNil(t, filter)
	assert.Nil(t, filter.EqualsTo)
	require.Len(t, filter.AndAllFilters, 2)
	assert.Equal(t, "_language_code", aws.ToString(filter.AndAllFilters[0].EqualsTo.Key))
	assert.Equal(t, "category", aws.ToString(filter.AndAllFilters[1].EqualsTo.Key))
	assert.Equal(t, "civics", aws.ToString(filter.AndAllFilters[1].EqualsTo.Value.StringValue))
}
