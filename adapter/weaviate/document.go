package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) SearchDocuments(ctx context.Context, filter ragchat.DocumentFilter, limit int) ([]ragchat.Document, error) {
	gql := a.client.GraphQL()
	nearVector := gql.NearVectorArgBuilder().WithVector([]float32(filter.Vector))

	builder := gql.Get().
		WithNearVector(nearVector).
		WithClassName(filter.Index).
		WithFields(a.fields()...).
		WithLimit(limit)

	if where := whereFilter(filter.Attributes); where != nil {
		builder = builder.WithWhere(where)
	}

	graphqlResponse, err := builder.Do(ctx)
	if err := combinedWeaviateError(graphqlResponse, err); err != nil {
		return nil, fmt.Errorf("searching class %s: %w", filter.Index, err)
	}

	return decodeGetDocumentResults(graphqlResponse, filter.Index, a.textField)
}

func (a *Adapter) fields() []graphql.Field {
	fields := []graphql.Field{{Name: a.textField}}
	for _, name := range a.metadataFields {
		fields = append(fields, graphql.Field{Name: name})
	}
	return append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}},
	})
}

// whereFilter combines equality filters on text properties with And.
func whereFilter(attributes ragchat.Filters) *filters.WhereBuilder {
	if len(attributes) == 0 {
		return nil
	}

	operands := make([]*filters.WhereBuilder, 0, len(attributes))
	for _, key := range attributes.SortedKeys() {
		operands = append(operands, filters.Where().
			WithPath([]string{key}).
			WithOperator(filters.Equal).
			WithValueText(attributes[key]))
	}
	if len(operands) == 1 {
		return operands[0]
	}

	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}

// decodeGetDocumentResults decodes the result returned by Weaviate's GraphQL Get
// query; these are returned as a nested map[string]any (just like JSON
// unmarshaled into a map[string]any).
func decodeGetDocumentResults(graphqlResponse *models.GraphQLResponse, className, textField string) ([]ragchat.Document, error) {
	data, ok := graphqlResponse.Data["Get"]
	if !ok {
		return nil, fmt.Errorf("get key not found in result")
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("get key unexpected type")
	}
	slc, ok := doc[className].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list of results", className)
	}

	out := make([]ragchat.Document, 0, len(slc))
	for _, s := range slc {
		smap, ok := s.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid element in list of documents")
		}
		text, ok := smap[textField].(string)
		if !ok {
			return nil, fmt.Errorf("expected %s in document", textField)
		}

		aDocument := ragchat.Document{
			Text:     text,
			Metadata: map[string]any{},
		}
		for k, v := range smap {
			switch k {
			case textField:
			case "_additional":
				additional, _ := v.(map[string]any)
				if distance, ok := additional["distance"].(float64); ok {
					aDocument.Score = 1 - distance
				}
				if id, ok := additional["id"].(string); ok {
					aDocument.Metadata["id"] = id
				}
			default:
				aDocument.Metadata[k] = v
			}
		}

		out = append(out, aDocument.Sanitize())
	}
	return out, nil
}

// combinedWeaviateError generates an error if err is non-nil or result has
// errors, and returns an error (or nil if there's no error). It's useful for
// the results of the Weaviate GraphQL API's "Do" calls.
func combinedWeaviateError(graphqlResponse *models.GraphQLResponse, err error) error {
	if err != nil {
		return err
	}
	if len(graphqlResponse.Errors) != 0 {
		var ss []string
		for _, e := range graphqlResponse.Errors {
			ss = append(ss, e.Message)
		}
		return fmt.Errorf("weaviate error: %v", ss)
	}
	return nil
}
