package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) SearchDocuments(ctx context.Context, filter ragchat.DocumentFilter, limit int) ([]ragchat.Document, error) {
	if filter.Vector == nil {
		return nil, fmt.Errorf("vector is required for searching documents")
	}

	query := knnQuery(a.vectorField, filter.Attributes, limit)

	returnFields := []redis.FTSearchReturn{
		{FieldName: distanceField},
		{FieldName: a.textField},
	}
	for _, field := range a.returnedMetadata(filter.Attributes) {
		returnFields = append(returnFields, redis.FTSearchReturn{FieldName: field})
	}

	// The results are ordered according to the value of the vector_distance field,
	// with the lowest distance indicating the greatest similarity to the query.
	results, err := a.client.FTSearchWithArgs(ctx,
		filter.Index,
		query,
		&redis.FTSearchOptions{
			Return:         returnFields,
			DialectVersion: a.dialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(filter.Vector),
			},
			SortBy: []redis.FTSearchSortBy{{FieldName: distanceField, Asc: true}},
			Limit:  limit,
		},
	).Result()
	if err != nil {
		return nil, fmt.Errorf("searching index %s: %w", filter.Index, err)
	}

	a.logger.Sugar().With("index", filter.Index, "query", query).Debugf("found %d documents", len(results.Docs))

	return a.mapRedisDocuments(results.Docs)
}

// knnQuery builds a hybrid query, equality tag filters first, then the KNN clause.
func knnQuery(vectorField string, attributes ragchat.Filters, limit int) string {
	clauses := make([]string, 0, len(attributes))
	for _, key := range attributes.SortedKeys() {
		clauses = append(clauses, fmt.Sprintf("@%s:{%s}", key, escapeTag(attributes[key])))
	}

	prefilter := "*"
	if len(clauses) > 0 {
		prefilter = "(" + strings.Join(clauses, " ") + ")"
	}

	return fmt.Sprintf("%s=>[KNN %d @%s $vec AS %s]", prefilter, limit, vectorField, distanceField)
}

func (a *Adapter) returnedMetadata(attributes ragchat.Filters) []string {
	fields := slices.Clone(a.metadataFields)
	for _, key := range attributes.SortedKeys() {
		if !slices.Contains(fields, key) {
			fields = append(fields, key)
		}
	}
	return fields
}

func (a *Adapter) mapRedisDocuments(rds []redis.Document) ([]ragchat.Document, error) {
	documents := make([]ragchat.Document, 0, len(rds))

	for _, rd := range rds {
		aDocument, err := a.mapRedisDocument(rd)
		if err != nil {
			return nil, err
		}
		documents = append(documents, aDocument)
	}

	return documents, nil
}

func (a *Adapter) mapRedisDocument(rd redis.Document) (ragchat.Document, error) {
	text, ok := rd.Fields[a.textField]
	if !ok {
		return ragchat.Document{}, fmt.Errorf("missing %s field in document %s", a.textField, rd.ID)
	}

	doc := ragchat.Document{
		Text:     text,
		Metadata: map[string]any{"id": rd.ID},
	}

	if raw, ok := rd.Fields[distanceField]; ok {
		distance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ragchat.Document{}, fmt.Errorf("invalid vector distance: %w", err)
		}
		doc.Score = 1 - distance
	}

	for field, value := range rd.Fields {
		if field == a.textField || field == distanceField {
			continue
		}
		doc.Metadata[field] = value
	}

	return doc.Sanitize(), nil
}

// escapeTag escapes punctuation and spaces, which separate tokens in tag queries.
func escapeTag(value string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~|/\\ ", r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// helper function to convert []float32 to []byte
func floatsToBytes(fs []float32) []byte {
	buf := make([]byte, len(fs)*4)

	for i, f := range fs {
		u := math.Float32bits(f)
		binary.NativeEndian.PutUint32(buf[i*4:], u)
	}

	return buf
}
