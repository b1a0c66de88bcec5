package pgvector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/RichardKnop/ragchat"
)

func (a *Adapter) SearchDocuments(ctx context.Context, filter ragchat.DocumentFilter, limit int) ([]ragchat.Document, error) {
	sql, args := searchQuery(a.table, filter, limit)

	rows, err := a.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", filter.Index, err)
	}
	defer rows.Close()

	var documents []ragchat.Document
	for rows.Next() {
		var (
			aDocument ragchat.Document
			metadata  map[string]any
		)
		if err := rows.Scan(&aDocument.Text, &metadata, &aDocument.Score); err != nil {
			return nil, err
		}
		aDocument.Metadata = metadata
		documents = append(documents, aDocument.Sanitize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", filter.Index, err)
	}

	return documents, nil
}

// searchQuery orders rows by cosine distance to the query vector. Equality filters match
// top level string values of the metadata column.
func searchQuery(table string, filter ragchat.DocumentFilter, limit int) (string, []any) {
	args := []any{filter.Index, pgvector.NewVector(filter.Vector), limit}

	conditions := []string{"collection = $1"}
	for _, key := range filter.Attributes.SortedKeys() {
		args = append(args, key, filter.Attributes[key])
		conditions = append(conditions, fmt.Sprintf("metadata->>$%d::text = $%d", len(args)-1, len(args)))
	}

	sql := fmt.Sprintf(`SELECT content, metadata, 1 - (embedding <=> $2) AS score
FROM %s
WHERE %s
ORDER BY embedding <=> $2
LIMIT $3`, pgx.Identifier{table}.Sanitize(), strings.Join(conditions, " AND "))

	return sql, args
}
