package ragchat

import (
	"context"
	"time"
)

// Generator produces an answer from an assembled prompt. The context documents are passed
// along for adapters that want to log or cite them; their text is already part of the prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, documents []Document) (Answer, error)
}

// Retriever returns at most top-k documents relevant to the query, most relevant first.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// GenerateFunc adapts a plain function to the Generator interface.
type GenerateFunc func(ctx context.Context, prompt string, documents []Document) (Answer, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string, documents []Document) (Answer, error) {
	return f(ctx, prompt, documents)
}

// RetrieveFunc adapts a plain function to the Retriever interface.
type RetrieveFunc func(ctx context.Context, query string) ([]Document, error)

func (f RetrieveFunc) Retrieve(ctx context.Context, query string) ([]Document, error) {
	return f(ctx, query)
}

// Embedder encodes a query as a vector
type Embedder interface {
	Name() string
	EmbedContent(ctx context.Context, content string) (Vector, error)
}

// VectorIndex runs a nearest neighbour search and returns documents ordered by similarity.
type VectorIndex interface {
	Name() string
	SearchDocuments(ctx context.Context, filter DocumentFilter, limit int) ([]Document, error)
}

type LLMFactory interface {
	BuildLLM(ctx context.Context, selection ModelSelection) (Generator, error)
}

type RetrieverFactory interface {
	BuildRetriever(ctx context.Context, selection RetrieverSelection) (Retriever, error)
}

type Resolver interface {
	ResolveModel(label string) (ModelSelection, error)
	ResolveRetriever(label string) (RetrieverSelection, error)
}

type TokenCounter interface {
	CountTokens(text string) (int, error)
}

type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeValidationError    Outcome = "validation_error"
	OutcomeSelectionError     Outcome = "selection_error"
	OutcomeBackendUnavailable Outcome = "backend_unavailable"
)

// Observer receives one event per answered (or failed) query. Labels are empty when the
// selection could not be resolved.
type Observer interface {
	ObserveAnswer(modelLabel, retrieverLabel string, outcome Outcome, elapsed time.Duration)
	ObserveRetrieval(retrieverLabel string, documents int)
}

type nopObserver struct{}

func (nopObserver) ObserveAnswer(string, string, Outcome, time.Duration) {}
func (nopObserver) ObserveRetrieval(string, int)                         {}
