package ragchattest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RichardKnop/ragchat"
)

// LLMFactory is a fake ragchat.LLMFactory that counts construction and generation calls and
// records the prompts it was asked to complete.
type LLMFactory struct {
	// Build, when set, replaces the default generator construction.
	Build func(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error)
	// Reply is returned as the answer text by the default generator.
	Reply string
	// Err is returned by the default generator.
	Err error

	builds      atomic.Int64
	generations atomic.Int64

	mu         sync.Mutex
	prompts    []string
	selections []ragchat.ModelSelection
}

func (f *LLMFactory) BuildLLM(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
	f.builds.Add(1)
	f.mu.Lock()
	f.selections = append(f.selections, selection)
	f.mu.Unlock()

	if f.Build != nil {
		return f.Build(ctx, selection)
	}

	return ragchat.GenerateFunc(func(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
		f.generations.Add(1)
		f.mu.Lock()
		f.prompts = append(f.prompts, prompt)
		f.mu.Unlock()

		if f.Err != nil {
			return ragchat.Answer{}, f.Err
		}
		return ragchat.Answer{Text: f.Reply}, nil
	}), nil
}

func (f *LLMFactory) Builds() int {
	return int(f.builds.Load())
}

func (f *LLMFactory) Generations() int {
	return int(f.generations.Load())
}

func (f *LLMFactory) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *LLMFactory) Selections() []ragchat.ModelSelection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ragchat.ModelSelection(nil), f.selections...)
}

// RetrieverFactory is a fake ragchat.RetrieverFactory serving a fixed list of documents.
type RetrieverFactory struct {
	// Build, when set, replaces the default retriever construction.
	Build func(ctx context.Context, selection ragchat.RetrieverSelection) (ragchat.Retriever, error)
	// Documents are returned by the default retriever.
	Documents []ragchat.Document
	// Err is returned by the default retriever.
	Err error

	builds     atomic.Int64
	retrievals atomic.Int64

	mu         sync.Mutex
	queries    []string
	selections []ragchat.RetrieverSelection
}

func (f *RetrieverFactory) BuildRetriever(ctx context.Context, selection ragchat.RetrieverSelection) (ragchat.Retriever, error) {
	f.builds.Add(1)
	f.mu.Lock()
	f.selections = append(f.selections, selection)
	f.mu.Unlock()

	if f.Build != nil {
		return f.Build(ctx, selection)
	}

	return ragchat.RetrieveFunc(func(ctx context.Context, query string) ([]ragchat.Document, error) {
		f.retrievals.Add(1)
		f.mu.Lock()
		f.queries = append(f.queries, query)
		f.mu.Unlock()

		if f.Err != nil {
			return nil, f.Err
		}
		return append([]ragchat.Document(nil), f.Documents...), nil
	}), nil
}

func (f *RetrieverFactory) Builds() int {
	return int(f.builds.Load())
}

func (f *RetrieverFactory) Retrievals() int {
	return int(f.retrievals.Load())
}

func (f *RetrieverFactory) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *RetrieverFactory) Selections() []ragchat.RetrieverSelection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ragchat.RetrieverSelection(nil), f.selections...)
}

// Observer records every event it receives.
type Observer struct {
	mu         sync.Mutex
	Outcomes   []ragchat.Outcome
	Retrievals []int
}

func (o *Observer) ObserveAnswer(modelLabel, retrieverLabel string, outcome ragchat.Outcome, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Outcomes = append(o.Outcomes, outcome)
}

func (o *Observer) ObserveRetrieval(retrieverLabel string, documents int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Retrievals = append(o.Retrievals, documents)
}

// WordCounter counts whitespace separated words as tokens.
type WordCounter struct{}

func (WordCounter) CountTokens(text string) (int, error) {
	return len(strings.Fields(text)), nil
}
