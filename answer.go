package ragchat

import (
	"context"
	"errors"
	"time"
)

// Answer runs one retrieval-then-generation round trip. It fails with a ValidationError for an
// empty query, a SelectionError for an unknown label and a BackendUnavailableError when any
// backend call fails. No step is retried and no partial answer is ever returned.
func (rc *ragChat) Answer(ctx context.Context, query Query, modelLabel, retrieverLabel string) (Answer, error) {
	started := rc.now()

	if err := query.Validate(); err != nil {
		rc.observe("", "", started, err)
		return Answer{}, err
	}

	// Resolve both labels before doing any work.
	model, err := rc.registry.ResolveModel(modelLabel)
	if err != nil {
		err = &SelectionError{Kind: SelectionKindModel, Label: modelLabel, Err: err}
		rc.observe("", "", started, err)
		return Answer{}, err
	}
	selection, err := rc.registry.ResolveRetriever(retrieverLabel)
	if err != nil {
		err = &SelectionError{Kind: SelectionKindRetriever, Label: retrieverLabel, Err: err}
		rc.observe("", "", started, err)
		return Answer{}, err
	}

	answer, err := rc.answer(ctx, query, model, selection)
	rc.observe(model.Label, selection.Label, started, err)
	if err != nil {
		return Answer{}, err
	}

	return answer, nil
}

func (rc *ragChat) answer(ctx context.Context, query Query, model ModelSelection, selection RetrieverSelection) (Answer, error) {
	logger := rc.logger.Sugar().With("model", model.Label, "retriever", selection.Label)
	logger.With("query", query.Text).Info("received query")

	retriever, err := call(ctx, rc.callTimeout, selection.Backend(), func(ctx context.Context) (Retriever, error) {
		return rc.retrievers.BuildRetriever(ctx, selection)
	})
	if err != nil {
		return Answer{}, err
	}

	documents, err := call(ctx, rc.callTimeout, selection.Backend(), func(ctx context.Context) ([]Document, error) {
		return retriever.Retrieve(ctx, query.Text)
	})
	if err != nil {
		return Answer{}, err
	}
	if len(documents) > selection.TopK {
		documents = documents[:selection.TopK]
	}
	rc.observer.ObserveRetrieval(selection.Label, len(documents))
	logger.Infof("retrieved %d documents", len(documents))

	generator, err := call(ctx, rc.callTimeout, string(model.Provider), func(ctx context.Context) (Generator, error) {
		return rc.llms.BuildLLM(ctx, model)
	})
	if err != nil {
		return Answer{}, err
	}

	prompt, documents, err := rc.fitContextWindow(ctx, model, query.Text, documents)
	if err != nil {
		return Answer{}, err
	}

	answer, err := call(ctx, rc.callTimeout, string(model.Provider), func(ctx context.Context) (Answer, error) {
		return generator.Generate(ctx, prompt, documents)
	})
	if err != nil {
		return Answer{}, err
	}
	answer.Documents = documents

	logger.Info("generated answer")

	return answer, nil
}

// call runs fn under a bounded timeout and reports any failure as a BackendUnavailableError
// for the named backend. The deadline is enforced even when fn ignores its context; fn keeps
// running in the background and its late result is discarded.
func call[T any](ctx context.Context, timeout time.Duration, backend string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil {
			return zero, Unavailable(backend, r.err)
		}
		return r.v, nil
	case <-ctx.Done():
		return zero, Unavailable(backend, ctx.Err())
	}
}

func (rc *ragChat) observe(modelLabel, retrieverLabel string, started time.Time, err error) {
	var (
		elapsed = rc.now().Sub(started)
		outcome = OutcomeSuccess
		verr    *ValidationError
		serr    *SelectionError
	)
	switch {
	case err == nil:
	case errors.As(err, &verr):
		outcome = OutcomeValidationError
	case errors.As(err, &serr):
		outcome = OutcomeSelectionError
	default:
		outcome = OutcomeBackendUnavailable
	}

	if err != nil {
		rc.logger.Sugar().With(
			"model", modelLabel,
			"retriever", retrieverLabel,
			"outcome", outcome,
			"error", err,
		).Warn("query failed")
	}

	rc.observer.ObserveAnswer(modelLabel, retrieverLabel, outcome, elapsed)
}
