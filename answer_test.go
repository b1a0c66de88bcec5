package ragchat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RichardKnop/ragchat"
	"github.com/RichardKnop/ragchat/ragchattest"
)

var testTime = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

type testCatalogue struct {
	registry  *ragchat.Registry
	model     ragchat.ModelSelection
	retriever ragchat.RetrieverSelection
}

func newTestCatalogue(t *testing.T, gen *ragchattest.DataGen, options ...ragchattest.RetrieverOption) testCatalogue {
	t.Helper()

	model := gen.ModelSelection(ragchattest.WithModelLabel("ModelX"))
	retriever := gen.RetrieverSelection(append([]ragchattest.RetrieverOption{
		ragchattest.WithRetrieverLabel("RetrieverY"),
		ragchattest.WithTopK(2),
	}, options...)...)

	registry, err := ragchat.NewRegistry(
		[]ragchat.ModelSelection{model, gen.ModelSelection()},
		[]ragchat.RetrieverSelection{retriever, gen.RetrieverSelection()},
	)
	require.NoError(t, err)

	// Pick up defaults applied by the registry.
	retriever, err = registry.ResolveRetriever(retriever.Label)
	require.NoError(t, err)

	return testCatalogue{registry: registry, model: model, retriever: retriever}
}

func TestAnswer_EndToEnd(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(1, testTime)
	catalogue := newTestCatalogue(t, gen)

	documents := []ragchat.Document{
		gen.Document(ragchattest.WithDocumentText("Democracy is a system of government where citizens vote."), ragchattest.WithDocumentScore(0.92)),
		gen.Document(ragchattest.WithDocumentText("Civics studies the rights and duties of citizens."), ragchattest.WithDocumentScore(0.87)),
	}
	llms := &ragchattest.LLMFactory{Reply: "Democracy is self-government."}
	retrievers := &ragchattest.RetrieverFactory{Documents: documents}
	observer := new(ragchattest.Observer)

	rc := ragchat.New(catalogue.registry, llms, retrievers, ragchat.WithObserver(observer))

	answer, err := rc.Answer(context.Background(), ragchat.Query{Text: "What is democracy?"}, "ModelX", "RetrieverY")
	require.NoError(t, err)

	assert.Equal(t, "Democracy is self-government.", answer.Text)
	assert.Equal(t, documents, answer.Documents)

	assert.Equal(t, 1, retrievers.Builds())
	assert.Equal(t, 1, retrievers.Retrievals())
	assert.Equal(t, []string{"What is democracy?"}, retrievers.Queries())
	assert.Equal(t, []ragchat.RetrieverSelection{catalogue.retriever}, retrievers.Selections())

	assert.Equal(t, 1, llms.Builds())
	assert.Equal(t, 1, llms.Generations())
	assert.Equal(t, []ragchat.ModelSelection{catalogue.model}, llms.Selections())

	assert.Equal(t, []ragchat.Outcome{ragchat.OutcomeSuccess}, observer.Outcomes)
	assert.Equal(t, []int{2}, observer.Retrievals)
}

func TestAnswer_PromptOrder(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(2, testTime)
	catalogue := newTestCatalogue(t, gen)

	echo := &ragchattest.LLMFactory{}
	echo.Build = func(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
		return ragchat.GenerateFunc(func(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
			return ragchat.Answer{Text: prompt}, nil
		}), nil
	}
	retrievers := &ragchattest.RetrieverFactory{Documents: []ragchat.Document{{Text: "A"}, {Text: "B"}}}

	rc := ragchat.New(catalogue.registry, echo, retrievers)

	answer, err := rc.Answer(context.Background(), ragchat.Query{Text: "What is democracy?"}, "ModelX", "RetrieverY")
	require.NoError(t, err)

	a := strings.Index(answer.Text, "\nA\n")
	b := strings.Index(answer.Text, "\nB\n")
	require.NotEqual(t, -1, a)
	require.NotEqual(t, -1, b)
	assert.Less(t, a, b)
	assert.Contains(t, answer.Text, "What is democracy?")
}

func TestAnswer_NoDocuments(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(3, testTime)
	catalogue := newTestCatalogue(t, gen)

	llms := &ragchattest.LLMFactory{Reply: "I don't know."}
	retrievers := &ragchattest.RetrieverFactory{}

	rc := ragchat.New(catalogue.registry, llms, retrievers)

	answer, err := rc.Answer(context.Background(), ragchat.Query{Text: "What is democracy?"}, "ModelX", "RetrieverY")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer.Text)
	assert.Empty(t, answer.Documents)
	assert.Equal(t, 1, llms.Generations())
}

func TestAnswer_TruncatesToTopK(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(4, testTime)
	catalogue := newTestCatalogue(t, gen)

	documents := gen.Documents(5)
	llms := &ragchattest.LLMFactory{Reply: "ok"}
	retrievers := &ragchattest.RetrieverFactory{Documents: documents}

	rc := ragchat.New(catalogue.registry, llms, retrievers)

	answer, err := rc.Answer(context.Background(), gen.Query(), "ModelX", "RetrieverY")
	require.NoError(t, err)
	assert.Equal(t, documents[:2], answer.Documents)
	assert.NotContains(t, llms.Prompts()[0], documents[2].Text)
}

func TestAnswer_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		modelLabel     string
		retrieverLabel string
		assertErr      func(t *testing.T, err error)
		outcome        ragchat.Outcome
	}{
		{
			name:           "empty query",
			query:          "",
			modelLabel:     "ModelX",
			retrieverLabel: "RetrieverY",
			assertErr: func(t *testing.T, err error) {
				var verr *ragchat.ValidationError
				require.ErrorAs(t, err, &verr)
			},
			outcome: ragchat.OutcomeValidationError,
		},
		{
			name:           "whitespace query",
			query:          " \n ",
			modelLabel:     "ModelX",
			retrieverLabel: "RetrieverY",
			assertErr: func(t *testing.T, err error) {
				var verr *ragchat.ValidationError
				require.ErrorAs(t, err, &verr)
			},
			outcome: ragchat.OutcomeValidationError,
		},
		{
			name:           "unknown model",
			query:          "What is democracy?",
			modelLabel:     "GPT-17",
			retrieverLabel: "RetrieverY",
			assertErr: func(t *testing.T, err error) {
				var serr *ragchat.SelectionError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, ragchat.SelectionKindModel, serr.Kind)
				assert.Equal(t, `invalid model selection: "GPT-17"`, err.Error())
				assert.ErrorIs(t, err, ragchat.ErrNotFound)
			},
			outcome: ragchat.OutcomeSelectionError,
		},
		{
			name:           "unknown retriever",
			query:          "What is democracy?",
			modelLabel:     "ModelX",
			retrieverLabel: "Encyclopedia",
			assertErr: func(t *testing.T, err error) {
				var serr *ragchat.SelectionError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, ragchat.SelectionKindRetriever, serr.Kind)
				assert.Equal(t, `invalid retriever selection: "Encyclopedia"`, err.Error())
			},
			outcome: ragchat.OutcomeSelectionError,
		},
		{
			name:           "both unknown reports the model",
			query:          "What is democracy?",
			modelLabel:     "",
			retrieverLabel: "",
			assertErr: func(t *testing.T, err error) {
				var serr *ragchat.SelectionError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, ragchat.SelectionKindModel, serr.Kind)
			},
			outcome: ragchat.OutcomeSelectionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := ragchattest.New(5, testTime)
			catalogue := newTestCatalogue(t, gen)
			llms := &ragchattest.LLMFactory{Reply: "unused"}
			retrievers := &ragchattest.RetrieverFactory{Documents: gen.Documents(2)}
			observer := new(ragchattest.Observer)

			rc := ragchat.New(catalogue.registry, llms, retrievers, ragchat.WithObserver(observer))

			answer, err := rc.Answer(context.Background(), ragchat.Query{Text: tt.query}, tt.modelLabel, tt.retrieverLabel)
			tt.assertErr(t, err)
			assert.Equal(t, ragchat.Answer{}, answer)

			assert.Zero(t, retrievers.Builds())
			assert.Zero(t, retrievers.Retrievals())
			assert.Zero(t, llms.Builds())
			assert.Zero(t, llms.Generations())
			assert.Equal(t, []ragchat.Outcome{tt.outcome}, observer.Outcomes)
		})
	}
}

func TestAnswer_BackendUnavailable(t *testing.T) {
	t.Parallel()

	providerErr := &ragchat.BackendUnavailableError{Backend: "bedrock-anthropic", Err: errors.New("ThrottlingException")}

	tests := []struct {
		name            string
		llms            func() *ragchattest.LLMFactory
		retrievers      func() *ragchattest.RetrieverFactory
		expectedBackend func(c testCatalogue) string
		expectedBuilds  int
		sameError       error
	}{
		{
			name: "retriever construction fails",
			llms: func() *ragchattest.LLMFactory { return &ragchattest.LLMFactory{Reply: "unused"} },
			retrievers: func() *ragchattest.RetrieverFactory {
				return &ragchattest.RetrieverFactory{
					Build: func(ctx context.Context, selection ragchat.RetrieverSelection) (ragchat.Retriever, error) {
						return nil, errors.New("no credentials")
					},
				}
			},
			expectedBackend: func(c testCatalogue) string { return c.retriever.Backend() },
			expectedBuilds:  0,
		},
		{
			name:            "retrieval fails",
			llms:            func() *ragchattest.LLMFactory { return &ragchattest.LLMFactory{Reply: "unused"} },
			retrievers:      func() *ragchattest.RetrieverFactory { return &ragchattest.RetrieverFactory{Err: errors.New("connection refused")} },
			expectedBackend: func(c testCatalogue) string { return c.retriever.Backend() },
			expectedBuilds:  0,
		},
		{
			name: "llm factory reports unavailable",
			llms: func() *ragchattest.LLMFactory {
				return &ragchattest.LLMFactory{
					Build: func(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
						return nil, providerErr
					},
				}
			},
			retrievers:      func() *ragchattest.RetrieverFactory { return &ragchattest.RetrieverFactory{} },
			expectedBackend: func(c testCatalogue) string { return "bedrock-anthropic" },
			expectedBuilds:  1,
			sameError:       providerErr,
		},
		{
			name:            "generation fails",
			llms:            func() *ragchattest.LLMFactory { return &ragchattest.LLMFactory{Err: errors.New("quota exceeded")} },
			retrievers:      func() *ragchattest.RetrieverFactory { return &ragchattest.RetrieverFactory{} },
			expectedBackend: func(c testCatalogue) string { return string(c.model.Provider) },
			expectedBuilds:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := ragchattest.New(6, testTime)
			catalogue := newTestCatalogue(t, gen)
			llms := tt.llms()
			retrievers := tt.retrievers()
			observer := new(ragchattest.Observer)

			rc := ragchat.New(catalogue.registry, llms, retrievers, ragchat.WithObserver(observer))

			answer, err := rc.Answer(context.Background(), gen.Query(), "ModelX", "RetrieverY")
			assert.Equal(t, ragchat.Answer{}, answer)

			var bue *ragchat.BackendUnavailableError
			require.ErrorAs(t, err, &bue)
			assert.Equal(t, string(catalogue.model.Provider), bue.Backend)
			if tt.sameError != nil {
				assert.Same(t, tt.sameError, err)
			}

			assert.Equal(t, tt.expectedBuilds, llms.Builds())
			assert.Equal(t, []ragchat.Outcome{ragchat.OutcomeBackendUnavailable}, observer.Outcomes)
		})
	}
}

func TestAnswer_CallTimeout(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(7, testTime)
	catalogue := newTestCatalogue(t, gen)

	llms := &ragchattest.LLMFactory{Reply: "unused"}
	retrievers := &ragchattest.RetrieverFactory{
		Build: func(ctx context.Context, selection ragchat.RetrieverSelection) (ragchat.Retriever, error) {
			return ragchat.RetrieveFunc(func(ctx context.Context, query string) ([]ragchat.Document, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}), nil
		},
	}

	rc := ragchat.New(catalogue.registry, llms, retrievers, ragchat.WithCallTimeout(10*time.Millisecond))

	_, err := rc.Answer(context.Background(), gen.Query(), "ModelX", "RetrieverY")

	var bue *ragchat.BackendUnavailableError
	require.ErrorAs(t, err, &bue)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, llms.Builds())
}

func TestAnswer_ContextWindow(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(8, testTime)
	model := gen.ModelSelection(
		ragchattest.WithModelLabel("Small"),
		ragchattest.WithMaxTokens(10),
		ragchattest.WithContextWindow(20),
	)
	retriever := gen.RetrieverSelection(ragchattest.WithRetrieverLabel("Democracy"), ragchattest.WithTopK(3))
	registry, err := ragchat.NewRegistry([]ragchat.ModelSelection{model}, []ragchat.RetrieverSelection{retriever})
	require.NoError(t, err)

	llms := &ragchattest.LLMFactory{Reply: "unused"}
	retrievers := &ragchattest.RetrieverFactory{Documents: gen.Documents(3)}

	rc := ragchat.New(registry, llms, retrievers, ragchat.WithTokenCounter(ragchattest.WordCounter{}))

	_, err = rc.Answer(context.Background(), ragchat.Query{Text: "What is democracy?"}, "Small", "Democracy")

	var verr *ragchat.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, llms.Generations())
}

func TestAnswer_CallTimeout_IgnoredContext(t *testing.T) {
	t.Parallel()

	const timeout = 20 * time.Millisecond

	tests := []struct {
		name string
		llms *ragchattest.LLMFactory
	}{
		{
			name: "slow generation",
			llms: &ragchattest.LLMFactory{
				Build: func(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
					return ragchat.GenerateFunc(func(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
						time.Sleep(500 * time.Millisecond)
						return ragchat.Answer{Text: "late answer"}, nil
					}), nil
				},
			},
		},
		{
			name: "slow client construction",
			llms: &ragchattest.LLMFactory{
				Build: func(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
					time.Sleep(500 * time.Millisecond)
					return ragchat.GenerateFunc(func(ctx context.Context, prompt string, documents []ragchat.Document) (ragchat.Answer, error) {
						return ragchat.Answer{Text: "late answer"}, nil
					}), nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := ragchattest.New(11, testTime)
			catalogue := newTestCatalogue(t, gen)
			retrievers := &ragchattest.RetrieverFactory{Documents: gen.Documents(2)}

			rc := ragchat.New(catalogue.registry, tt.llms, retrievers, ragchat.WithCallTimeout(timeout))

			started := time.Now()
			answer, err := rc.Answer(context.Background(), gen.Query(), "ModelX", "RetrieverY")
			elapsed := time.Since(started)

			require.Error(t, err)
			assert.Empty(t, answer.Text)
			var bue *ragchat.BackendUnavailableError
			require.ErrorAs(t, err, &bue)
			assert.Equal(t, string(catalogue.model.Provider), bue.Backend)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Less(t, elapsed, 400*time.Millisecond)
		})
	}
}

type slowCounter struct {
	delay time.Duration
}

func (c slowCounter) CountTokens(text string) (int, error) {
	time.Sleep(c.delay)
	return len(strings.Fields(text)), nil
}

func TestAnswer_SlowTokenCounter(t *testing.T) {
	t.Parallel()

	gen := ragchattest.New(12, testTime)
	model := gen.ModelSelection(
		ragchattest.WithModelLabel("Small"),
		ragchattest.WithMaxTokens(10),
		ragchattest.WithContextWindow(20),
	)
	retriever := gen.RetrieverSelection(ragchattest.WithRetrieverLabel("Democracy"), ragchattest.WithTopK(3))
	registry, err := ragchat.NewRegistry([]ragchat.ModelSelection{model}, []ragchat.RetrieverSelection{retriever})
	require.NoError(t, err)

	documents := gen.Documents(3)
	llms := &ragchattest.LLMFactory{Reply: "Democracy is self-government."}
	retrievers := &ragchattest.RetrieverFactory{Documents: documents}

	rc := ragchat.New(registry, llms, retrievers,
		ragchat.WithTokenCounter(slowCounter{delay: 500 * time.Millisecond}),
		ragchat.WithCallTimeout(20*time.Millisecond),
	)

	started := time.Now()
	answer, err := rc.Answer(context.Background(), ragchat.Query{Text: "What is democracy?"}, "Small", "Democracy")
	elapsed := time.Since(started)

	// A counter that cannot answer in time leaves the prompt untruncated.
	require.NoError(t, err)
	assert.Equal(t, "Democracy is self-government.", answer.Text)
	assert.Equal(t, documents, answer.Documents)
	assert.Less(t, elapsed, 400*time.Millisecond)
}
