package ragchat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordCounter struct {
	err error
}

func (c wordCounter) CountTokens(text string) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return len(strings.Fields(text)), nil
}

func TestAssemblePrompt(t *testing.T) {
	t.Parallel()

	rc := New(nil, nil, nil)

	prompt := rc.assemblePrompt("What is democracy?", []Document{
		{Text: "Democracy is self-government."},
		{Text: "Citizens vote."},
	})

	expected := "Use the following pieces of context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n" +
		"Democracy is self-government.\n\nCitizens vote.\n\n" +
		"Question: What is democracy?\nHelpful Answer:"
	assert.Equal(t, expected, prompt)

	t.Run("no documents", func(t *testing.T) {
		t.Parallel()

		prompt := rc.assemblePrompt("What is democracy?", nil)
		assert.True(t, strings.HasSuffix(prompt, "\n\n\n\nQuestion: What is democracy?\nHelpful Answer:"))
	})

	t.Run("custom template", func(t *testing.T) {
		t.Parallel()

		rc := New(nil, nil, nil, WithPromptTemplate("Q: %[2]s\nC: %[1]s"))
		prompt := rc.assemblePrompt("why?", []Document{{Text: "a"}, {Text: "b"}})
		assert.Equal(t, "Q: why?\nC: a\n\nb", prompt)
	})
}

func TestFitContextWindow(t *testing.T) {
	t.Parallel()

	documents := []Document{
		{Text: strings.Repeat("alpha ", 50)},
		{Text: strings.Repeat("beta ", 50)},
		{Text: strings.Repeat("gamma ", 50)},
	}
	question := "What is democracy?"
	base := len(strings.Fields(New(nil, nil, nil).assemblePrompt(question, nil)))

	tests := []struct {
		name          string
		counter       TokenCounter
		contextWindow int
		maxTokens     int
		expectedDocs  int
		wantErr       bool
	}{
		{"no counter", nil, 10, 5, 3, false},
		{"no context window", wordCounter{}, 0, 5, 3, false},
		{"everything fits", wordCounter{}, base + 150 + 10, 10, 3, false},
		{"drops the last document", wordCounter{}, base + 100 + 10 + 1, 10, 2, false},
		{"drops every document", wordCounter{}, base + 10 + 1, 10, 0, false},
		{"query does not fit", wordCounter{}, base + 10 - 1, 10, 0, true},
		{"counter failure sends everything", wordCounter{err: errors.New("encoding unavailable")}, 1, 1, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rc := New(nil, nil, nil, WithTokenCounter(tt.counter))
			model := ModelSelection{
				Label:         "Claude V2",
				ContextWindow: tt.contextWindow,
				Params:        GenerationParams{MaxTokens: tt.maxTokens},
			}

			prompt, kept, err := rc.fitContextWindow(context.Background(), model, question, documents)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			require.Len(t, kept, tt.expectedDocs)
			assert.Equal(t, documents[:tt.expectedDocs], kept)
			assert.Equal(t, rc.assemblePrompt(question, kept), prompt)
		})
	}
}
