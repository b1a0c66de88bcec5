package ragchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Sanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"already clean", "Democracy is government by the people.", "Democracy is government by the people."},
		{"surrounding whitespace", "  \n\tDemocracy is government by the people.\n ", "Democracy is government by the people."},
		{"inner space runs", "Democracy   is\tgovernment  by the people.", "Democracy is government by the people."},
		{"line breaks kept", "Democracy is\ngovernment by the people.", "Democracy is\ngovernment by the people."},
		{"paragraphs kept", "Democracy.  \n\n  Citizens vote.", "Democracy.\n\nCitizens vote."},
		{"blank line runs", "Democracy.\n\n\n \n\nCitizens vote.", "Democracy.\n\nCitizens vote."},
		{"list structure", "Duties:\r\n- vote\r\n-   pay taxes", "Duties:\n- vote\n- pay taxes"},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := Document{Text: tt.text, Score: 0.5}.Sanitize()
			assert.Equal(t, tt.expected, doc.Text)
			assert.Equal(t, 0.5, doc.Score)
		})
	}
}

func TestQuery_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"question", "What is democracy?", false},
		{"empty", "", true},
		{"whitespace only", "   \n\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Query{Text: tt.text}.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "query", verr.Field)
			assert.Equal(t, "invalid query: query cannot be empty", err.Error())
		})
	}
}
