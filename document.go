package ragchat

import (
	"strings"
)

type Vector []float32

type Document struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// Sanitize trims the document text and collapses runs of spaces within each line. Line breaks
// are kept, consecutive blank lines are reduced to one so paragraphs and lists survive.
func (d Document) Sanitize() Document {
	var (
		lines = strings.Split(strings.TrimSpace(d.Text), "\n")
		out   = make([]string, 0, len(lines))
		blank bool
	)
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	d.Text = strings.Join(out, "\n")
	return d
}

type Query struct {
	Text string `json:"text"`
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "query", Reason: "query cannot be empty"}
	}
	return nil
}

type Answer struct {
	Text      string     `json:"text"`
	Documents []Document `json:"documents"`
}

// Filters are equality constraints on document attributes, applied server side.
type Filters map[string]string

// DocumentFilter narrows a nearest neighbour search to a single index.
type DocumentFilter struct {
	Index      string
	Vector     Vector
	Attributes Filters
}
