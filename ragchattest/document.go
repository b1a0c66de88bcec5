package ragchattest

import (
	"github.com/RichardKnop/ragchat"
)

type DocumentOption func(*ragchat.Document)

func WithDocumentText(text string) DocumentOption {
	return func(d *ragchat.Document) {
		d.Text = text
	}
}

func WithDocumentScore(score float64) DocumentOption {
	return func(d *ragchat.Document) {
		d.Score = score
	}
}

func (g *DataGen) Document(options ...DocumentOption) ragchat.Document {
	d := ragchat.Document{
		Text: g.Paragraph(1, 3, 12, " "),
		Metadata: map[string]any{
			"source": g.URL(),
		},
		Score: g.Float64Range(0, 1),
	}

	for _, o := range options {
		o(&d)
	}

	return d
}

// Documents returns n documents ordered by descending score.
func (g *DataGen) Documents(n int) []ragchat.Document {
	documents := make([]ragchat.Document, 0, n)
	score := 1.0
	for range n {
		score -= g.Float64Range(0.001, 0.1)
		documents = append(documents, g.Document(WithDocumentScore(score)))
	}
	return documents
}

func (g *DataGen) Query() ragchat.Query {
	return ragchat.Query{Text: g.Question()}
}
