// Package api holds the JSON wire types of the HTTP interface.
package api

type AnswerRequest struct {
	Query     string `json:"query"`
	Model     string `json:"model"`
	Retriever string `json:"retriever"`
}

type Document struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

type AnswerResponse struct {
	Answer    string     `json:"answer"`
	Documents []Document `json:"documents"`
}

type Selections struct {
	Models     []string `json:"models"`
	Retrievers []string `json:"retrievers"`
}

type Error struct {
	Error string `json:"error"`
}
