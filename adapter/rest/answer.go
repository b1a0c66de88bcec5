package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/RichardKnop/ragchat"
	"github.com/RichardKnop/ragchat/api"
)

var errTryAgain = errors.New("the selected backend is temporarily unavailable, please try again")

// Answer a question with the selected model and retriever
// (POST /answer)
func (a *Adapter) Answer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.answerTimeout)
	defer cancel()

	apiRequest := api.AnswerRequest{}
	if err := readRequestJSON(w, r, &apiRequest); err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	answer, err := a.ragChat.Answer(ctx, ragchat.Query{Text: apiRequest.Query}, apiRequest.Model, apiRequest.Retriever)
	if err != nil {
		a.renderAnswerError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, mapAnswer(answer))
}

func (a *Adapter) renderAnswerError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *ragchat.ValidationError
		serr *ragchat.SelectionError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &serr):
		renderJSONError(w, http.StatusBadRequest, err)
	default:
		// Backend details stay in the logs.
		a.logger.Sugar().With(
			"request id", requestIDFromContext(r.Context()),
			"error", err,
		).Error("answering query failed")
		renderJSONError(w, http.StatusServiceUnavailable, errTryAgain)
	}
}

func mapAnswer(answer ragchat.Answer) api.AnswerResponse {
	documents := make([]api.Document, 0, len(answer.Documents))
	for _, doc := range answer.Documents {
		documents = append(documents, api.Document{
			Text:     doc.Text,
			Metadata: doc.Metadata,
			Score:    doc.Score,
		})
	}
	return api.AnswerResponse{
		Answer:    answer.Text,
		Documents: documents,
	}
}
