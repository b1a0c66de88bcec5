package ragchat

import (
	"context"
	"fmt"
	"strings"
)

// assemblePrompt stuffs every document, in the order received, and the question into a
// single prompt.
func (rc *ragChat) assemblePrompt(question string, documents []Document) string {
	contexts := make([]string, 0, len(documents))
	for _, doc := range documents {
		contexts = append(contexts, doc.Text)
	}
	return fmt.Sprintf(rc.promptTemplate, strings.Join(contexts, documentSeparator), question)
}

// fitContextWindow returns the prompt to send and the documents it contains. Without a token
// counter or a declared context window the prompt is never truncated. Otherwise trailing,
// least relevant documents are dropped until the prompt and the reserved output fit. Each count
// runs under the call timeout; a counter that fails or times out leaves the prompt untruncated.
func (rc *ragChat) fitContextWindow(ctx context.Context, model ModelSelection, question string, documents []Document) (string, []Document, error) {
	if model.ContextWindow == 0 || rc.tokens == nil {
		return rc.assemblePrompt(question, documents), documents, nil
	}

	budget := model.ContextWindow - model.Params.MaxTokens
	for n := len(documents); n >= 0; n-- {
		prompt := rc.assemblePrompt(question, documents[:n])
		count, err := call(ctx, rc.callTimeout, "token counter", func(context.Context) (int, error) {
			return rc.tokens.CountTokens(prompt)
		})
		if err != nil {
			rc.logger.Sugar().With("error", err).Warn("counting prompt tokens failed, sending full prompt")
			return rc.assemblePrompt(question, documents), documents, nil
		}
		if count > budget {
			continue
		}
		if n < len(documents) {
			rc.logger.Sugar().With(
				"model", model.Label,
				"context window", model.ContextWindow,
				"prompt tokens", count,
			).Warnf("dropped %d of %d documents to fit context window", len(documents)-n, len(documents))
		}
		return prompt, documents[:n], nil
	}

	return "", nil, &ValidationError{
		Field:  "query",
		Reason: fmt.Sprintf("query does not fit the %d token context window of %s", model.ContextWindow, model.Label),
	}
}
