package rest

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid/v5"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// requestID propagates the caller's request id or assigns a new one.
func (a *Adapter) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
