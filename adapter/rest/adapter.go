package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RichardKnop/ragchat"
)

type RagChat interface {
	Answer(ctx context.Context, query ragchat.Query, modelLabel, retrieverLabel string) (ragchat.Answer, error)
}

// Catalogue lists the selectable labels shown in the UI dropdowns.
type Catalogue interface {
	ModelLabels() []string
	RetrieverLabels() []string
}

type Adapter struct {
	ragChat       RagChat
	catalogue     Catalogue
	answerTimeout time.Duration
	middlewares   []mux.MiddlewareFunc
	metrics       http.Handler
	logger        *zap.Logger
}

type Option func(*Adapter)

// WithAnswerTimeout bounds the whole answering round trip of a single request.
func WithAnswerTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		a.answerTimeout = timeout
	}
}

func WithMiddleware(middleware mux.MiddlewareFunc) Option {
	return func(a *Adapter) {
		a.middlewares = append(a.middlewares, middleware)
	}
}

// WithMetricsHandler serves the handler on GET /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(a *Adapter) {
		a.metrics = handler
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const defaultAnswerTimeout = 90 * time.Second

func New(ragChat RagChat, catalogue Catalogue, options ...Option) *Adapter {
	a := &Adapter{
		ragChat:       ragChat,
		catalogue:     catalogue,
		answerTimeout: defaultAnswerTimeout,
		logger:        zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

// Router returns the HTTP handler serving every route.
func (a *Adapter) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(a.requestID)
	for _, m := range a.middlewares {
		r.Use(m)
	}

	r.HandleFunc("/answer", a.Answer).Methods(http.MethodPost)
	r.HandleFunc("/selections", a.ListSelections).Methods(http.MethodGet)
	r.HandleFunc("/healthz", a.Health).Methods(http.MethodGet)
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics).Methods(http.MethodGet)
	}

	return r
}
