package ragchat

import (
	"time"

	"go.uber.org/zap"
)

type clock func() time.Time

type ragChat struct {
	registry       Resolver
	llms           LLMFactory
	retrievers     RetrieverFactory
	tokens         TokenCounter
	observer       Observer
	promptTemplate string
	callTimeout    time.Duration
	logger         *zap.Logger
	now            clock
}

type Option func(*ragChat)

// WithTokenCounter enables prompt budgeting for models that declare a context window.
func WithTokenCounter(counter TokenCounter) Option {
	return func(rc *ragChat) {
		rc.tokens = counter
	}
}

func WithObserver(observer Observer) Option {
	return func(rc *ragChat) {
		rc.observer = observer
	}
}

// WithPromptTemplate overrides the stuff prompt. The template receives the joined context as
// %[1]s and the question as %[2]s.
func WithPromptTemplate(tmpl string) Option {
	return func(rc *ragChat) {
		rc.promptTemplate = tmpl
	}
}

// WithCallTimeout bounds every backend step: client construction, retrieval and generation.
func WithCallTimeout(timeout time.Duration) Option {
	return func(rc *ragChat) {
		rc.callTimeout = timeout
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(rc *ragChat) {
		rc.logger = logger
	}
}

const defaultCallTimeout = 30 * time.Second

func New(registry Resolver, llms LLMFactory, retrievers RetrieverFactory, options ...Option) *ragChat {
	rc := &ragChat{
		registry:       registry,
		llms:           llms,
		retrievers:     retrievers,
		observer:       nopObserver{},
		promptTemplate: defaultPromptTemplate,
		callTimeout:    defaultCallTimeout,
		logger:         zap.NewNop(),
		now:            func() time.Time { return time.Now().UTC() },
	}

	for _, o := range options {
		o(rc)
	}

	return rc
}
