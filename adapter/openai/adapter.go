package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/RichardKnop/ragchat"
)

type Adapter struct {
	client openai.Client
	model  string
	params ragchat.GenerationParams
	logger *zap.Logger
}

type Option func(*Adapter)

func WithModel(model string) Option {
	return func(a *Adapter) {
		a.model = model
	}
}

func WithGenerationParams(params ragchat.GenerationParams) Option {
	return func(a *Adapter) {
		a.params = params
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewClient returns an OpenAI client with automatic retries disabled. An empty base URL keeps
// the public API endpoint.
func NewClient(apiKey, baseURL string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(opts...)
}

func New(client openai.Client, options ...Option) *Adapter {
	a := &Adapter{
		client: client,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"model", a.model,
		"max tokens", a.params.MaxTokens,
		"temperature", a.params.Temperature,
	).Info("init openai adapter")

	return a
}

const adapterName = "openai"

func (a *Adapter) Name() string {
	return adapterName
}
