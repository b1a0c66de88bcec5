package googlegenai

import (
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/RichardKnop/ragchat"
)

type Adapter struct {
	client          *genai.Client
	embeddingModel  string
	generativeModel string
	params          ragchat.GenerationParams
	logger          *zap.Logger
}

type Option func(*Adapter)

func WithEmbeddingModel(model string) Option {
	return func(a *Adapter) {
		a.embeddingModel = model
	}
}

func WithGenerativeModel(model string) Option {
	return func(a *Adapter) {
		a.generativeModel = model
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

func New(client *genai.Client, options ...Option) *Adapter {
	a := &Adapter{
		client: client,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"embedding model", a.embeddingModel,
		"generative model", a.generativeModel,
		"max tokens", a.params.MaxTokens,
		"temperature", a.params.Temperature,
	).Info("init google genai adapter")

	return a
}

const adapterName = "google-genai"

func (a *Adapter) Name() string {
	return adapterName
}
