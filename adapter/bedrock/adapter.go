package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/RichardKnop/ragchat"
)

// API is the subset of the Bedrock runtime client used by the adapter.
type API interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Adapter struct {
	client          API
	family          ragchat.Provider
	generativeModel string
	embeddingModel  string
	params          ragchat.GenerationParams
	logger          *zap.Logger
}

type Option func(*Adapter)

// WithGenerativeModel selects the model family used to encode requests and the model id to
// invoke.
func WithGenerativeModel(family ragchat.Provider, modelID string) Option {
	return func(a *Adapter) {
		a.family = family
		a.generativeModel = modelID
	}
}

func WithEmbeddingModel(modelID string) Option {
	return func(a *Adapter) {
		a.embeddingModel = modelID
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

const DefaultEmbeddingModel = "amazon.titan-embed-text-v1"

func New(client API, options ...Option) (*Adapter, error) {
	a := &Adapter{
		client:         client,
		embeddingModel: DefaultEmbeddingModel,
		logger:         zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	if a.generativeModel != "" {
		if _, ok := codecs[a.family]; !ok {
			return nil, fmt.Errorf("unsupported bedrock model family: %q", a.family)
		}
	}

	a.logger.Sugar().With(
		"family", a.family,
		"generative model", a.generativeModel,
		"embedding model", a.embeddingModel,
	).Info("init bedrock adapter")

	return a, nil
}

const adapterName = "bedrock"

func (a *Adapter) Name() string {
	return adapterName
}
