package kendra

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"go.uber.org/zap"
)

// API is the subset of the Kendra client used by the adapter.
type API interface {
	Retrieve(ctx context.Context, params *kendra.RetrieveInput, optFns ...func(*kendra.Options)) (*kendra.RetrieveOutput, error)
}

type Adapter struct {
	client API
	logger *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(client API, options ...Option) *Adapter {
	a := &Adapter{
		client: client,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

const adapterName = "managed-search"

func (a *Adapter) Name() string {
	return adapterName
}
