package weaviate

import (
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.uber.org/zap"
)

// Adapter runs nearVector searches against Weaviate classes. The retriever index id is the
// class name.
type Adapter struct {
	client         *weaviate.Client
	textField      string
	metadataFields []string
	logger         *zap.Logger
}

type Option func(*Adapter)

// WithTextField sets the property holding the document text.
func WithTextField(field string) Option {
	return func(a *Adapter) {
		a.textField = field
	}
}

// WithMetadataFields lists properties returned as document metadata.
func WithMetadataFields(fields ...string) Option {
	return func(a *Adapter) {
		a.metadataFields = fields
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const defaultTextField = "text"

func NewClient(host, scheme string) (*weaviate.Client, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Host:   host,
		Scheme: scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	return client, nil
}

func New(client *weaviate.Client, options ...Option) *Adapter {
	a := &Adapter{
		client:    client,
		textField: defaultTextField,
		logger:    zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

const adapterName = "vector-index/weaviate"

func (a *Adapter) Name() string {
	return adapterName
}
