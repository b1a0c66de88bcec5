package redis

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Adapter searches RediSearch vector indexes. Every retriever selection names its own index;
// the adapter never creates or writes to one.
type Adapter struct {
	client         *redis.Client
	dialectVersion int
	textField      string
	vectorField    string
	metadataFields []string
	logger         *zap.Logger
}

type Option func(*Adapter)

const (
	defaultDialectVersion = 2
	defaultTextField      = "content"
	defaultVectorField    = "embedding"
	distanceField         = "vector_distance"
)

func WithDialectVersion(version int) Option {
	return func(a *Adapter) {
		a.dialectVersion = version
	}
}

func WithTextField(field string) Option {
	return func(a *Adapter) {
		a.textField = field
	}
}

func WithVectorField(field string) Option {
	return func(a *Adapter) {
		a.vectorField = field
	}
}

// WithMetadataFields lists hash fields returned as document metadata.
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

// NewClient returns a client with automatic command retries disabled.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		Protocol:   2,
		MaxRetries: -1,
	})
}

func New(client *redis.Client, options ...Option) *Adapter {
	a := &Adapter{
		client:         client,
		dialectVersion: defaultDialectVersion,
		textField:      defaultTextField,
		vectorField:    defaultVectorField,
		logger:         zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"dialect version", a.dialectVersion,
		"text field", a.textField,
		"vector field", a.vectorField,
		"metadata fields", a.metadataFields,
	).Info("init redis adapter")

	return a
}

const adapterName = "vector-index/redis"

func (a *Adapter) Name() string {
	return adapterName
}
