package factory

import (
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/RichardKnop/ragchat"
	bedrockAdapter "github.com/RichardKnop/ragchat/adapter/bedrock"
	kendraAdapter "github.com/RichardKnop/ragchat/adapter/kendra"
)

// Factory builds LLM and retriever clients from selections. SDK clients and loaded local
// models are cached for the lifetime of the factory; adapters are cheap and built per call.
type Factory struct {
	cfg     Config
	clients *cache.Cache
	group   singleflight.Group
	logger  *zap.Logger

	bedrock  bedrockAdapter.API
	kendra   kendraAdapter.API
	embedder ragchat.Embedder
	indexes  map[ragchat.VectorStore]ragchat.VectorIndex

	mu      sync.Mutex
	closers []func() error
}

type Option func(*Factory)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithBedrockClient replaces the Bedrock runtime client for every region.
func WithBedrockClient(client bedrockAdapter.API) Option {
	return func(f *Factory) {
		f.bedrock = client
	}
}

// WithKendraClient replaces the Kendra client for every region.
func WithKendraClient(client kendraAdapter.API) Option {
	return func(f *Factory) {
		f.kendra = client
	}
}

// WithEmbedder replaces the configured query embedder.
func WithEmbedder(embedder ragchat.Embedder) Option {
	return func(f *Factory) {
		f.embedder = embedder
	}
}

// WithVectorIndex replaces the index client for one vector store.
func WithVectorIndex(store ragchat.VectorStore, index ragchat.VectorIndex) Option {
	return func(f *Factory) {
		f.indexes[store] = index
	}
}

func New(cfg Config, options ...Option) *Factory {
	f := &Factory{
		cfg:     cfg,
		clients: cache.New(cache.NoExpiration, 0),
		logger:  zap.NewNop(),
		indexes: make(map[ragchat.VectorStore]ragchat.VectorIndex),
	}

	for _, o := range options {
		o(f)
	}

	return f
}

// cached returns the value stored under key, building it at most once even under concurrent
// calls. Failed builds are not cached.
func cached[T any](f *Factory, key string, build func() (T, error)) (T, error) {
	if v, ok := f.clients.Get(key); ok {
		return v.(T), nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		if v, ok := f.clients.Get(key); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		f.clients.Set(key, v, cache.NoExpiration)
		f.logger.Sugar().With("key", key).Info("cached client")
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

func (f *Factory) onClose(fn func() error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closers = append(f.closers, fn)
}

// Close releases cached clients in reverse order of creation.
func (f *Factory) Close() error {
	f.mu.Lock()
	closers := f.closers
	f.closers = nil
	f.mu.Unlock()

	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing client: %w", err)
		}
	}
	f.clients.Flush()

	return firstErr
}
