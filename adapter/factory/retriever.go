package factory

import (
	"cmp"
	"context"
	"fmt"

	"github.com/RichardKnop/ragchat"
	bedrockAdapter "github.com/RichardKnop/ragchat/adapter/bedrock"
	googlegenai "github.com/RichardKnop/ragchat/adapter/google-genai"
	hugotAdapter "github.com/RichardKnop/ragchat/adapter/hugot"
	kendraAdapter "github.com/RichardKnop/ragchat/adapter/kendra"
	pgvectorAdapter "github.com/RichardKnop/ragchat/adapter/pgvector"
	pineconeAdapter "github.com/RichardKnop/ragchat/adapter/pinecone"
	redisAdapter "github.com/RichardKnop/ragchat/adapter/redis"
	weaviateAdapter "github.com/RichardKnop/ragchat/adapter/weaviate"
)

// BuildRetriever returns a retriever bound to the selection's index, top-k and filters. Any
// failure is a *ragchat.BackendUnavailableError naming the selection's backend.
func (f *Factory) BuildRetriever(ctx context.Context, selection ragchat.RetrieverSelection) (ragchat.Retriever, error) {
	retriever, err := f.buildRetriever(ctx, selection)
	if err != nil {
		return nil, ragchat.Unavailable(selection.Backend(), err)
	}
	return retriever, nil
}

func (f *Factory) buildRetriever(ctx context.Context, selection ragchat.RetrieverSelection) (ragchat.Retriever, error) {
	switch selection.Kind {
	case ragchat.BackendKindManagedSearch:
		client, err := f.kendraClient(ctx, selection.Region)
		if err != nil {
			return nil, err
		}
		return kendraAdapter.New(client, kendraAdapter.WithLogger(f.logger)).Retriever(selection), nil
	case ragchat.BackendKindVectorIndex:
		embedder, err := f.queryEmbedder(ctx)
		if err != nil {
			return nil, err
		}
		index, err := f.vectorIndex(ctx, selection.Store)
		if err != nil {
			return nil, err
		}
		return ragchat.NewVectorRetriever(embedder, index, selection), nil
	default:
		return nil, fmt.Errorf("unsupported retriever kind: %q", selection.Kind)
	}
}

// queryEmbedder returns the embedder shared by every vector index selection.
func (f *Factory) queryEmbedder(ctx context.Context) (ragchat.Embedder, error) {
	if f.embedder != nil {
		return f.embedder, nil
	}

	switch name := cmp.Or(f.cfg.Embedder.Name, EmbedderBedrock); name {
	case EmbedderBedrock:
		client, err := f.bedrockClient(ctx)
		if err != nil {
			return nil, err
		}
		return bedrockAdapter.New(
			client,
			bedrockAdapter.WithEmbeddingModel(cmp.Or(f.cfg.Embedder.Model, bedrockAdapter.DefaultEmbeddingModel)),
			bedrockAdapter.WithLogger(f.logger),
		)
	case EmbedderGoogleGenAI:
		client, err := f.genaiClient(ctx)
		if err != nil {
			return nil, err
		}
		return googlegenai.New(
			client,
			googlegenai.WithEmbeddingModel(f.cfg.Embedder.Model),
			googlegenai.WithLogger(f.logger),
		), nil
	case EmbedderHugot:
		return cached(f, "hugot:embedding:"+f.cfg.Embedder.Model, func() (ragchat.Embedder, error) {
			session, err := f.hugotSession()
			if err != nil {
				return nil, err
			}
			return hugotAdapter.New(ctx, session, f.hugotOptions(
				hugotAdapter.WithEmbeddingModelName(f.cfg.Embedder.Model),
			)...)
		})
	default:
		return nil, fmt.Errorf("unsupported embedder: %q", name)
	}
}

func (f *Factory) vectorIndex(ctx context.Context, store ragchat.VectorStore) (ragchat.VectorIndex, error) {
	if index, ok := f.indexes[store]; ok {
		return index, nil
	}

	switch store {
	case ragchat.VectorStorePinecone:
		if f.cfg.Pinecone.APIKey == "" {
			return nil, fmt.Errorf("pinecone api key not configured")
		}
		return cached(f, "pinecone", func() (ragchat.VectorIndex, error) {
			options := []pineconeAdapter.Option{
				pineconeAdapter.WithNamespace(f.cfg.Pinecone.Namespace),
				pineconeAdapter.WithLogger(f.logger),
			}
			if f.cfg.Pinecone.ControllerURL != "" {
				options = append(options, pineconeAdapter.WithControllerURL(f.cfg.Pinecone.ControllerURL))
			}
			if f.cfg.Pinecone.TextField != "" {
				options = append(options, pineconeAdapter.WithTextField(f.cfg.Pinecone.TextField))
			}
			return pineconeAdapter.New(f.cfg.Pinecone.APIKey, options...), nil
		})
	case ragchat.VectorStoreRedis:
		if f.cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis address not configured")
		}
		return cached(f, "redis", func() (ragchat.VectorIndex, error) {
			client := redisAdapter.NewClient(f.cfg.Redis.Addr, f.cfg.Redis.Password, f.cfg.Redis.DB)
			f.onClose(client.Close)
			options := []redisAdapter.Option{
				redisAdapter.WithMetadataFields(f.cfg.Redis.MetadataFields...),
				redisAdapter.WithLogger(f.logger),
			}
			if f.cfg.Redis.TextField != "" {
				options = append(options, redisAdapter.WithTextField(f.cfg.Redis.TextField))
			}
			return redisAdapter.New(client, options...), nil
		})
	case ragchat.VectorStoreWeaviate:
		if f.cfg.Weaviate.Host == "" {
			return nil, fmt.Errorf("weaviate host not configured")
		}
		return cached(f, "weaviate", func() (ragchat.VectorIndex, error) {
			client, err := weaviateAdapter.NewClient(f.cfg.Weaviate.Host, cmp.Or(f.cfg.Weaviate.Scheme, "http"))
			if err != nil {
				return nil, err
			}
			options := []weaviateAdapter.Option{
				weaviateAdapter.WithMetadataFields(f.cfg.Weaviate.MetadataFields...),
				weaviateAdapter.WithLogger(f.logger),
			}
			if f.cfg.Weaviate.TextField != "" {
				options = append(options, weaviateAdapter.WithTextField(f.cfg.Weaviate.TextField))
			}
			return weaviateAdapter.New(client, options...), nil
		})
	case ragchat.VectorStorePgvector:
		if f.cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("postgres url not configured")
		}
		return cached(f, "pgvector", func() (ragchat.VectorIndex, error) {
			pool, err := pgvectorAdapter.NewPool(ctx, f.cfg.Postgres.URL)
			if err != nil {
				return nil, err
			}
			f.onClose(func() error {
				pool.Close()
				return nil
			})
			options := []pgvectorAdapter.Option{pgvectorAdapter.WithLogger(f.logger)}
			if f.cfg.Postgres.Table != "" {
				options = append(options, pgvectorAdapter.WithTable(f.cfg.Postgres.Table))
			}
			return pgvectorAdapter.New(pool, options...), nil
		})
	default:
		return nil, fmt.Errorf("unsupported vector store: %q", store)
	}
}
