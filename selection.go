package ragchat

import (
	"sort"
)

type Provider string

const (
	ProviderBedrockAnthropic Provider = "bedrock-anthropic"
	ProviderBedrockTitan     Provider = "bedrock-titan"
	ProviderBedrockAI21      Provider = "bedrock-ai21"
	ProviderOpenAI           Provider = "openai"
	ProviderGoogleGenAI      Provider = "google-genai"
	ProviderHugot            Provider = "hugot"
)

// Providers lists every provider the LLM factory knows how to build.
var Providers = []Provider{
	ProviderBedrockAnthropic,
	ProviderBedrockTitan,
	ProviderBedrockAI21,
	ProviderOpenAI,
	ProviderGoogleGenAI,
	ProviderHugot,
}

type BackendKind string

const (
	BackendKindVectorIndex   BackendKind = "vector-index"
	BackendKindManagedSearch BackendKind = "managed-search"
)

// VectorStore is the engine holding a vector index. Only meaningful for BackendKindVectorIndex.
type VectorStore string

const (
	VectorStorePinecone VectorStore = "pinecone"
	VectorStoreRedis    VectorStore = "redis"
	VectorStoreWeaviate VectorStore = "weaviate"
	VectorStorePgvector VectorStore = "pgvector"
)

type GenerationParams struct {
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=1"`
}

type ModelSelection struct {
	Label    string           `mapstructure:"label" validate:"required"`
	Provider Provider         `mapstructure:"provider" validate:"required,oneof=bedrock-anthropic bedrock-titan bedrock-ai21 openai google-genai hugot"`
	ModelID  string           `mapstructure:"model_id" validate:"required"`
	Params   GenerationParams `mapstructure:",squash"`
	// ContextWindow is the model context size in tokens. Zero disables prompt budgeting.
	ContextWindow int `mapstructure:"context_window" validate:"gte=0"`
}

type RetrieverSelection struct {
	Label   string      `mapstructure:"label" validate:"required"`
	Kind    BackendKind `mapstructure:"kind" validate:"required,oneof=vector-index managed-search"`
	Store   VectorStore `mapstructure:"store" validate:"omitempty,oneof=pinecone redis weaviate pgvector"`
	IndexID string      `mapstructure:"index_id" validate:"required"`
	Region  string      `mapstructure:"region"`
	TopK    int         `mapstructure:"top_k" validate:"gt=0"`
	Filters Filters     `mapstructure:"filters"`
}

// Backend names the concrete backend a retriever selection talks to.
func (s RetrieverSelection) Backend() string {
	if s.Kind == BackendKindVectorIndex {
		return string(s.Kind) + "/" + string(s.Store)
	}
	return string(s.Kind)
}

// SortedKeys returns filter attribute names in a stable order.
func (f Filters) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
