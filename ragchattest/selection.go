package ragchattest

import (
	"github.com/RichardKnop/ragchat"
)

type ModelOption func(*ragchat.ModelSelection)

func WithModelLabel(label string) ModelOption {
	return func(m *ragchat.ModelSelection) {
		m.Label = label
	}
}

func WithModelProvider(provider ragchat.Provider) ModelOption {
	return func(m *ragchat.ModelSelection) {
		m.Provider = provider
	}
}

func WithModelID(id string) ModelOption {
	return func(m *ragchat.ModelSelection) {
		m.ModelID = id
	}
}

func WithMaxTokens(maxTokens int) ModelOption {
	return func(m *ragchat.ModelSelection) {
		m.Params.MaxTokens = maxTokens
	}
}

func WithContextWindow(tokens int) ModelOption {
	return func(m *ragchat.ModelSelection) {
		m.ContextWindow = tokens
	}
}

func (g *DataGen) ModelSelection(options ...ModelOption) ragchat.ModelSelection {
	providers := append([]ragchat.Provider(nil), ragchat.Providers...)
	g.ShuffleAnySlice(providers)

	m := ragchat.ModelSelection{
		Label:    g.AppName() + " " + g.UUID(),
		Provider: providers[0],
		ModelID:  g.Word() + "-" + g.AppVersion(),
		Params: ragchat.GenerationParams{
			MaxTokens:   g.Number(1, 4096),
			Temperature: g.Float64Range(0, 1),
		},
	}

	for _, o := range options {
		o(&m)
	}

	return m
}

type RetrieverOption func(*ragchat.RetrieverSelection)

func WithRetrieverLabel(label string) RetrieverOption {
	return func(s *ragchat.RetrieverSelection) {
		s.Label = label
	}
}

func WithRetrieverKind(kind ragchat.BackendKind) RetrieverOption {
	return func(s *ragchat.RetrieverSelection) {
		s.Kind = kind
		if kind == ragchat.BackendKindManagedSearch {
			s.Store = ""
		}
	}
}

func WithRetrieverStore(store ragchat.VectorStore) RetrieverOption {
	return func(s *ragchat.RetrieverSelection) {
		s.Kind = ragchat.BackendKindVectorIndex
		s.Store = store
	}
}

func WithTopK(topK int) RetrieverOption {
	return func(s *ragchat.RetrieverSelection) {
		s.TopK = topK
	}
}

func WithFilters(filters ragchat.Filters) RetrieverOption {
	return func(s *ragchat.RetrieverSelection) {
		s.Filters = filters
	}
}

func (g *DataGen) RetrieverSelection(options ...RetrieverOption) ragchat.RetrieverSelection {
	vectorStores := []ragchat.VectorStore{
		ragchat.VectorStorePinecone,
		ragchat.VectorStoreRedis,
		ragchat.VectorStoreWeaviate,
		ragchat.VectorStorePgvector,
	}
	g.ShuffleAnySlice(vectorStores)

	s := ragchat.RetrieverSelection{
		Label:   g.Company() + " " + g.UUID(),
		Kind:    ragchat.BackendKindVectorIndex,
		Store:   vectorStores[0],
		IndexID: g.Word() + "-idx",
		Region:  g.RandomString([]string{"us-east-1", "us-west-2", "eu-west-1"}),
		TopK:    g.Number(1, 10),
	}

	for _, o := range options {
		o(&s)
	}

	return s
}
