package ragchat

import (
	"errors"
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"
)

// Registry maps selection labels to model and retriever selections. It is built once at
// startup and never mutated afterwards, so it is safe for concurrent use.
type Registry struct {
	models          map[string]ModelSelection
	modelLabels     []string
	retrievers      map[string]RetrieverSelection
	retrieverLabels []string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func NewRegistry(models []ModelSelection, retrievers []RetrieverSelection) (*Registry, error) {
	r := &Registry{
		models:          make(map[string]ModelSelection, len(models)),
		modelLabels:     make([]string, 0, len(models)),
		retrievers:      make(map[string]RetrieverSelection, len(retrievers)),
		retrieverLabels: make([]string, 0, len(retrievers)),
	}

	for _, m := range models {
		if err := validate.Struct(m); err != nil {
			return nil, fmt.Errorf("model %q: %w", m.Label, err)
		}
		if _, ok := r.models[m.Label]; ok {
			return nil, fmt.Errorf("duplicate model label: %q", m.Label)
		}
		r.models[m.Label] = m
		r.modelLabels = append(r.modelLabels, m.Label)
	}

	for _, s := range retrievers {
		if s.Kind == BackendKindVectorIndex && s.Store == "" {
			s.Store = VectorStorePinecone
		}
		if err := validate.Struct(s); err != nil {
			return nil, fmt.Errorf("retriever %q: %w", s.Label, err)
		}
		if s.Kind == BackendKindManagedSearch && s.Store != "" {
			return nil, fmt.Errorf("retriever %q: store is only valid for %s", s.Label, BackendKindVectorIndex)
		}
		if _, ok := r.retrievers[s.Label]; ok {
			return nil, fmt.Errorf("duplicate retriever label: %q", s.Label)
		}
		s.Filters = maps.Clone(s.Filters)
		r.retrievers[s.Label] = s
		r.retrieverLabels = append(r.retrieverLabels, s.Label)
	}

	return r, nil
}

func (r *Registry) ResolveModel(label string) (ModelSelection, error) {
	m, ok := r.models[label]
	if !ok {
		return ModelSelection{}, fmt.Errorf("model %q: %w", label, ErrNotFound)
	}
	return m, nil
}

func (r *Registry) ResolveRetriever(label string) (RetrieverSelection, error) {
	s, ok := r.retrievers[label]
	if !ok {
		return RetrieverSelection{}, fmt.Errorf("retriever %q: %w", label, ErrNotFound)
	}
	// Hand out a copy so callers cannot mutate registry state through the map.
	s.Filters = maps.Clone(s.Filters)
	return s, nil
}

// ModelLabels returns model labels in configuration order.
func (r *Registry) ModelLabels() []string {
	return append([]string(nil), r.modelLabels...)
}

// RetrieverLabels returns retriever labels in configuration order.
func (r *Registry) RetrieverLabels() []string {
	return append([]string(nil), r.retrieverLabels...)
}

// IsValidationError reports whether err came from selection struct validation.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
