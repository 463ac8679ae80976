package extract

import (
	"fmt"

	"FeedDigest/internal/domain"
)

// Source describes one configured content source handed to an extractor.
type Source struct {
	Name      string
	URL       string
	Extractor string
	Options   map[string]string
}

// Extractor turns raw fetched content into items. Implementations are pure
// transforms: no network, no shared state. Extraction-path problems are
// recovered internally; an error return means the source yielded nothing
// usable at all.
type Extractor interface {
	Name() string
	Extract(raw []byte, src Source) ([]domain.Item, error)
}

// Registry keeps a mapping from extractor names to their implementations.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces an extractor implementation.
func (r *Registry) Register(e Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	r.extractors[e.Name()] = e
}

// Resolve returns an extractor by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Extractor, error) {
	if e, ok := r.extractors[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("extractor %s is not registered", name)
}
