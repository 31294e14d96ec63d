// Package source fetches raw posting candidates from the outside world. Each
// owner is served by one Source built from its configured source type, wrapped
// in a politeness decorator.
package source

import (
	"fmt"
	"net/http"
	"sort"

	"internradar/internal/model"
)

// Factory builds a Source for one owner. The same http.Client is shared across
// owners so connection pooling works.
type Factory func(owner model.Owner, client *http.Client) (model.Source, error)

// Registry maps source type names to factories. The zero value is unusable;
// call NewRegistry or DefaultRegistry.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in source types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("board", NewBoardSource)
	r.Register("careerpage", NewCareerPageSource)
	return r
}

// Register adds or replaces a factory for the given source type.
func (r *Registry) Register(sourceType string, f Factory) {
	r.factories[sourceType] = f
}

// New builds a source for the owner based on its SourceType.
func (r *Registry) New(owner model.Owner, client *http.Client) (model.Source, error) {
	f, ok := r.factories[owner.SourceType]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q for owner %q (known: %v)",
			owner.SourceType, owner.Name, r.Types())
	}
	return f(owner, client)
}

// Types returns the registered source type names, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
