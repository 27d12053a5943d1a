package categories

import (
	"fmt"
	"strings"
)

// Category is an immutable classification target. Name doubles as the label
// value; Keywords are joined to form the embedding input text.
type Category struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// KeywordText returns the space-joined keyword list passed to the embedding
// provider.
func (c Category) KeywordText() string {
	return strings.Join(c.Keywords, " ")
}

// Registry holds the fixed, ordered list of category definitions for a run.
// It is created once from configuration and never mutated afterwards.
type Registry struct {
	categories []Category
	byName     map[string]int
}

// NewRegistry builds a registry from definitions, preserving order.
// Duplicate or empty names are rejected.
func NewRegistry(defs []Category) (*Registry, error) {
	r := &Registry{
		categories: make([]Category, 0, len(defs)),
		byName:     make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("category with empty name")
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("duplicate category name: %s", name)
		}
		def.Name = name
		r.byName[name] = len(r.categories)
		r.categories = append(r.categories, def)
	}
	return r, nil
}

// Categories returns the definitions in registration order.
func (r *Registry) Categories() []Category {
	return r.categories
}

// Len returns the number of registered categories.
func (r *Registry) Len() int {
	return len(r.categories)
}

// Lookup returns the category with the given name.
func (r *Registry) Lookup(name string) (Category, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Category{}, false
	}
	return r.categories[idx], true
}

// Names returns the category names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}
