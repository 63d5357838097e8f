package theme

import (
	"sync"

	"github.com/pagemason/pagemason/pkg/document"
)

// Registry holds the active catalog of the running application. Its
// mutex guards catalog replacement only: the watcher swaps catalogs in
// while requests read them out. Tree edits stay single-writer and are
// not the registry's concern.
type Registry struct {
	mu      sync.RWMutex
	theme   string
	catalog *document.Catalog
}

// NewRegistry returns a registry serving the given catalog.
func NewRegistry(themeName string, catalog *document.Catalog) *Registry {
	return &Registry{theme: themeName, catalog: catalog}
}

// Theme returns the active theme name.
func (r *Registry) Theme() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme
}

// Catalog returns the active catalog. Callers keep using the returned
// catalog for the duration of one operation; a concurrent swap affects
// only subsequent calls.
func (r *Registry) Catalog() *document.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

// Swap replaces the active catalog atomically.
func (r *Registry) Swap(catalog *document.Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = catalog
}
