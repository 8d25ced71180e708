package catalog

import (
	"sync"
	"time"
)

// Registry holds the products of the most recent successful load.
// It is replaced wholesale on every load and never merged.
type Registry struct {
	mu       sync.RWMutex
	products []Product
	index    map[string]int
	query    *Query
	loadedAt time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		products: make([]Product, 0),
		index:    make(map[string]int),
	}
}

// Replace swaps in a new product set. For duplicate ids the first one wins.
func (r *Registry) Replace(products []Product, q Query) {
	index := make(map[string]int, len(products))
	for i, p := range products {
		if _, ok := index[p.ID]; !ok {
			index[p.ID] = i
		}
	}
	copied := make([]Product, len(products))
	copy(copied, products)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = copied
	r.index = index
	r.query = &q
	r.loadedAt = time.Now()
}

// Find looks a product up by its normalized id
func (r *Registry) Find(id string) (Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Product{}, false
	}
	return r.products[i], true
}

// Products returns a copy of the products in upstream order
func (r *Registry) Products() []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out
}

// Len returns the number of products
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

// LastQuery returns the parameters of the load that produced the current set
func (r *Registry) LastQuery() (Query, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.query == nil {
		return Query{}, false
	}
	return *r.query, true
}

// LoadedAt returns when the current set was loaded, zero if never
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}
