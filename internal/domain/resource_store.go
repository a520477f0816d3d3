package domain

import (
	"sort"
	"sync"
)

// ResourceStore is the process-wide mapping from entity id to domain
// entity. The integration service is the only writer; the routing
// layer reads through the accessors. Writes are last-write-wins and
// entries are never expired.
//
// maxEntries optionally bounds each entity map by evicting the oldest
// inserted id; zero keeps the store unbounded.
type ResourceStore struct {
	mu sync.RWMutex

	products map[string]Product
	looks    map[string]Look

	productOrder []string
	lookOrder    []string
	maxEntries   int
}

// NewResourceStore creates an empty store. maxEntries <= 0 disables
// the per-kind bound.
func NewResourceStore(maxEntries int) *ResourceStore {
	return &ResourceStore{
		products:   make(map[string]Product),
		looks:      make(map[string]Look),
		maxEntries: maxEntries,
	}
}

// PutProduct stores p under its Key, overwriting any previous entry.
func (s *ResourceStore) PutProduct(p Product) {
	key := p.Key()
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[key]; !exists {
		s.productOrder = append(s.productOrder, key)
		if s.maxEntries > 0 && len(s.productOrder) > s.maxEntries {
			evict := s.productOrder[0]
			s.productOrder = s.productOrder[1:]
			delete(s.products, evict)
		}
	}
	s.products[key] = p
}

// PutLook stores l under its id, overwriting any previous entry.
func (s *ResourceStore) PutLook(l Look) {
	if l.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.looks[l.ID]; !exists {
		s.lookOrder = append(s.lookOrder, l.ID)
		if s.maxEntries > 0 && len(s.lookOrder) > s.maxEntries {
			evict := s.lookOrder[0]
			s.lookOrder = s.lookOrder[1:]
			delete(s.looks, evict)
		}
	}
	s.looks[l.ID] = l
}

// Product returns the product stored under id.
func (s *ResourceStore) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// Look returns the look stored under id.
func (s *ResourceStore) Look(id string) (Look, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.looks[id]
	return l, ok
}

// Products returns every stored product, sorted by key for stable
// listings.
func (s *ResourceStore) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Looks returns every stored look, sorted by id for stable listings.
func (s *ResourceStore) Looks() []Look {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Look, 0, len(s.looks))
	for _, l := range s.looks {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StoreStats summarizes store contents for observability.
type StoreStats struct {
	ProductCount int
	LookCount    int
}

// Stats returns current entity counts.
func (s *ResourceStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreStats{
		ProductCount: len(s.products),
		LookCount:    len(s.looks),
	}
}
