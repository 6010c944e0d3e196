// Package store holds the client-side product list together with its loading
// and error state and the two list filters.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inventory/pkg/catalog"
)

// Catalog is the remote product API the store drives. *apiclient.Client
// satisfies it.
type Catalog interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Create(ctx context.Context, input catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id string, input catalog.ProductInput) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

// State is a copy of the store contents at one point in time.
type State struct {
	Products     []catalog.Product
	Loading      bool
	Error        string
	Query        string
	LowStockOnly bool
}

// Store is an explicit, injectable state container. The zero value is not
// usable; create one with New.
type Store struct {
	api      Catalog
	log      zerolog.Logger
	fallback func() []catalog.Product

	mu    sync.RWMutex
	state State
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for failed operations.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithFallback replaces the placeholder catalog shown after a failed refresh.
func WithFallback(fn func() []catalog.Product) Option {
	return func(s *Store) { s.fallback = fn }
}

// New creates an empty store backed by api.
func New(api Catalog, opts ...Option) *Store {
	s := &Store{
		api:      api,
		log:      zerolog.Nop(),
		fallback: PlaceholderCatalog,
		state:    State{Products: []catalog.Product{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceholderCatalog is the single-item catalog shown in degraded mode.
func PlaceholderCatalog() []catalog.Product {
	now := time.Now().UTC()
	return []catalog.Product{{
		ID:          "1",
		Name:        `MacBook Pro 16"`,
		Description: "Apple M3 Max chip",
		Price:       89900,
		Stock:       3,
		SKU:         "MBP-M3-16",
		ImageURL:    "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=400",
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
}

// Refresh reloads the product list. On failure the list is replaced by the
// placeholder catalog and Error describes the failure; no error is returned.
func (s *Store) Refresh(ctx context.Context) {
	s.begin()

	products, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.log.Warn().Err(err).Msg("product refresh failed, showing placeholder catalog")
		s.state.Products = s.fallback()
		s.state.Error = fmt.Sprintf("API Error: %s. Using mock data.", err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	s.state.Products = products
	s.state.Error = ""
}

// Lookup finds a product in the loaded list without touching the network.
func (s *Store) Lookup(id string) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.state.Products[i], true
	}
	return catalog.Product{}, false
}

// Create stores a new product and puts it at the head of the list.
func (s *Store) Create(ctx context.Context, input catalog.ProductInput) (catalog.Product, error) {
	s.begin()

	product, err := s.api.Create(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail("create", err)
		return catalog.Product{}, err
	}
	s.state.Products = append([]catalog.Product{product}, s.state.Products...)
	return product, nil
}

// Update changes a product and replaces its entry in place.
func (s *Store) Update(ctx context.Context, id string, input catalog.ProductInput) (catalog.Product, error) {
	s.begin()

	product, err := s.api.Update(ctx, id, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail("update", err)
		return catalog.Product{}, err
	}
	if i := s.indexOf(id); i >= 0 {
		products := slices.Clone(s.state.Products)
		products[i] = product
		s.state.Products = products
	}
	return product, nil
}

// Remove deletes a product and drops it from the list.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.begin()

	err := s.api.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail("delete", err)
		return err
	}
	s.state.Products = slices.DeleteFunc(slices.Clone(s.state.Products), func(p catalog.Product) bool {
		return p.ID == id
	})
	return nil
}

// SetQuery sets the free-text filter.
func (s *Store) SetQuery(query string) {
	s.mu.Lock()
	s.state.Query = query
	s.mu.Unlock()
}

// ToggleLowStockOnly flips the low-stock filter and returns its new value.
func (s *Store) ToggleLowStockOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LowStockOnly = !s.state.LowStockOnly
	return s.state.LowStockOnly
}

// FilteredView applies the current filters to the loaded list.
func (s *Store) FilteredView() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Filter(s.state.Products, s.state.Query, s.state.LowStockOnly)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Products = slices.Clone(s.state.Products)
	return st
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

// fail records err; the caller holds the lock.
func (s *Store) fail(op string, err error) {
	s.log.Error().Err(err).Str("op", op).Msg("product operation failed")
	s.state.Error = err.Error()
}

// indexOf returns the position of id in the list or -1; the caller holds the lock.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.state.Products, func(p catalog.Product) bool {
		return p.ID == id
	})
}
