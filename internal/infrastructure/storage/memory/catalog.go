package memory

import (
	"context"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/catalogs/location"
	"hydrostock/internal/domain/catalogs/product"
)

// Catalog implements product.Registry and location.Registry from seeded data.
type Catalog struct {
	s *Store
}

// NewCatalog creates a catalog over the store.
func NewCatalog(s *Store) *Catalog {
	return &Catalog{s: s}
}

// AddProduct registers a product reference.
func (c *Catalog) AddProduct(ref entity.ProductRef) {
	c.s.catalogMu.Lock()
	defer c.s.catalogMu.Unlock()
	c.s.products[ref] = struct{}{}
}

// AddLocation registers a storage location.
func (c *Catalog) AddLocation(loc entity.Location) {
	c.s.catalogMu.Lock()
	defer c.s.catalogMu.Unlock()
	c.s.locations[loc.ID] = loc
}

// Exists implements product.Registry.
func (c *Catalog) Exists(_ context.Context, ref entity.ProductRef) (bool, error) {
	c.s.catalogMu.RLock()
	defer c.s.catalogMu.RUnlock()
	_, ok := c.s.products[ref]
	return ok, nil
}

// Get implements location.Registry.
func (c *Catalog) Get(_ context.Context, locationID id.ID) (*entity.Location, error) {
	c.s.catalogMu.RLock()
	defer c.s.catalogMu.RUnlock()
	loc, ok := c.s.locations[locationID]
	if !ok {
		return nil, apperror.NewNotFound("location", locationID)
	}
	return &loc, nil
}

var (
	_ product.Registry  = (*Catalog)(nil)
	_ location.Registry = (*Catalog)(nil)
)
