package creativeflow

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/creativeflow/types"
)

// ErrUnknownEntity is returned by Catalog lookups for ids it does not hold.
var ErrUnknownEntity = errors.New("unknown entity")

// Catalog is a read-only EntityProvider backed by a YAML document:
//
//	brands:   [{id: ..., name: ..., logo_url: ...}]
//	products: [{id: ..., brand_id: ..., name: ..., image_urls: [...]}]
//	talents:  [{id: ..., name: ..., image_urls: [...]}]
type Catalog struct {
	brands   map[string]*types.Brand
	products map[string]*types.Product
	talents  map[string]*types.Talent
}

type catalogFile struct {
	Brands   []types.Brand   `yaml:"brands"`
	Products []types.Product `yaml:"products"`
	Talents  []types.Talent  `yaml:"talents"`
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog. Ids must be non-empty and unique per kind, and every
// product must name a brand present in the same document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		brands:   make(map[string]*types.Brand, len(f.Brands)),
		products: make(map[string]*types.Product, len(f.Products)),
		talents:  make(map[string]*types.Talent, len(f.Talents)),
	}
	for i := range f.Brands {
		b := &f.Brands[i]
		if err := index(c.brands, "brand", b.ID, b); err != nil {
			return nil, err
		}
	}
	for i := range f.Products {
		p := &f.Products[i]
		if _, ok := c.brands[p.BrandID]; !ok {
			return nil, fmt.Errorf("product %s: brand %q is not in the catalog", p.ID, p.BrandID)
		}
		if err := index(c.products, "product", p.ID, p); err != nil {
			return nil, err
		}
	}
	for i := range f.Talents {
		t := &f.Talents[i]
		if err := index(c.talents, "talent", t.ID, t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func index[T any](m map[string]*T, kind, id string, v *T) error {
	if id == "" {
		return fmt.Errorf("%s without id", kind)
	}
	if _, dup := m[id]; dup {
		return fmt.Errorf("duplicate %s id %q", kind, id)
	}
	m[id] = v
	return nil
}

func lookup[T any](ctx context.Context, m map[string]*T, kind, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownEntity, kind, id)
	}
	cp := *v
	return &cp, nil
}

func (c *Catalog) Brand(ctx context.Context, id string) (*types.Brand, error) {
	return lookup(ctx, c.brands, "brand", id)
}

func (c *Catalog) Product(ctx context.Context, id string) (*types.Product, error) {
	return lookup(ctx, c.products, "product", id)
}

func (c *Catalog) Talent(ctx context.Context, id string) (*types.Talent, error) {
	return lookup(ctx, c.talents, "talent", id)
}
