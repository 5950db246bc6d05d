package pricing

import (
	"fmt"
)

// Registry holds one validated catalog per service. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	catalogs map[ServiceType]*Catalog
	order    []ServiceType
}

// NewRegistry validates every catalog and indexes it by service
func NewRegistry(catalogs ...*Catalog) (*Registry, error) {
	r := &Registry{catalogs: make(map[ServiceType]*Catalog, len(catalogs))}
	for _, c := range catalogs {
		if c == nil {
			return nil, fmt.Errorf("nil catalog")
		}
		if _, dup := r.catalogs[c.Service]; dup {
			return nil, fmt.Errorf("duplicate catalog for %s", c.Service)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog: %w", err)
		}
		r.catalogs[c.Service] = c
		r.order = append(r.order, c.Service)
	}
	return r, nil
}

// Catalog returns the catalog for a service
func (r *Registry) Catalog(service ServiceType) (*Catalog, bool) {
	c, ok := r.catalogs[service]
	return c, ok
}

// Catalogs returns every catalog in registration order
func (r *Registry) Catalogs() []*Catalog {
	out := make([]*Catalog, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.catalogs[s])
	}
	return out
}

// Quote prices a selection against the catalog named by its service
func (r *Registry) Quote(sel Selection) (PriceBreakdown, error) {
	c, ok := r.Catalog(sel.Service)
	if !ok {
		return PriceBreakdown{}, newValidationError("service", "unknown service %q", sel.Service)
	}
	return ComputeQuote(c, sel)
}
