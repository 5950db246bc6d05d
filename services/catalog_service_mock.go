package services

import (
	"context"
	"sync"

	"github.com/kendall-kelly/laundry-api/pricing"
)

// MockCatalogService serves a fixed set of catalogs without a database
type MockCatalogService struct {
	mu          sync.RWMutex
	registry    *pricing.Registry
	reloadCalls int
	reloadErr   error
}

// NewMockCatalogService creates a mock over the given catalogs, or the built-in ones when none are given
func NewMockCatalogService(catalogs ...*pricing.Catalog) (*MockCatalogService, error) {
	if len(catalogs) == 0 {
		catalogs = pricing.DefaultCatalogs()
	}
	registry, err := pricing.NewRegistry(catalogs...)
	if err != nil {
		return nil, err
	}
	return &MockCatalogService{registry: registry}, nil
}

// SetAsMockForTesting sets this mock as the global catalog service instance for testing
func (m *MockCatalogService) SetAsMockForTesting() {
	SetCatalogService(m)
}

// Registry implements CatalogService
func (m *MockCatalogService) Registry() *pricing.Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry
}

// Reload implements CatalogService
func (m *MockCatalogService) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloadCalls++
	return m.reloadErr
}

// FailReload makes subsequent Reload calls return err
func (m *MockCatalogService) FailReload(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloadErr = err
}

// ReloadCalls returns how many times Reload was called
func (m *MockCatalogService) ReloadCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reloadCalls
}
