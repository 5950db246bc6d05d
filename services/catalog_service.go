package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/kendall-kelly/laundry-api/models"
	"github.com/kendall-kelly/laundry-api/pricing"
	"gorm.io/gorm"
)

// CatalogService serves the validated price lists of every service
type CatalogService interface {
	// Registry returns the catalogs currently in use
	Registry() *pricing.Registry

	// Reload re-reads the catalogs from storage and swaps them in if they validate
	Reload(ctx context.Context) error
}

// DBCatalogService keeps catalogs in the service_catalogs table
type DBCatalogService struct {
	db       *gorm.DB
	mu       sync.RWMutex
	registry *pricing.Registry
}

var catalogServiceInstance CatalogService

// InitCatalogService seeds missing catalogs and loads them all
func InitCatalogService(ctx context.Context, db *gorm.DB) (CatalogService, error) {
	svc, err := NewDBCatalogService(ctx, db)
	if err != nil {
		return nil, err
	}
	catalogServiceInstance = svc
	return svc, nil
}

// GetCatalogService returns the initialized catalog service instance
func GetCatalogService() CatalogService {
	return catalogServiceInstance
}

// SetCatalogService sets the catalog service instance (primarily for testing)
func SetCatalogService(service CatalogService) {
	catalogServiceInstance = service
}

// NewDBCatalogService migrates the table, seeds the built-in catalogs and loads them
func NewDBCatalogService(ctx context.Context, db *gorm.DB) (*DBCatalogService, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog service: database is not connected")
	}
	if err := db.WithContext(ctx).AutoMigrate(&models.ServiceCatalog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalogs: %w", err)
	}
	svc := &DBCatalogService{db: db}
	if err := svc.seed(ctx, pricing.DefaultCatalogs()); err != nil {
		return nil, err
	}
	if err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// seed inserts every built-in catalog that has no row yet. Existing rows are
// left alone so an edited price list survives restarts.
func (s *DBCatalogService) seed(ctx context.Context, catalogs []*pricing.Catalog) error {
	log := logger.Get()
	for _, c := range catalogs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.ServiceCatalog{}).Where("service = ?", string(c.Service)).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s catalog: %w", c.Service, err)
		}
		if count > 0 {
			continue
		}
		row, err := models.NewServiceCatalog(c)
		if err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return fmt.Errorf("failed to seed %s catalog: %w", c.Service, err)
		}
		log.Info(log.WithField(ctx, "service_type", c.Service), "seeded default catalog")
	}
	return nil
}

// Reload implements CatalogService
func (s *DBCatalogService) Reload(ctx context.Context) error {
	var rows []models.ServiceCatalog
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	catalogs := make([]*pricing.Catalog, 0, len(rows))
	for i := range rows {
		c, err := rows[i].Catalog()
		if err != nil {
			return err
		}
		catalogs = append(catalogs, c)
	}

	registry, err := pricing.NewRegistry(catalogs...)
	if err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	s.mu.Lock()
	s.registry = registry
	s.mu.Unlock()
	return nil
}

// Registry implements CatalogService
func (s *DBCatalogService) Registry() *pricing.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}
