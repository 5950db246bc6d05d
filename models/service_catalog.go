package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kendall-kelly/laundry-api/pricing"
	"gorm.io/gorm"
)

// ServiceCatalog stores the price list of one service as a JSON document
type ServiceCatalog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Service   string         `gorm:"uniqueIndex;not null" json:"service"`
	Name      string         `gorm:"not null" json:"name"`
	Document  string         `gorm:"type:text;not null" json:"-"` // pricing.Catalog encoded as JSON
	Version   int            `gorm:"not null" json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ServiceCatalog model
func (ServiceCatalog) TableName() string {
	return "service_catalogs"
}

// NewServiceCatalog encodes a catalog into a storable row
func NewServiceCatalog(c *pricing.Catalog) (*ServiceCatalog, error) {
	doc, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s catalog: %w", c.Service, err)
	}
	return &ServiceCatalog{
		Service:  string(c.Service),
		Name:     c.Name,
		Document: string(doc),
		Version:  1,
	}, nil
}

// Catalog decodes the stored document
func (m *ServiceCatalog) Catalog() (*pricing.Catalog, error) {
	var c pricing.Catalog
	if err := json.Unmarshal([]byte(m.Document), &c); err != nil {
		return nil, fmt.Errorf("failed to decode %s catalog: %w", m.Service, err)
	}
	if string(c.Service) != m.Service {
		return nil, fmt.Errorf("catalog row %q holds a document for %q", m.Service, c.Service)
	}
	return &c, nil
}
