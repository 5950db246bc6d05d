package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-api/pricing"
	"github.com/kendall-kelly/laundry-api/services"
)

// ServiceSummary is one entry of the service menu
type ServiceSummary struct {
	Service    pricing.ServiceType `json:"service"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit,omitempty"`
	StartingAt string              `json:"starting_at"`
}

// currentRegistry returns the live catalogs, writing a 503 when none are loaded
func currentRegistry(c *gin.Context) *pricing.Registry {
	svc := services.GetCatalogService()
	if svc == nil || svc.Registry() == nil {
		respondError(c, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Price lists are not loaded", nil)
		return nil
	}
	return svc.Registry()
}

// ListServices handles GET /api/v1/services
func ListServices(c *gin.Context) {
	registry := currentRegistry(c)
	if registry == nil {
		return
	}

	catalogs := registry.Catalogs()
	summaries := make([]ServiceSummary, 0, len(catalogs))
	for _, catalog := range catalogs {
		summaries = append(summaries, ServiceSummary{
			Service:    catalog.Service,
			Name:       catalog.Name,
			Unit:       catalog.Unit,
			StartingAt: catalog.StartingAt().StringFixed(pricing.MoneyPlaces),
		})
	}
	respondOK(c, http.StatusOK, summaries)
}

// GetCatalog handles GET /api/v1/services/:service/catalog
func GetCatalog(c *gin.Context) {
	catalog, ok := catalogFor(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, catalog)
}

// GetDefaultSelection handles GET /api/v1/services/:service/selection/default.
// The draft comes back already priced so a client can render it directly.
func GetDefaultSelection(c *gin.Context) {
	catalog, ok := catalogFor(c)
	if !ok {
		return
	}

	sel := pricing.DefaultSelection(catalog)
	quote, err := pricing.ComputeQuote(catalog, sel)
	if err != nil {
		respondPricingError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"selection": sel,
		"quote":     quote,
	})
}
