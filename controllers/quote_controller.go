package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/kendall-kelly/laundry-api/pricing"
	"github.com/rs/zerolog"
)

// CreateQuote handles POST /api/v1/services/:service/quote
func CreateQuote(c *gin.Context) {
	catalog, ok := catalogFor(c)
	if !ok {
		return
	}
	sel, ok := bindSelection(c, catalog)
	if !ok {
		return
	}

	quote, err := pricing.ComputeQuote(catalog, sel)
	if err != nil {
		respondPricingError(c, err)
		return
	}
	respondOK(c, http.StatusOK, quote)
}

// ValidateSelection handles POST /api/v1/services/:service/validate.
// An invalid selection is a normal answer here, so the status stays 200.
func ValidateSelection(c *gin.Context) {
	catalog, ok := catalogFor(c)
	if !ok {
		return
	}
	sel, ok := bindSelection(c, catalog)
	if !ok {
		return
	}

	result := pricing.ValidateSelection(catalog, sel)
	if !result.OK {
		logger.Get().Event(c.Request.Context(), zerolog.InfoLevel).
			Str("error_kind", "validation").
			Str("service_type", string(catalog.Service)).
			Strs("reasons", result.Reasons).
			Msg("selection not orderable")
	}
	respondOK(c, http.StatusOK, result)
}

// ListApplicableBundles handles POST /api/v1/services/:service/bundles
func ListApplicableBundles(c *gin.Context) {
	catalog, ok := catalogFor(c)
	if !ok {
		return
	}
	sel, ok := bindSelection(c, catalog)
	if !ok {
		return
	}

	bundles := pricing.ApplicableBundles(catalog, sel)
	if bundles == nil {
		bundles = []pricing.BundleDeal{}
	}
	respondOK(c, http.StatusOK, bundles)
}

// ApplyBundle handles POST /api/v1/services/:service/bundles/:bundleId/apply.
// It returns the rewritten selection together with its new quote.
func ApplyBundle(c *gin.Context) {
	catalog, ok := catalogFor(c)
	if !ok {
		return
	}
	sel, ok := bindSelection(c, catalog)
	if !ok {
		return
	}

	if err := sel.ApplyBundle(catalog, c.Param("bundleId")); err != nil {
		respondPricingError(c, err)
		return
	}
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
