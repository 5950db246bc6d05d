package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/kendall-kelly/laundry-api/pricing"
	"github.com/rs/zerolog"
)

func init() {
	// report binding failures by json field name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if tag == "" || tag == "-" {
				return f.Name
			}
			return tag
		})
	}
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondBindingError reports a malformed request body field by field
func respondBindingError(c *gin.Context, err error) {
	logger.Get().Event(c.Request.Context(), zerolog.InfoLevel).
		Str("error_kind", "validation").Err(err).Msg("invalid request body")
	respondError(c, http.StatusBadRequest, pricing.CodeValidation, "Invalid request data", formatValidationErrors(err))
}

func formatValidationErrors(err error) any {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return details
	}
	return err.Error()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}

// respondPricingError maps engine errors onto the API envelope. Lookup errors
// mean the client and catalog disagree and are logged at error level.
func respondPricingError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	log := logger.Get()

	if le, ok := pricing.AsCatalogLookupError(err); ok {
		log.Event(ctx, zerolog.ErrorLevel).
			Str("error_kind", "catalog_lookup").
			Str("service_type", string(le.Service)).
			Str("kind", le.Kind).
			Str("id", le.ID).
			Msg("selection references an id missing from the catalog")
		respondError(c, http.StatusUnprocessableEntity, le.Code, le.Error(), gin.H{
			"service": le.Service,
			"kind":    le.Kind,
			"id":      le.ID,
		})
		return
	}

	if ve, ok := pricing.AsValidationError(err); ok {
		log.Event(ctx, zerolog.InfoLevel).
			Str("error_kind", "validation").
			Str("field", ve.Field).
			Msg(ve.Message)
		var details any
		if ve.Field != "" {
			details = gin.H{"field": ve.Field}
		}
		respondError(c, http.StatusBadRequest, ve.Code, ve.Message, details)
		return
	}

	log.Error(ctx, "failed to price selection", err)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to price selection", nil)
}

// catalogFor resolves the :service path parameter, writing a 404/503 when it cannot
func catalogFor(c *gin.Context) (*pricing.Catalog, bool) {
	registry := currentRegistry(c)
	if registry == nil {
		return nil, false
	}

	service := pricing.ServiceType(c.Param("service"))
	catalog, ok := registry.Catalog(service)
	if !ok {
		respondError(c, http.StatusNotFound, "SERVICE_NOT_FOUND", fmt.Sprintf("Unknown service %q", service), nil)
		return nil, false
	}
	return catalog, true
}

// bindSelection reads a Selection body for catalog, defaulting its service to the path's
func bindSelection(c *gin.Context, catalog *pricing.Catalog) (pricing.Selection, bool) {
	var sel pricing.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		respondBindingError(c, err)
		return sel, false
	}
	if sel.Service == "" {
		sel.Service = catalog.Service
	}
	if sel.Service != catalog.Service {
		respondPricingError(c, &pricing.ValidationError{
			Code:    pricing.CodeValidation,
			Field:   "service",
			Message: fmt.Sprintf("selection is for %s, not %s", sel.Service, catalog.Service),
		})
		return sel, false
	}
	return sel, true
}
