package pricing

import (
	"errors"
	"fmt"
)

// Error codes surfaced to API clients
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeCatalogLookup = "CATALOG_LOOKUP_ERROR"
)

// ValidationError represents bad user input (quantity, dimension, text length, missing address).
// It is recoverable and carries an actionable message for the user.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CatalogLookupError is returned when a selection references an id that is not in the catalog.
// It indicates an integration bug between the client and the catalog, not a user mistake.
type CatalogLookupError struct {
	Code    string
	Service ServiceType
	Kind    string // item, modifier group, modifier option, add-on, bundle, fee
	ID      string
}

func (e *CatalogLookupError) Error() string {
	return fmt.Sprintf("%s catalog has no %s %q", e.Service, e.Kind, e.ID)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    CodeValidation,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func newLookupError(service ServiceType, kind, id string) *CatalogLookupError {
	return &CatalogLookupError{
		Code:    CodeCatalogLookup,
		Service: service,
		Kind:    kind,
		ID:      id,
	}
}

// AsValidationError unwraps err into a *ValidationError if possible
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsCatalogLookupError unwraps err into a *CatalogLookupError if possible
func AsCatalogLookupError(err error) (*CatalogLookupError, bool) {
	var le *CatalogLookupError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
