package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/kendall-kelly/laundry-api/pricing"
	"github.com/kendall-kelly/laundry-api/services"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SubmitOrderRequest represents the request body for placing an order
type SubmitOrderRequest struct {
	UserID    string             `json:"user_id" binding:"max=128"`
	Selection *pricing.Selection `json:"selection" binding:"required"`
	// ExpectedTotal is the total the customer was shown; a mismatch means the price changed
	ExpectedTotal *decimal.Decimal `json:"expected_total"`
}

// SubmitOrder handles POST /api/v1/orders - validates, prices and forwards an order
func SubmitOrder(c *gin.Context) {
	registry := currentRegistry(c)
	if registry == nil {
		return
	}

	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	sel := *req.Selection

	catalog, ok := registry.Catalog(sel.Service)
	if !ok {
		respondPricingError(c, &pricing.ValidationError{
			Code:    pricing.CodeValidation,
			Field:   "selection.service",
			Message: fmt.Sprintf("unknown service %q", sel.Service),
		})
		return
	}

	ctx := logger.Get().WithField(c.Request.Context(), "service_type", catalog.Service)
	c.Request = c.Request.WithContext(ctx)

	for _, key := range sel.Photos {
		if !services.IsPhotoKey(key) {
			respondPricingError(c, &pricing.ValidationError{
				Code:    pricing.CodeValidation,
				Field:   "selection.photos",
				Message: fmt.Sprintf("%q is not an uploaded photo", key),
			})
			return
		}
	}

	result := pricing.ValidateSelection(catalog, sel)
	if !result.OK {
		logger.Get().Event(ctx, zerolog.InfoLevel).
			Str("error_kind", "validation").
			Strs("reasons", result.Reasons).
			Msg("order rejected")
		respondError(c, http.StatusBadRequest, pricing.CodeValidation, result.Reasons[0], gin.H{
			"reasons":  result.Reasons,
			"warnings": result.Warnings,
		})
		return
	}

	quote, err := pricing.ComputeQuote(catalog, sel)
	if err != nil {
		respondPricingError(c, err)
		return
	}

	if req.ExpectedTotal != nil && !pricing.SameAmount(*req.ExpectedTotal, quote.Total) {
		respondError(c, http.StatusConflict, "QUOTE_CHANGED", "The price of this order has changed. Please review the new total.", gin.H{
			"quote": quote,
		})
		return
	}

	submitter := services.GetOrderSubmitter()
	if submitter == nil {
		respondError(c, http.StatusServiceUnavailable, "ORDER_SUBMISSION_UNAVAILABLE", "Orders cannot be placed right now", nil)
		return
	}

	sub := services.NewOrderSubmission(catalog, sel, quote)
	sub.UserID = req.UserID
	receipt, err := submitter.Submit(ctx, sub)
	if err != nil {
		logger.Get().Error(logger.Get().WithField(ctx, "submission_id", sub.SubmissionID), "order submission failed", err)

		var subErr *services.SubmissionError
		if errors.As(err, &subErr) && !subErr.Retryable() {
			respondError(c, http.StatusBadGateway, "ORDER_REJECTED", "The order service rejected this order", gin.H{
				"status": subErr.StatusCode,
			})
			return
		}
		respondError(c, http.StatusBadGateway, "ORDER_BACKEND_UNAVAILABLE", "Could not reach the order service. Please try again.", nil)
		return
	}

	logger.Get().Info(logger.Get().WithFields(ctx, map[string]any{
		"submission_id": receipt.SubmissionID,
		"order_id":      receipt.OrderID,
		"total":         quote.Total.StringFixed(pricing.MoneyPlaces),
	}), "order submitted")

	respondOK(c, http.StatusCreated, gin.H{
		"receipt":  receipt,
		"quote":    quote,
		"warnings": result.Warnings,
	})
}
