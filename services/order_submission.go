package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/laundry-api/pricing"
)

// OrderSubmission is the snapshot handed to the order backend. Field names
// follow the backend's camelCase contract.
type OrderSubmission struct {
	SubmissionID          string                 `json:"submissionId"`
	UserID                string                 `json:"userId,omitempty"`
	ServiceType           pricing.ServiceType    `json:"serviceType"`
	Items                 []SubmittedItem        `json:"items"`
	Modifiers             map[string]string      `json:"modifiers,omitempty"`
	AddOns                []string               `json:"addOns,omitempty"`
	SpecialInstructions   string                 `json:"specialInstructions,omitempty"`
	Preferences           map[string]string      `json:"preferences,omitempty"`
	Pickup                *PickupDetails         `json:"pickup,omitempty"`
	Recurrence            *RecurrenceDetails     `json:"recurrence,omitempty"`
	Dimensions            *pricing.Dimensions    `json:"dimensions,omitempty"`
	Photos                []string               `json:"photos,omitempty"`
	ConsultationRequested bool                   `json:"consultationRequested,omitempty"`
	PromoCode             string                 `json:"promoCode,omitempty"`
	Pricing               pricing.PriceBreakdown `json:"pricing"`
	SubmittedAt           time.Time              `json:"submittedAt"`
}

// SubmittedItem is one ordered line
type SubmittedItem struct {
	ItemID    string            `json:"itemId"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	Modifiers map[string]string `json:"modifiers,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

// PickupDetails describes the requested pickup/delivery
type PickupDetails struct {
	Type    pricing.Fulfillment `json:"type"`
	Address string              `json:"address"`
}

// RecurrenceDetails describes a repeating order
type RecurrenceDetails struct {
	Frequency string `json:"frequency"`
	Day       string `json:"day"`
}

// NewOrderSubmission builds the backend payload from a validated selection and its quote
func NewOrderSubmission(c *pricing.Catalog, sel pricing.Selection, quote pricing.PriceBreakdown) OrderSubmission {
	sub := OrderSubmission{
		SubmissionID:          uuid.NewString(),
		ServiceType:           c.Service,
		Modifiers:             sel.Modifiers,
		AddOns:                sel.AddOns,
		SpecialInstructions:   sel.Notes,
		Preferences:           sel.Preferences,
		Dimensions:            sel.Dimensions,
		Photos:                sel.Photos,
		ConsultationRequested: sel.ConsultationRequested,
		PromoCode:             sel.PromoCode,
		Pricing:               quote,
		SubmittedAt:           time.Now().UTC(),
	}

	for _, item := range c.Items {
		if qty := sel.Items[item.ID]; qty > 0 {
			sub.Items = append(sub.Items, SubmittedItem{ItemID: item.ID, Name: item.Name, Quantity: qty})
		}
	}
	for _, e := range sel.Entries {
		if e.Quantity <= 0 {
			continue
		}
		name := e.ItemID
		if item, err := c.Item(e.ItemID); err == nil {
			name = item.Name
		}
		sub.Items = append(sub.Items, SubmittedItem{
			ItemID:    e.ItemID,
			Name:      name,
			Quantity:  e.Quantity,
			Modifiers: e.Modifiers,
			Notes:     e.Notes,
		})
	}

	if sel.PickupNeeded {
		pt := sel.PickupType
		if pt == "" {
			pt = pricing.FulfillmentRoundTrip
		}
		sub.Pickup = &PickupDetails{Type: pt, Address: sel.Address}
	}
	if sel.Recurring {
		sub.Recurrence = &RecurrenceDetails{Frequency: sel.RecurrenceFrequency, Day: sel.RecurrenceDay}
	}
	return sub
}
