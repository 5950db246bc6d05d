package pricing

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// Dimension units accepted for custom sizes
const (
	UnitFeet   = "ft"
	UnitInches = "in"
)

// Dimensions is a customer-measured rug size
type Dimensions struct {
	Width  decimal.Decimal `json:"width"`
	Length decimal.Decimal `json:"length"`
	Unit   string          `json:"unit"`
}

// Feet returns width and length converted to feet
func (d Dimensions) Feet() (width, length decimal.Decimal) {
	if d.Unit == UnitInches {
		return d.Width.Div(inchesPerFoot), d.Length.Div(inchesPerFoot)
	}
	return d.Width, d.Length
}

// SquareFeet is the measured area rounded to two places
func (d Dimensions) SquareFeet() decimal.Decimal {
	w, l := d.Feet()
	return w.Mul(l).Round(2)
}

// Entry is one line with its own modifiers, such as a pair of shoes with a material and condition
type Entry struct {
	ItemID    string            `json:"item_id"`
	Quantity  int               `json:"quantity"`
	Modifiers map[string]string `json:"modifiers,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

// Selection is the order draft: the customer's current choices for one service.
// Quotes are always recomputed from a Selection and never patched incrementally.
type Selection struct {
	Service               ServiceType       `json:"service"`
	Items                 map[string]int    `json:"items,omitempty"`
	Entries               []Entry           `json:"entries,omitempty"`
	Modifiers             map[string]string `json:"modifiers,omitempty"`
	AddOns                []string          `json:"add_ons,omitempty"`
	Notes                 string            `json:"notes,omitempty"`
	PickupNeeded          bool              `json:"pickup_needed,omitempty"`
	PickupType            Fulfillment       `json:"pickup_type,omitempty"`
	Address               string            `json:"address,omitempty"`
	Recurring             bool              `json:"recurring,omitempty"`
	RecurrenceFrequency   string            `json:"recurrence_frequency,omitempty"`
	RecurrenceDay         string            `json:"recurrence_day,omitempty"`
	ConsultationRequested bool              `json:"consultation_requested,omitempty"`
	Dimensions            *Dimensions       `json:"dimensions,omitempty"`
	PromoCode             string            `json:"promo_code,omitempty"`
	AppliedBundle         string            `json:"applied_bundle,omitempty"`
	Photos                []string          `json:"photos,omitempty"`
	Preferences           map[string]string `json:"preferences,omitempty"`
}

// DefaultSelection returns a fresh draft with the catalog's default quantities and options
func DefaultSelection(c *Catalog) Selection {
	s := Selection{
		Service:     c.Service,
		Items:       map[string]int{},
		Modifiers:   map[string]string{},
		Preferences: map[string]string{},
	}
	for id, qty := range c.DefaultItems {
		s.Items[id] = qty
	}
	for _, g := range c.Modifiers {
		s.Modifiers[g.ID] = g.Default
	}
	for _, p := range c.Preferences {
		if p.Default != "" {
			s.Preferences[p.ID] = p.Default
		}
	}
	if len(c.Recurrence) > 0 {
		s.RecurrenceFrequency = c.Recurrence[0]
		s.RecurrenceDay = "Monday"
	}
	if len(c.Fees) > 0 {
		s.PickupType = FulfillmentRoundTrip
	}
	return s
}

// SetQuantity sets an item's quantity. Negative quantities are rejected and zero
// removes the item. Any applied bundle is cleared since the selection no longer matches it.
func (s *Selection) SetQuantity(itemID string, qty int) error {
	if qty < 0 {
		return newValidationError("items."+itemID, "quantity cannot be negative (got %d)", qty)
	}
	if s.Items == nil {
		s.Items = map[string]int{}
	}
	if qty == 0 {
		delete(s.Items, itemID)
	} else {
		s.Items[itemID] = qty
	}
	s.AppliedBundle = ""
	return nil
}

// AdjustQuantity adds delta to an item's quantity, stopping at zero
func (s *Selection) AdjustQuantity(itemID string, delta int) {
	qty := s.Items[itemID] + delta
	if qty < 0 {
		qty = 0
	}
	// qty is never negative here
	_ = s.SetQuantity(itemID, qty)
}

// AddEntry appends a line with its own modifiers
func (s *Selection) AddEntry(e Entry) error {
	if e.Quantity < 1 {
		return newValidationError("entries.quantity", "quantity must be at least 1 (got %d)", e.Quantity)
	}
	s.Entries = append(slices.Clip(s.Entries), e)
	return nil
}

// RemoveEntry drops the entry at index i. Mutators never write into a backing
// array shared with copies of the selection.
func (s *Selection) RemoveEntry(i int) {
	if i < 0 || i >= len(s.Entries) {
		return
	}
	s.Entries = slices.Delete(slices.Clone(s.Entries), i, i+1)
}

// SetModifier chooses the active option of a modifier group
func (s *Selection) SetModifier(groupID, optionID string) {
	if s.Modifiers == nil {
		s.Modifiers = map[string]string{}
	}
	s.Modifiers[groupID] = optionID
}

// ToggleAddOn adds the add-on if absent and removes it if present
func (s *Selection) ToggleAddOn(id string) {
	for i, a := range s.AddOns {
		if a == id {
			s.AddOns = slices.Delete(slices.Clone(s.AddOns), i, i+1)
			return
		}
	}
	s.AddOns = append(slices.Clip(s.AddOns), id)
}

// TotalQuantity counts items, entries and a custom-size piece
func (s Selection) TotalQuantity() int {
	total := 0
	for _, qty := range s.Items {
		total += qty
	}
	for _, e := range s.Entries {
		total += e.Quantity
	}
	if s.Dimensions != nil {
		total++
	}
	return total
}

// Clone returns a deep copy safe to hand to another goroutine or collaborator
func (s Selection) Clone() Selection {
	out := s
	out.Items = copyIntMap(s.Items)
	out.Modifiers = copyStringMap(s.Modifiers)
	out.Preferences = copyStringMap(s.Preferences)
	out.AddOns = append([]string(nil), s.AddOns...)
	out.Photos = append([]string(nil), s.Photos...)
	if s.Entries != nil {
		out.Entries = make([]Entry, len(s.Entries))
		for i, e := range s.Entries {
			e.Modifiers = copyStringMap(e.Modifiers)
			out.Entries[i] = e
		}
	}
	if s.Dimensions != nil {
		d := *s.Dimensions
		out.Dimensions = &d
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
