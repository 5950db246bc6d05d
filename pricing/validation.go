package pricing

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationResult is the outcome of ValidateSelection. Warnings never block an order.
type ValidationResult struct {
	OK       bool     `json:"ok"`
	Reasons  []string `json:"reasons,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type checker struct {
	reasons  []string
	warnings []string
}

func (ch *checker) reject(format string, args ...any) {
	ch.reasons = append(ch.reasons, fmt.Sprintf(format, args...))
}

func (ch *checker) warn(format string, args ...any) {
	ch.warnings = append(ch.warnings, fmt.Sprintf(format, args...))
}

// ValidateSelection gates order submission. It collects every human-readable
// reason the selection cannot be ordered instead of stopping at the first one.
// A result with OK set is guaranteed to price without error.
func ValidateSelection(c *Catalog, s Selection) ValidationResult {
	ch := &checker{}

	if s.Service != "" && s.Service != c.Service {
		ch.reject("Selection is for %s, not %s.", s.Service, c.Name)
	}

	checkQuantities(ch, c, s)
	checkDimensions(ch, c, s)
	checkText(ch, c, s)
	checkFulfillment(ch, c, s)
	checkOptions(ch, c, s)
	checkRecurrence(ch, c, s)

	if limit := c.Limits.MaxPhotos; limit > 0 && len(s.Photos) > limit {
		ch.reject("You can attach up to %d photos.", limit)
	}
	if code := strings.TrimSpace(s.PromoCode); code != "" {
		if _, ok := c.Promotion(code); !ok {
			ch.reject("Promo code %q not recognized.", code)
		}
	}
	if s.AppliedBundle != "" {
		if b, err := c.Bundle(s.AppliedBundle); err != nil {
			ch.reject("Unknown bundle %q.", s.AppliedBundle)
		} else if !bundleMatches(b, s) {
			ch.reject("Your selection no longer matches the %s.", b.Name)
		}
	}

	// anything the engine would still refuse
	if len(ch.reasons) == 0 {
		if _, err := ComputeQuote(c, s); err != nil {
			ch.reject("%s", err.Error())
		}
	}

	return ValidationResult{
		OK:       len(ch.reasons) == 0,
		Reasons:  ch.reasons,
		Warnings: ch.warnings,
	}
}

func checkQuantities(ch *checker, c *Catalog, s Selection) {
	oversized := false
	for _, id := range sortedKeys(s.Items) {
		if _, err := c.Item(id); err != nil {
			ch.reject("Unknown item %q.", id)
		}
		if s.Items[id] < 0 {
			ch.reject("Quantity for %s cannot be negative.", id)
		}
		if s.Items[id] > MaxLineQuantity {
			ch.reject("Quantity for %s cannot exceed %d.", id, MaxLineQuantity)
			oversized = true
		}
	}
	for i, e := range s.Entries {
		if _, err := c.Item(e.ItemID); err != nil {
			ch.reject("Unknown item %q in line %d.", e.ItemID, i+1)
		}
		if e.Quantity < 0 {
			ch.reject("Quantity in line %d cannot be negative.", i+1)
		}
		if e.Quantity > MaxLineQuantity {
			ch.reject("Quantity in line %d cannot exceed %d.", i+1, MaxLineQuantity)
			oversized = true
		}
	}
	if oversized {
		return
	}
	if len(s.Entries) > MaxOrderQuantity {
		ch.reject("An order may hold at most %d %s.", MaxOrderQuantity, c.Unit)
		return
	}

	total := s.TotalQuantity()
	if total <= 0 {
		msg := c.EmptyMessage
		if msg == "" {
			msg = "Please select at least one item."
		}
		ch.reject("%s", msg)
		return
	}
	if total > MaxOrderQuantity {
		ch.reject("An order may hold at most %d %s.", MaxOrderQuantity, c.Unit)
		return
	}
	if s.Dimensions != nil {
		return
	}
	if lo := c.Limits.MinQuantity; lo > 0 && total < lo {
		ch.reject("Minimum quantity is %d %s.", lo, c.Unit)
	}
	if hi := c.Limits.MaxQuantity; hi > 0 && total > hi {
		ch.reject("Maximum quantity is %d %s.", hi, c.Unit)
	}
}

func checkDimensions(ch *checker, c *Catalog, s Selection) {
	d := s.Dimensions
	if d == nil {
		return
	}
	cs := c.CustomSize
	if cs == nil {
		ch.reject("Custom dimensions are not offered for %s.", c.Name)
		return
	}
	if d.Unit != "" && d.Unit != UnitFeet && d.Unit != UnitInches {
		ch.reject("Dimensions must be in %s or %s.", UnitFeet, UnitInches)
		return
	}
	if s.TotalQuantity() > 1 {
		ch.reject("Choose either a listed size or custom dimensions, not both.")
		return
	}
	if !d.Width.IsPositive() || !d.Length.IsPositive() {
		ch.reject("Please enter valid dimensions.")
		return
	}
	if !boundedDimension(d.Width) || !boundedDimension(d.Length) {
		ch.reject("Dimensions must be between %s and %s feet with at most %d decimal places.", cs.MinFeet.String(), cs.MaxFeet.String(), maxDimensionPlaces)
		return
	}
	w, l := d.Feet()
	if outOfRange(w, cs) || outOfRange(l, cs) {
		ch.reject("Dimensions must be between %s and %s feet.", cs.MinFeet.String(), cs.MaxFeet.String())
		return
	}
	if cs.SpecialHandlingFeet.IsPositive() && (w.GreaterThan(cs.SpecialHandlingFeet) || l.GreaterThan(cs.SpecialHandlingFeet)) {
		ch.warn("Large rugs may require special handling.")
	}
}

func checkText(ch *checker, c *Catalog, s Selection) {
	limit := c.Limits.MaxNotesLength
	if limit <= 0 {
		return
	}
	if utf8.RuneCountInString(s.Notes) > limit {
		ch.reject("Special instructions max %d characters.", limit)
	}
	for i, e := range s.Entries {
		if utf8.RuneCountInString(e.Notes) > limit {
			ch.reject("Notes for line %d max %d characters.", i+1, limit)
		}
	}
}

func checkFulfillment(ch *checker, c *Catalog, s Selection) {
	if !s.PickupNeeded {
		return
	}
	if strings.TrimSpace(s.Address) == "" {
		ch.reject("Please select a pickup/delivery address.")
	}
	pt := s.PickupType
	if pt == "" {
		pt = FulfillmentRoundTrip
	}
	if _, err := c.Fee(pt); err != nil {
		ch.reject("Unknown pickup option %q.", pt)
	}
}

func checkOptions(ch *checker, c *Catalog, s Selection) {
	for _, gid := range sortedKeys(s.Modifiers) {
		if s.Modifiers[gid] == "" {
			continue
		}
		if _, err := c.ModifierOption(gid, s.Modifiers[gid]); err != nil {
			ch.reject("Unknown option %q for %s.", s.Modifiers[gid], gid)
		}
	}
	for i, e := range s.Entries {
		for _, gid := range sortedKeys(e.Modifiers) {
			g, err := c.ModifierGroup(gid)
			if err != nil {
				ch.reject("Unknown option group %q in line %d.", gid, i+1)
				continue
			}
			if g.Scope != ScopeLine {
				ch.reject("%s is chosen once per order, not per line.", g.Name)
				continue
			}
			if _, ok := g.Option(e.Modifiers[gid]); !ok {
				ch.reject("Unknown option %q for %s in line %d.", e.Modifiers[gid], g.Name, i+1)
			}
		}
	}

	seen := map[string]bool{}
	for _, id := range s.AddOns {
		if seen[id] {
			ch.reject("Add-on %q selected twice.", id)
			continue
		}
		seen[id] = true
		if _, err := c.AddOn(id); err != nil {
			ch.reject("Unknown add-on %q.", id)
		}
	}

	for _, pid := range sortedKeys(s.Preferences) {
		p, ok := c.Preference(pid)
		if !ok {
			ch.reject("Unknown preference %q.", pid)
			continue
		}
		if !containsString(p.Options, s.Preferences[pid]) {
			ch.reject("%q is not a valid %s.", s.Preferences[pid], p.Name)
		}
	}

	checkCareLevel(ch, c, s)
}

// checkCareLevel rejects items that are not offered at the chosen care level,
// e.g. sandals only get a quick clean
func checkCareLevel(ch *checker, c *Catalog, s Selection) {
	if c.CareLevelGroup == "" {
		return
	}
	g, err := c.ModifierGroup(c.CareLevelGroup)
	if err != nil {
		return
	}
	level := g.Default
	if v := s.Modifiers[g.ID]; v != "" {
		level = v
	}
	offered := func(id string) {
		item, err := c.Item(id)
		if err != nil || len(item.CareLevels) == 0 {
			return
		}
		if !containsString(item.CareLevels, level) {
			o, _ := g.Option(level)
			ch.reject("%s cannot be booked with %s %s.", item.Name, o.Name, strings.ToLower(g.Name))
		}
	}
	for _, id := range sortedKeys(s.Items) {
		if s.Items[id] > 0 {
			offered(id)
		}
	}
	for _, e := range s.Entries {
		if e.Quantity > 0 {
			offered(e.ItemID)
		}
	}
}

func checkRecurrence(ch *checker, c *Catalog, s Selection) {
	if !s.Recurring {
		return
	}
	if len(c.Recurrence) == 0 {
		ch.reject("Recurring orders are not offered for %s.", c.Name)
		return
	}
	if !containsString(c.Recurrence, s.RecurrenceFrequency) {
		ch.reject("Please choose a schedule: %s.", strings.Join(c.Recurrence, " or "))
	}
	if !isWeekday(s.RecurrenceDay) {
		ch.reject("Please choose a pickup day for your recurring order.")
	}
}

func isWeekday(day string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == day {
			return true
		}
	}
	return false
}
