package pricing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ten     = decimal.NewFromInt(10)
	hundred = decimal.NewFromInt(100)
)

// LineItem is one priced row of a breakdown
type LineItem struct {
	Code   string          `json:"code"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// MarshalJSON renders the amount with exactly two decimals
func (l LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code   string `json:"code"`
		Label  string `json:"label"`
		Amount string `json:"amount"`
	}{l.Code, l.Label, l.Amount.StringFixed(MoneyPlaces)})
}

// PriceBreakdown is the itemized quote for a selection.
// It is a pure projection of a Catalog and a Selection.
type PriceBreakdown struct {
	Service       ServiceType     `json:"service"`
	Lines         []LineItem      `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	LoyaltyPoints int64           `json:"loyalty_points"`
	AppliedBundle string          `json:"applied_bundle,omitempty"`
}

// MarshalJSON renders every amount with exactly two decimals
func (b PriceBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Service       ServiceType `json:"service"`
		Lines         []LineItem  `json:"lines"`
		Subtotal      string      `json:"subtotal"`
		Discount      string      `json:"discount"`
		Total         string      `json:"total"`
		ItemCount     int         `json:"item_count"`
		LoyaltyPoints int64       `json:"loyalty_points"`
		AppliedBundle string      `json:"applied_bundle,omitempty"`
	}{
		Service:       b.Service,
		Lines:         b.Lines,
		Subtotal:      b.Subtotal.StringFixed(MoneyPlaces),
		Discount:      b.Discount.StringFixed(MoneyPlaces),
		Total:         b.Total.StringFixed(MoneyPlaces),
		ItemCount:     b.ItemCount,
		LoyaltyPoints: b.LoyaltyPoints,
		AppliedBundle: b.AppliedBundle,
	})
}

// Line returns the first line with the given code
func (b PriceBreakdown) Line(code string) (LineItem, bool) {
	for _, l := range b.Lines {
		if l.Code == code {
			return l, true
		}
	}
	return LineItem{}, false
}

type pricedLine struct {
	code    string
	label   string
	qty     int
	base    decimal.Decimal
	options map[string]ModifierOption
}

type lineBuilder struct {
	lines []LineItem
}

// add records a line, skipping zero amounts
func (b *lineBuilder) add(code, label string, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	b.always(code, label, amount)
}

func (b *lineBuilder) always(code, label string, amount decimal.Decimal) {
	b.lines = append(b.lines, LineItem{Code: code, Label: label, Amount: amount})
}

func (b *lineBuilder) rounded() []LineItem {
	out := make([]LineItem, len(b.lines))
	for i, l := range b.lines {
		l.Amount = RoundMoney(l.Amount)
		out[i] = l
	}
	return out
}

// ComputeQuote prices a selection against a catalog.
//
// The steps run in a fixed order: line subtotals (unit deltas, then line
// multipliers), subtotal multipliers, method increments, flat modifiers and
// add-ons, the pickup/delivery fee, the bundle override, the promo discount.
// All math is exact decimal; amounts are rounded half-up to cents only on output.
//
// Malformed input yields a *ValidationError; ids missing from the catalog
// yield a *CatalogLookupError. Neither is ever replaced by a default price.
func ComputeQuote(c *Catalog, sel Selection) (PriceBreakdown, error) {
	if c == nil {
		return PriceBreakdown{}, fmt.Errorf("compute quote: nil catalog")
	}
	if sel.Service != "" && sel.Service != c.Service {
		return PriceBreakdown{}, newValidationError("service", "selection is for %s but the catalog is %s", sel.Service, c.Service)
	}

	orderOpts, err := resolveOrderOptions(c, sel.Modifiers)
	if err != nil {
		return PriceBreakdown{}, err
	}
	lines, err := buildLines(c, sel, orderOpts)
	if err != nil {
		return PriceBreakdown{}, err
	}
	addOns, err := resolveAddOns(c, sel.AddOns)
	if err != nil {
		return PriceBreakdown{}, err
	}

	b := &lineBuilder{}
	units := 0
	running := zero

	// 1. lines: base, per-unit deltas, per-line multipliers
	deltas := map[string]decimal.Decimal{}
	lineIncs := map[string]decimal.Decimal{}
	for _, l := range lines {
		units += l.qty
		if units > MaxOrderQuantity {
			return PriceBreakdown{}, newValidationError("items", "an order may hold at most %d %s", MaxOrderQuantity, c.Unit)
		}
		b.always(l.code, l.label, l.base)

		amount := l.base
		qty := decimal.NewFromInt(int64(l.qty))
		for _, g := range c.Modifiers {
			if g.Effect != EffectUnitDelta {
				continue
			}
			d := l.options[g.ID].Delta.Mul(qty)
			deltas[g.ID] = deltas[g.ID].Add(d)
			amount = amount.Add(d)
		}
		for _, g := range c.Modifiers {
			if g.Effect != EffectLineMultiplier {
				continue
			}
			inc := amount.Mul(l.options[g.ID].Multiplier.Sub(one))
			lineIncs[g.ID] = lineIncs[g.ID].Add(inc)
			amount = amount.Add(inc)
		}
		running = running.Add(amount)
	}
	for _, g := range c.Modifiers {
		switch g.Effect {
		case EffectUnitDelta:
			b.add("modifier:"+g.ID, groupLabel(g, orderOpts), deltas[g.ID])
		case EffectLineMultiplier:
			b.add("modifier:"+g.ID, g.Name+" adjustment", lineIncs[g.ID])
		}
	}

	// 2. subtotal multipliers compound in catalog order
	for _, g := range c.Modifiers {
		if g.Effect != EffectSubtotalMultiplier {
			continue
		}
		o := orderOpts[g.ID]
		inc := running.Mul(o.Multiplier.Sub(one))
		running = running.Add(inc)
		b.add("modifier:"+g.ID, fmt.Sprintf("%s: %s (×%s)", g.Name, o.Name, o.Multiplier.String()), inc)
	}

	// 3. method increments are each taken from the same adjusted base
	adjusted := running
	for _, g := range c.Modifiers {
		if g.Effect != EffectIncrement {
			continue
		}
		o := orderOpts[g.ID]
		rate := o.Multiplier.Sub(one)
		inc := adjusted.Mul(rate)
		running = running.Add(inc)
		b.add("modifier:"+g.ID, fmt.Sprintf("%s: %s (+%s%%)", g.Name, o.Name, rate.Mul(hundred).String()), inc)
	}

	// 4. flat modifiers and add-ons
	for _, g := range c.Modifiers {
		if g.Effect != EffectFlat {
			continue
		}
		o := orderOpts[g.ID]
		amount := o.Delta.Mul(scale(g.Scaling, g.BlockSize, units))
		running = running.Add(amount)
		b.add("modifier:"+g.ID, groupLabel(g, orderOpts), amount)
	}
	for _, a := range addOns {
		amount := a.Price.Mul(scale(a.Scaling, a.BlockSize, units))
		running = running.Add(amount)
		b.add("add-on:"+a.ID, a.Name, amount)
	}
	itemsTotal := running

	// 5. one pickup/delivery fee
	fee := zero
	var feeType Fulfillment
	if sel.PickupNeeded {
		feeType = sel.PickupType
		if feeType == "" {
			feeType = FulfillmentRoundTrip
		}
		if fee, err = c.Fee(feeType); err != nil {
			return PriceBreakdown{}, err
		}
	}

	// 6. an applied bundle replaces the item pricing
	subtotal := itemsTotal
	if sel.AppliedBundle != "" {
		bundle, err := c.Bundle(sel.AppliedBundle)
		if err != nil {
			return PriceBreakdown{}, err
		}
		if !bundleMatches(bundle, sel) {
			return PriceBreakdown{}, newValidationError("applied_bundle", "selection no longer matches the %s bundle; apply it again or clear it", bundle.Name)
		}
		b.always("bundle:"+bundle.ID, "Bundle: "+bundle.Name, bundle.Price.Sub(itemsTotal))
		subtotal = bundle.Price
	}
	if sel.PickupNeeded {
		b.add("fee:"+string(feeType), feeLabel(feeType), fee)
	}
	subtotal = subtotal.Add(fee)

	// 7. promo discount, never below zero
	discount := zero
	if code := strings.TrimSpace(sel.PromoCode); code != "" {
		p, ok := c.Promotion(code)
		if !ok {
			return PriceBreakdown{}, newValidationError("promo_code", "promo code %q not recognized", code)
		}
		discount = decimal.Min(p.Amount, subtotal)
		if discount.IsNegative() {
			discount = zero
		}
		b.add("promo:"+strings.ToUpper(p.Code), "Promo "+strings.ToUpper(p.Code), discount.Neg())
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = zero
	}

	// 8. round on output only
	out := PriceBreakdown{
		Service:       c.Service,
		Lines:         b.rounded(),
		Subtotal:      RoundMoney(subtotal),
		Discount:      RoundMoney(discount),
		Total:         RoundMoney(total),
		ItemCount:     units,
		AppliedBundle: sel.AppliedBundle,
	}
	out.LoyaltyPoints = out.Total.Mul(ten).Floor().IntPart()
	return out, nil
}

func scale(s Scaling, blockSize, units int) decimal.Decimal {
	switch s {
	case ScalePerUnit:
		return decimal.NewFromInt(int64(units))
	case ScalePerBlock:
		return decimal.NewFromInt(int64(blocksOf(units, blockSize)))
	default:
		return one
	}
}

func groupLabel(g ModifierGroup, opts map[string]ModifierOption) string {
	if g.Scope == ScopeLine {
		return g.Name
	}
	return g.Name + ": " + opts[g.ID].Name
}

func feeLabel(f Fulfillment) string {
	switch f {
	case FulfillmentPickupOnly:
		return "Pickup fee"
	case FulfillmentDeliveryOnly:
		return "Delivery fee"
	default:
		return "Round-trip pickup & delivery"
	}
}

// resolveOrderOptions picks the active option of every group, using defaults for unset groups
func resolveOrderOptions(c *Catalog, chosen map[string]string) (map[string]ModifierOption, error) {
	for _, id := range sortedKeys(chosen) {
		if _, err := c.ModifierGroup(id); err != nil {
			return nil, err
		}
	}
	opts := make(map[string]ModifierOption, len(c.Modifiers))
	for _, g := range c.Modifiers {
		id := g.Default
		if v := chosen[g.ID]; v != "" {
			id = v
		}
		o, ok := g.Option(id)
		if !ok {
			return nil, newLookupError(c.Service, "modifier option", g.ID+"/"+id)
		}
		opts[g.ID] = o
	}
	return opts, nil
}

func resolveLineOptions(c *Catalog, field string, orderOpts map[string]ModifierOption, chosen map[string]string) (map[string]ModifierOption, error) {
	if len(chosen) == 0 {
		return orderOpts, nil
	}
	opts := make(map[string]ModifierOption, len(orderOpts))
	for k, v := range orderOpts {
		opts[k] = v
	}
	for _, id := range sortedKeys(chosen) {
		g, err := c.ModifierGroup(id)
		if err != nil {
			return nil, err
		}
		if g.Scope != ScopeLine {
			return nil, newValidationError(field+".modifiers."+id, "%s is chosen once per order, not per line", g.Name)
		}
		o, ok := g.Option(chosen[id])
		if !ok {
			return nil, newLookupError(c.Service, "modifier option", id+"/"+chosen[id])
		}
		opts[id] = o
	}
	return opts, nil
}

// buildLines turns items, entries and custom dimensions into priced lines in catalog order
func buildLines(c *Catalog, sel Selection, orderOpts map[string]ModifierOption) ([]pricedLine, error) {
	for _, id := range sortedKeys(sel.Items) {
		if qty := sel.Items[id]; qty < 0 {
			return nil, newValidationError("items."+id, "quantity cannot be negative (got %d)", qty)
		} else if qty > MaxLineQuantity {
			return nil, newValidationError("items."+id, "quantity cannot exceed %d (got %d)", MaxLineQuantity, qty)
		}
		if _, err := c.Item(id); err != nil {
			return nil, err
		}
	}

	var lines []pricedLine
	for _, item := range c.Items {
		qty := sel.Items[item.ID]
		if qty == 0 {
			continue
		}
		lines = append(lines, pricedLine{
			code:    "item:" + item.ID,
			label:   fmt.Sprintf("%s × %d", item.Name, qty),
			qty:     qty,
			base:    item.BasePrice.Mul(decimal.NewFromInt(int64(qty))),
			options: orderOpts,
		})
	}

	for i, e := range sel.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.Quantity < 0 {
			return nil, newValidationError(field+".quantity", "quantity cannot be negative (got %d)", e.Quantity)
		}
		if e.Quantity > MaxLineQuantity {
			return nil, newValidationError(field+".quantity", "quantity cannot exceed %d (got %d)", MaxLineQuantity, e.Quantity)
		}
		item, err := c.Item(e.ItemID)
		if err != nil {
			return nil, err
		}
		opts, err := resolveLineOptions(c, field, orderOpts, e.Modifiers)
		if err != nil {
			return nil, err
		}
		if e.Quantity == 0 {
			continue
		}
		lines = append(lines, pricedLine{
			code:    fmt.Sprintf("entry:%d:%s", i, item.ID),
			label:   fmt.Sprintf("%s × %d", item.Name, e.Quantity),
			qty:     e.Quantity,
			base:    item.BasePrice.Mul(decimal.NewFromInt(int64(e.Quantity))),
			options: opts,
		})
	}

	if sel.Dimensions != nil {
		// a custom size stands in for the size categories
		if len(lines) > 0 {
			return nil, newValidationError("dimensions", "choose either a listed size or custom dimensions, not both")
		}
		area, err := customArea(c, *sel.Dimensions)
		if err != nil {
			return nil, err
		}
		rate := c.CustomSize.RatePerSqFt
		lines = append(lines, pricedLine{
			code:    "custom-size",
			label:   fmt.Sprintf("Custom size (%s sq ft × $%s)", area.String(), rate.StringFixed(MoneyPlaces)),
			qty:     1,
			base:    area.Mul(rate),
			options: orderOpts,
		})
	}
	return lines, nil
}

func customArea(c *Catalog, d Dimensions) (decimal.Decimal, error) {
	if c.CustomSize == nil {
		return zero, newValidationError("dimensions", "custom dimensions are not offered for %s", c.Name)
	}
	if d.Unit != "" && d.Unit != UnitFeet && d.Unit != UnitInches {
		return zero, newValidationError("dimensions.unit", "unit must be %q or %q", UnitFeet, UnitInches)
	}
	if !d.Width.IsPositive() || !d.Length.IsPositive() {
		return zero, newValidationError("dimensions", "please enter valid dimensions: width and length must be greater than zero")
	}
	if !boundedDimension(d.Width) || !boundedDimension(d.Length) {
		return zero, newValidationError("dimensions", "dimensions must be between %s and %s feet with at most %d decimal places",
			c.CustomSize.MinFeet.String(), c.CustomSize.MaxFeet.String(), maxDimensionPlaces)
	}
	w, l := d.Feet()
	if outOfRange(w, c.CustomSize) || outOfRange(l, c.CustomSize) {
		return zero, newValidationError("dimensions", "dimensions must be between %s and %s feet",
			c.CustomSize.MinFeet.String(), c.CustomSize.MaxFeet.String())
	}
	area := d.SquareFeet()
	if !area.IsPositive() {
		return zero, newValidationError("dimensions", "please enter valid dimensions: the area is too small to price")
	}
	return area, nil
}

func outOfRange(feet decimal.Decimal, cs *CustomSizePricing) bool {
	if feet.LessThan(cs.MinFeet) {
		return true
	}
	return cs.MaxFeet.IsPositive() && feet.GreaterThan(cs.MaxFeet)
}

// resolveAddOns returns the selected add-ons in catalog order, each once
func resolveAddOns(c *Catalog, ids []string) ([]AddOn, error) {
	selected := map[string]bool{}
	for _, id := range ids {
		if _, err := c.AddOn(id); err != nil {
			return nil, err
		}
		selected[id] = true
	}
	var out []AddOn
	for _, a := range c.AddOns {
		if selected[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}
