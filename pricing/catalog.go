package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ServiceType identifies one of the service categories a customer can order
type ServiceType string

const (
	DryCleaning    ServiceType = "dry-cleaning"
	WashFold       ServiceType = "wash-fold"
	Ironing        ServiceType = "ironing"
	ShoeCleaning   ServiceType = "shoe-cleaning"
	CarpetCleaning ServiceType = "carpet-cleaning"
	Alterations    ServiceType = "alterations"
)

// Effect decides at which step of the quote a modifier group is applied
type Effect string

const (
	// EffectUnitDelta adds the option's delta to the unit price of every line
	EffectUnitDelta Effect = "unit_delta"
	// EffectLineMultiplier multiplies each line after unit deltas
	EffectLineMultiplier Effect = "line_multiplier"
	// EffectSubtotalMultiplier multiplies the running subtotal, compounding in catalog order
	EffectSubtotalMultiplier Effect = "subtotal_multiplier"
	// EffectIncrement adds subtotal × (multiplier − 1) as its own line
	EffectIncrement Effect = "increment"
	// EffectFlat adds the option's delta once, scaled by the group's Scaling
	EffectFlat Effect = "flat"
)

// Scope says whether a modifier is chosen once per order or per line
type Scope string

const (
	ScopeOrder Scope = "order"
	ScopeLine  Scope = "line"
)

// Scaling says how a flat price is multiplied by the order's quantity
type Scaling string

const (
	ScalePerOrder Scaling = "per_order"
	ScalePerUnit  Scaling = "per_unit"
	ScalePerBlock Scaling = "per_block"
)

// Fulfillment is the pickup/delivery option chosen for an order
type Fulfillment string

const (
	FulfillmentPickupOnly   Fulfillment = "pickup-only"
	FulfillmentDeliveryOnly Fulfillment = "delivery-only"
	FulfillmentRoundTrip    Fulfillment = "round-trip"
)

// CatalogItem is a priced garment, load or rug size
type CatalogItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	BasePrice      decimal.Decimal `json:"base_price"`
	BundleEligible bool            `json:"bundle_eligible,omitempty"`
	CareLevels     []string        `json:"care_levels,omitempty"`
}

// ModifierOption is one mutually exclusive choice inside a ModifierGroup.
// Multiplier is used by multiplier and increment effects, Delta by unit delta and flat effects.
type ModifierOption struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Delta      decimal.Decimal `json:"delta"`
}

// ModifierGroup is a category of options where exactly one option is active
type ModifierGroup struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Effect    Effect           `json:"effect"`
	Scope     Scope            `json:"scope"`
	Scaling   Scaling          `json:"scaling,omitempty"`
	BlockSize int              `json:"block_size,omitempty"`
	Default   string           `json:"default"`
	Options   []ModifierOption `json:"options"`
}

// Option looks up an option by id
func (g ModifierGroup) Option(id string) (ModifierOption, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return ModifierOption{}, false
}

// AddOn is an optional extra service with a flat price
type AddOn struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Scaling   Scaling         `json:"scaling"`
	BlockSize int             `json:"block_size,omitempty"`
}

// BundleDeal is a fixed price for an exact combination of item quantities.
// Savings is informational and must match the normal price minus Price.
type BundleDeal struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Items   map[string]int  `json:"items"`
	Price   decimal.Decimal `json:"price"`
	Savings decimal.Decimal `json:"savings"`
}

// Promotion is a flat discount unlocked by a promo code
type Promotion struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// PreferenceGroup holds non-pricing choices such as water temperature
type PreferenceGroup struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Default string   `json:"default"`
	Options []string `json:"options"`
}

// CustomSizePricing prices area-based orders from customer-entered dimensions (in feet)
type CustomSizePricing struct {
	RatePerSqFt         decimal.Decimal `json:"rate_per_sq_ft"`
	MinFeet             decimal.Decimal `json:"min_feet"`
	MaxFeet             decimal.Decimal `json:"max_feet"`
	SpecialHandlingFeet decimal.Decimal `json:"special_handling_feet"`
}

// Limits bounds what a selection may contain
type Limits struct {
	MinQuantity    int `json:"min_quantity,omitempty"`
	MaxQuantity    int `json:"max_quantity,omitempty"`
	MaxNotesLength int `json:"max_notes_length"`
	MaxPhotos      int `json:"max_photos"`
}

// Catalog is the static pricing reference data for one service category.
// Catalogs are built once at startup and must not be mutated afterwards.
type Catalog struct {
	Service        ServiceType                     `json:"service"`
	Name           string                          `json:"name"`
	Unit           string                          `json:"unit"`
	EmptyMessage   string                          `json:"empty_message"`
	Items          []CatalogItem                   `json:"items"`
	DefaultItems   map[string]int                  `json:"default_items,omitempty"`
	Modifiers      []ModifierGroup                 `json:"modifiers,omitempty"`
	CareLevelGroup string                          `json:"care_level_group,omitempty"`
	AddOns         []AddOn                         `json:"add_ons,omitempty"`
	Bundles        []BundleDeal                    `json:"bundles,omitempty"`
	Fees           map[Fulfillment]decimal.Decimal `json:"fees"`
	Promotions     []Promotion                     `json:"promotions,omitempty"`
	Preferences    []PreferenceGroup               `json:"preferences,omitempty"`
	Recurrence     []string                        `json:"recurrence,omitempty"`
	CustomSize     *CustomSizePricing              `json:"custom_size,omitempty"`
	Limits         Limits                          `json:"limits"`
}

// Item returns the catalog item with the given id
func (c *Catalog) Item(id string) (CatalogItem, error) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, nil
		}
	}
	return CatalogItem{}, newLookupError(c.Service, "item", id)
}

// ModifierGroup returns the modifier group with the given id
func (c *Catalog) ModifierGroup(id string) (ModifierGroup, error) {
	for _, g := range c.Modifiers {
		if g.ID == id {
			return g, nil
		}
	}
	return ModifierGroup{}, newLookupError(c.Service, "modifier group", id)
}

// ModifierOption returns the option of a group, failing on an unknown group or option
func (c *Catalog) ModifierOption(groupID, optionID string) (ModifierOption, error) {
	g, err := c.ModifierGroup(groupID)
	if err != nil {
		return ModifierOption{}, err
	}
	o, ok := g.Option(optionID)
	if !ok {
		return ModifierOption{}, newLookupError(c.Service, "modifier option", groupID+"/"+optionID)
	}
	return o, nil
}

// AddOn returns the add-on with the given id
func (c *Catalog) AddOn(id string) (AddOn, error) {
	for _, a := range c.AddOns {
		if a.ID == id {
			return a, nil
		}
	}
	return AddOn{}, newLookupError(c.Service, "add-on", id)
}

// Bundle returns the bundle deal with the given id
func (c *Catalog) Bundle(id string) (BundleDeal, error) {
	for _, b := range c.Bundles {
		if b.ID == id {
			return b, nil
		}
	}
	return BundleDeal{}, newLookupError(c.Service, "bundle", id)
}

// Fee returns the fee for a fulfillment option
func (c *Catalog) Fee(f Fulfillment) (decimal.Decimal, error) {
	fee, ok := c.Fees[f]
	if !ok {
		return zero, newLookupError(c.Service, "fee", string(f))
	}
	return fee, nil
}

// Promotion finds a promotion by code, ignoring case
func (c *Catalog) Promotion(code string) (Promotion, bool) {
	code = strings.TrimSpace(code)
	for _, p := range c.Promotions {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return Promotion{}, false
}

// Preference returns the preference group with the given id
func (c *Catalog) Preference(id string) (PreferenceGroup, bool) {
	for _, p := range c.Preferences {
		if p.ID == id {
			return p, true
		}
	}
	return PreferenceGroup{}, false
}

// StartingAt is the lowest base price in the catalog, used for service listings
func (c *Catalog) StartingAt() decimal.Decimal {
	var lowest decimal.Decimal
	for i, item := range c.Items {
		if i == 0 || item.BasePrice.LessThan(lowest) {
			lowest = item.BasePrice
		}
	}
	return lowest
}

// Validate checks the catalog is internally consistent. It is run once when a
// registry is built so a broken catalog never serves quotes.
func (c *Catalog) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("catalog service is required")
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("%s: catalog has no items", c.Service)
	}

	seen := map[string]bool{}
	for _, item := range c.Items {
		if item.ID == "" || seen[item.ID] {
			return fmt.Errorf("%s: duplicate or empty item id %q", c.Service, item.ID)
		}
		if item.BasePrice.IsNegative() {
			return fmt.Errorf("%s: item %q has a negative price", c.Service, item.ID)
		}
		seen[item.ID] = true
	}
	for id := range c.DefaultItems {
		if !seen[id] {
			return fmt.Errorf("%s: default item %q is not in the catalog", c.Service, id)
		}
	}

	groups := map[string]bool{}
	for _, g := range c.Modifiers {
		if groups[g.ID] {
			return fmt.Errorf("%s: duplicate modifier group %q", c.Service, g.ID)
		}
		groups[g.ID] = true
		if err := validateGroup(g); err != nil {
			return fmt.Errorf("%s: %w", c.Service, err)
		}
	}
	if c.CareLevelGroup != "" && !groups[c.CareLevelGroup] {
		return fmt.Errorf("%s: care level group %q is not a modifier group", c.Service, c.CareLevelGroup)
	}

	addOns := map[string]bool{}
	for _, a := range c.AddOns {
		if addOns[a.ID] {
			return fmt.Errorf("%s: duplicate add-on %q", c.Service, a.ID)
		}
		addOns[a.ID] = true
		if a.Price.IsNegative() {
			return fmt.Errorf("%s: add-on %q has a negative price", c.Service, a.ID)
		}
	}

	for _, p := range c.Preferences {
		if p.Default != "" && !containsString(p.Options, p.Default) {
			return fmt.Errorf("%s: preference %q default %q is not an option", c.Service, p.ID, p.Default)
		}
	}

	if c.CustomSize != nil && !c.CustomSize.RatePerSqFt.IsPositive() {
		return fmt.Errorf("%s: custom size rate must be positive", c.Service)
	}

	for _, b := range c.Bundles {
		if err := c.validateBundle(b, seen); err != nil {
			return err
		}
	}
	return nil
}

func validateGroup(g ModifierGroup) error {
	if len(g.Options) == 0 {
		return fmt.Errorf("modifier group %q has no options", g.ID)
	}
	if _, ok := g.Option(g.Default); !ok {
		return fmt.Errorf("modifier group %q default %q is not an option", g.ID, g.Default)
	}
	switch g.Effect {
	case EffectLineMultiplier, EffectSubtotalMultiplier, EffectIncrement:
		for _, o := range g.Options {
			if !o.Multiplier.IsPositive() {
				return fmt.Errorf("modifier %s/%s needs a positive multiplier", g.ID, o.ID)
			}
		}
	case EffectUnitDelta, EffectFlat:
	default:
		return fmt.Errorf("modifier group %q has unknown effect %q", g.ID, g.Effect)
	}
	if g.Effect != EffectUnitDelta && g.Effect != EffectLineMultiplier && g.Scope == ScopeLine {
		return fmt.Errorf("modifier group %q: only unit deltas and line multipliers can be chosen per line", g.ID)
	}
	return nil
}

// validateBundle requires advertised savings to equal the normally computed price
// of the bundle's items minus the bundle price.
func (c *Catalog) validateBundle(b BundleDeal, items map[string]bool) error {
	if len(b.Items) == 0 {
		return fmt.Errorf("%s: bundle %q has no items", c.Service, b.ID)
	}
	for id, qty := range b.Items {
		if !items[id] {
			return fmt.Errorf("%s: bundle %q references unknown item %q", c.Service, b.ID, id)
		}
		if qty <= 0 {
			return fmt.Errorf("%s: bundle %q needs a positive quantity for %q", c.Service, b.ID, id)
		}
	}

	q, err := ComputeQuote(c, Selection{Service: c.Service, Items: b.Items})
	if err != nil {
		return fmt.Errorf("%s: pricing bundle %q: %w", c.Service, b.ID, err)
	}
	want := RoundMoney(q.Subtotal.Sub(b.Price))
	if !want.Equal(RoundMoney(b.Savings)) {
		return fmt.Errorf("%s: bundle %q advertises savings %s but saves %s", c.Service, b.ID, b.Savings.StringFixed(2), want.StringFixed(2))
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
