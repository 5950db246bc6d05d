package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T, service ServiceType) *Catalog {
	t.Helper()
	reg, err := NewRegistry(DefaultCatalogs()...)
	require.NoError(t, err)
	c, ok := reg.Catalog(service)
	require.True(t, ok, "catalog for %s should be registered", service)
	return c
}

func quote(t *testing.T, c *Catalog, sel Selection) PriceBreakdown {
	t.Helper()
	q, err := ComputeQuote(c, sel)
	require.NoError(t, err)
	return q
}

func TestComputeQuote_WashFoldDefault(t *testing.T) {
	c := testCatalog(t, WashFold)

	q := quote(t, c, DefaultSelection(c))

	assert.Equal(t, "19.90", q.Total.StringFixed(2), "10 lb at 1.99/lb")
	assert.Equal(t, "19.90", q.Subtotal.StringFixed(2))
	assert.True(t, q.Discount.IsZero())
	assert.Equal(t, int64(199), q.LoyaltyPoints)
	assert.Equal(t, 10, q.ItemCount)
	require.Len(t, q.Lines, 1, "zero-priced options should not produce lines")
	assert.Equal(t, "item:laundry", q.Lines[0].Code)
}

func TestComputeQuote_WashFoldBlockScaledExtras(t *testing.T) {
	c := testCatalog(t, WashFold)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("laundry", 21))
	sel.SetModifier("detergent", "eco-friendly")
	sel.SetModifier("fold", "hung")
	sel.ToggleAddOn("stain-treatment")

	q := quote(t, c, sel)

	// 21 × 1.99 = 41.79, detergent 1.50, hang 3 × 0.50, stain 3 × 1.00
	assert.Equal(t, "47.79", q.Total.StringFixed(2))

	fold, ok := q.Line("modifier:fold")
	require.True(t, ok)
	assert.Equal(t, "1.50", fold.Amount.StringFixed(2))
	assert.Equal(t, "Fold Style: Hang Items", fold.Label)

	stain, ok := q.Line("add-on:stain-treatment")
	require.True(t, ok)
	assert.Equal(t, "3.00", stain.Amount.StringFixed(2))
}

func TestComputeQuote_IroningShirtPack(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("dress-shirt", 5))

	before := quote(t, c, sel)
	assert.Equal(t, "14.95", before.Subtotal.StringFixed(2))
	assert.Equal(t, []BundleDeal{c.Bundles[0]}, ApplicableBundles(c, sel))

	require.NoError(t, sel.ApplyBundle(c, "shirt-pack"))
	after := quote(t, c, sel)

	assert.Equal(t, "12.99", after.Total.StringFixed(2))
	assert.Equal(t, "shirt-pack", after.AppliedBundle)
	line, ok := after.Line("bundle:shirt-pack")
	require.True(t, ok)
	assert.Equal(t, "-1.96", line.Amount.StringFixed(2))
}

func TestComputeQuote_BundleReplacesQuantities(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("dress-shirt", 7))
	require.NoError(t, sel.SetQuantity("dress", 1))

	require.NoError(t, sel.ApplyBundle(c, "shirt-pack"))

	assert.Equal(t, map[string]int{"dress-shirt": 5}, sel.Items)
	assert.Equal(t, "12.99", quote(t, c, sel).Total.StringFixed(2))
}

func TestComputeQuote_BundleMismatchIsValidationError(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(c)
	require.NoError(t, sel.ApplyBundle(c, "suit-pack"))
	sel.Items["pants"] = 2 // bypasses SetQuantity so the bundle is kept

	_, err := ComputeQuote(c, sel)

	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected a ValidationError, got %v", err)
	assert.Equal(t, "applied_bundle", ve.Field)
}

func TestComputeQuote_SetQuantityClearsBundle(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(c)
	require.NoError(t, sel.ApplyBundle(c, "uniform-pack"))

	require.NoError(t, sel.SetQuantity("uniform", 4))

	assert.Empty(t, sel.AppliedBundle)
	assert.Equal(t, "19.96", quote(t, c, sel).Total.StringFixed(2))
}

func TestComputeQuote_IroningPressAndStarch(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("pants", 2))
	require.NoError(t, sel.SetQuantity("blouse", 1))
	sel.SetModifier("press", "crisp")
	sel.SetModifier("starch", "heavy")

	q := quote(t, c, sel)

	// (3.99 × 2 + 3.49) + 3 × 1.00 crisp + 3 × 1.00 heavy starch
	assert.Equal(t, "17.47", q.Total.StringFixed(2))
	press, ok := q.Line("modifier:press")
	require.True(t, ok)
	assert.Equal(t, "Press: Extra Crisp", press.Label)
	assert.Equal(t, "3.00", press.Amount.StringFixed(2))
}

func TestComputeQuote_CarpetHeavySoilRoundsHalfUp(t *testing.T) {
	c := testCatalog(t, CarpetCleaning)
	sel := DefaultSelection(c)
	sel.SetModifier("soil-level", "heavy")

	q := quote(t, c, sel)

	// 49.99 × 1.0 × 1.5 = 74.985
	assert.Equal(t, "74.99", q.Total.StringFixed(2))
	assert.Equal(t, int64(749), q.LoyaltyPoints)
}

func TestComputeQuote_CarpetMethodIncrementAndFees(t *testing.T) {
	c := testCatalog(t, CarpetCleaning)
	sel := DefaultSelection(c)
	sel.SetModifier("rug-type", "oriental")
	sel.SetModifier("soil-level", "light")
	sel.SetModifier("method", "dry")
	sel.ToggleAddOn("deodorize")
	sel.PickupNeeded = true
	sel.Address = "12 Main St"

	q := quote(t, c, sel)

	// 49.99 × 1.5 = 74.985, dry +20% = 14.997, deodorize 9.99, round trip 14.99
	assert.Equal(t, "114.96", q.Total.StringFixed(2))

	method, ok := q.Line("modifier:method")
	require.True(t, ok)
	assert.Equal(t, "15.00", method.Amount.StringFixed(2))
	assert.Equal(t, "Cleaning Method: Dry Cleaning (+20%)", method.Label)

	fee, ok := q.Line("fee:round-trip")
	require.True(t, ok)
	assert.Equal(t, "14.99", fee.Amount.StringFixed(2))
}

func TestComputeQuote_CarpetCustomSize(t *testing.T) {
	c := testCatalog(t, CarpetCleaning)

	tests := []struct {
		name string
		dims Dimensions
	}{
		{"feet", Dimensions{Width: decimal.NewFromInt(5), Length: decimal.NewFromInt(8), Unit: UnitFeet}},
		{"inches", Dimensions{Width: decimal.NewFromInt(60), Length: decimal.NewFromInt(96), Unit: UnitInches}},
		{"unit defaults to feet", Dimensions{Width: decimal.NewFromInt(5), Length: decimal.NewFromInt(8)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := DefaultSelection(c)
			sel.Items = nil
			dims := tt.dims
			sel.Dimensions = &dims

			q := quote(t, c, sel)

			// 40 sq ft × 2.49 = 99.60, medium soil × 1.2
			assert.Equal(t, "119.52", q.Total.StringFixed(2))
			line, ok := q.Line("custom-size")
			require.True(t, ok)
			assert.Equal(t, "99.60", line.Amount.StringFixed(2))
		})
	}
}

func TestComputeQuote_NonPositiveDimensions(t *testing.T) {
	c := testCatalog(t, CarpetCleaning)

	tests := []struct {
		name string
		dims Dimensions
	}{
		{"zero width", Dimensions{Width: decimal.Zero, Length: decimal.NewFromInt(5)}},
		{"negative length", Dimensions{Width: decimal.NewFromInt(5), Length: decimal.NewFromInt(-2)}},
		{"below minimum", Dimensions{Width: decimal.RequireFromString("0.5"), Length: decimal.NewFromInt(5)}},
		{"above maximum", Dimensions{Width: decimal.NewFromInt(51), Length: decimal.NewFromInt(5)}},
		{"above maximum in inches", Dimensions{Width: decimal.NewFromInt(601), Length: decimal.NewFromInt(60), Unit: UnitInches}},
		{"huge exponent", Dimensions{Width: decimal.RequireFromString("1e2000000"), Length: decimal.NewFromInt(5)}},
		{"tiny exponent", Dimensions{Width: decimal.RequireFromString("1e-2000000"), Length: decimal.NewFromInt(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := DefaultSelection(c)
			sel.Items = nil
			dims := tt.dims
			sel.Dimensions = &dims

			_, err := ComputeQuote(c, sel)

			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Equal(t, "dimensions", ve.Field)
		})
	}
}

func TestComputeQuote_CustomSizeReplacesListedSize(t *testing.T) {
	c := testCatalog(t, CarpetCleaning)
	sel := DefaultSelection(c)
	require.Equal(t, 1, sel.Items["medium"])
	sel.Dimensions = &Dimensions{Width: decimal.NewFromInt(5), Length: decimal.NewFromInt(8)}

	_, err := ComputeQuote(c, sel)

	ve, ok := AsValidationError(err)
	require.True(t, ok, "a listed size plus custom dimensions must not be charged twice, got %v", err)
	assert.Equal(t, "dimensions", ve.Field)

	require.NoError(t, sel.SetQuantity("medium", 0))
	q := quote(t, c, sel)
	_, hasMedium := q.Line("item:medium")
	assert.False(t, hasMedium)
}

func TestComputeQuote_ShoesPremiumVeryDirty(t *testing.T) {
	c := testCatalog(t, ShoeCleaning)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("sneakers", 2))
	sel.SetModifier("cleaning-level", "premium")
	sel.SetModifier("condition", "very-dirty")

	q := quote(t, c, sel)

	// (15.99 + 10) × 2 × 1.2 = 62.376
	assert.Equal(t, "62.38", q.Total.StringFixed(2))
}

func TestComputeQuote_ShoeEntriesCarryTheirOwnOptions(t *testing.T) {
	c := testCatalog(t, ShoeCleaning)
	sel := DefaultSelection(c)
	require.NoError(t, sel.AddEntry(Entry{ItemID: "leather-dress", Quantity: 1, Modifiers: map[string]string{"material": "exotic-leather"}}))
	require.NoError(t, sel.AddEntry(Entry{ItemID: "boots-ankle", Quantity: 1, Modifiers: map[string]string{"condition": "very-dirty"}}))
	sel.ToggleAddOn("waterproofing")

	q := quote(t, c, sel)

	// 18.99 + 10, 22.99 × 1.2 = 27.588, waterproofing 5.99
	assert.Equal(t, "62.57", q.Total.StringFixed(2))
	assert.Equal(t, 2, q.ItemCount)
	_, ok := q.Line("entry:0:leather-dress")
	assert.True(t, ok)
}

func TestComputeQuote_OrderScopeGroupOnEntryIsRejected(t *testing.T) {
	c := testCatalog(t, ShoeCleaning)
	sel := DefaultSelection(c)
	require.NoError(t, sel.AddEntry(Entry{ItemID: "sneakers", Quantity: 1, Modifiers: map[string]string{"cleaning-level": "premium"}}))

	_, err := ComputeQuote(c, sel)

	_, ok := AsValidationError(err)
	assert.True(t, ok, "got %v", err)
}

func TestComputeQuote_DryCleaningExpress(t *testing.T) {
	c := testCatalog(t, DryCleaning)
	sel := DefaultSelection(c)
	require.NoError(t, sel.AddEntry(Entry{ItemID: "suit-2pc", Quantity: 1, Modifiers: map[string]string{"fabric": "silk"}}))
	require.NoError(t, sel.SetQuantity("dress-shirt", 2))
	sel.SetModifier("stain", "treat")
	sel.SetModifier("turnaround", "express")

	q := quote(t, c, sel)

	// shirts 9.98 + 4.00 stain, suit 15.99 + 5 silk + 2 stain = 36.97, express × 1.5
	assert.Equal(t, "55.46", q.Total.StringFixed(2))
	express, ok := q.Line("modifier:turnaround")
	require.True(t, ok)
	assert.Equal(t, "18.49", express.Amount.StringFixed(2))
}

func TestComputeQuote_AlterationsRush(t *testing.T) {
	c := testCatalog(t, Alterations)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("hem-pants", 2))
	sel.SetModifier("urgency", "rush")

	q := quote(t, c, sel)

	assert.Equal(t, "36.00", q.Total.StringFixed(2))
}

func TestComputeQuote_PromoCode(t *testing.T) {
	c := testCatalog(t, WashFold)

	tests := []struct {
		name     string
		pounds   int
		code     string
		discount string
		total    string
	}{
		{"full discount", 10, "SAVE10", "10.00", "9.90"},
		{"case insensitive", 10, " save10 ", "10.00", "9.90"},
		{"never below zero", 5, "SAVE10", "9.95", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := DefaultSelection(c)
			require.NoError(t, sel.SetQuantity("laundry", tt.pounds))
			sel.PromoCode = tt.code

			q := quote(t, c, sel)

			assert.Equal(t, tt.discount, q.Discount.StringFixed(2))
			assert.Equal(t, tt.total, q.Total.StringFixed(2))
			assert.False(t, q.Total.IsNegative())
			promo, ok := q.Line("promo:SAVE10")
			require.True(t, ok)
			assert.Equal(t, "-"+tt.discount, promo.Amount.StringFixed(2))
		})
	}
}

func TestComputeQuote_UnknownPromo(t *testing.T) {
	c := testCatalog(t, WashFold)
	sel := DefaultSelection(c)
	sel.PromoCode = "FREESTUFF"

	_, err := ComputeQuote(c, sel)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Message, "not recognized")
}

func TestComputeQuote_LookupErrors(t *testing.T) {
	c := testCatalog(t, Ironing)

	tests := []struct {
		name   string
		mutate func(*Selection)
		kind   string
	}{
		{"unknown item", func(s *Selection) { s.Items["tuxedo"] = 1 }, "item"},
		{"unknown modifier group", func(s *Selection) { s.Modifiers["glitter"] = "yes" }, "modifier group"},
		{"unknown modifier option", func(s *Selection) { s.Modifiers["starch"] = "concrete" }, "modifier option"},
		{"unknown add-on", func(s *Selection) { s.AddOns = []string{"gift-wrap"} }, "add-on"},
		{"unknown bundle", func(s *Selection) { s.AppliedBundle = "mystery-pack" }, "bundle"},
		{"unknown pickup type", func(s *Selection) {
			s.PickupNeeded = true
			s.PickupType = "drone"
		}, "fee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := DefaultSelection(c)
			require.NoError(t, sel.SetQuantity("dress-shirt", 1))
			tt.mutate(&sel)

			_, err := ComputeQuote(c, sel)

			le, ok := AsCatalogLookupError(err)
			require.True(t, ok, "expected CatalogLookupError, got %v", err)
			assert.Equal(t, tt.kind, le.Kind)
			assert.Equal(t, CodeCatalogLookup, le.Code)
		})
	}
}

func TestComputeQuote_NegativeQuantity(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(c)
	sel.Items["pants"] = -1

	_, err := ComputeQuote(c, sel)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "items.pants", ve.Field)
}

func TestComputeQuote_ServiceMismatch(t *testing.T) {
	c := testCatalog(t, Ironing)
	sel := DefaultSelection(testCatalog(t, WashFold))

	_, err := ComputeQuote(c, sel)

	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

func TestComputeQuote_Deterministic(t *testing.T) {
	c := testCatalog(t, ShoeCleaning)
	sel := DefaultSelection(c)
	require.NoError(t, sel.SetQuantity("sneakers", 1))
	require.NoError(t, sel.SetQuantity("canvas", 2))
	require.NoError(t, sel.SetQuantity("boots-knee", 1))
	sel.ToggleAddOn("scuff-removal")
	sel.ToggleAddOn("color-restore")
	sel.PromoCode = "SAVE10"

	first, err := json.Marshal(quote(t, c, sel))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(quote(t, c, sel.Clone()))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestComputeQuote_MonotonicInQuantity(t *testing.T) {
	tests := []struct {
		service ServiceType
		itemID  string
		options map[string]string
	}{
		{WashFold, "laundry", map[string]string{"fold": "hung", "detergent": "hypoallergenic"}},
		{Ironing, "dress-shirt", map[string]string{"press": "crisp"}},
		{ShoeCleaning, "boots-knee", map[string]string{"condition": "very-dirty"}},
		{CarpetCleaning, "large", map[string]string{"rug-type": "bath-mat", "method": "eco"}},
		{DryCleaning, "coat", map[string]string{"turnaround": "express"}},
		{Alterations, "seam-repair", map[string]string{"urgency": "express"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.service), func(t *testing.T) {
			c := testCatalog(t, tt.service)
			sel := DefaultSelection(c)
			for g, o := range tt.options {
				sel.SetModifier(g, o)
			}
			sel.PromoCode = "SAVE10"

			previous := decimal.Zero
			for qty := 0; qty <= 30; qty++ {
				require.NoError(t, sel.SetQuantity(tt.itemID, qty))
				q := quote(t, c, sel)
				assert.False(t, q.Total.LessThan(previous), "total dropped at qty %d", qty)
				previous = q.Total
			}
		})
	}
}

func TestComputeQuote_QuantityCaps(t *testing.T) {
	tests := []struct {
		name    string
		service ServiceType
		sel     func(c *Catalog) Selection
		field   string
	}{
		{
			name:    "single line far past the cap",
			service: WashFold,
			sel: func(c *Catalog) Selection {
				sel := DefaultSelection(c)
				sel.SetModifier("fold", "hung")
				sel.Items["laundry"] = math.MaxInt - 8
				return sel
			},
			field: "items.laundry",
		},
		{
			name:    "lines that would wrap the unit count",
			service: Ironing,
			sel: func(c *Catalog) Selection {
				return Selection{Items: map[string]int{"pants": math.MaxInt, "skirt": 1}}
			},
			field: "items.pants",
		},
		{
			name:    "entry past the cap",
			service: ShoeCleaning,
			sel: func(c *Catalog) Selection {
				return Selection{Entries: []Entry{{ItemID: "sneakers", Quantity: MaxLineQuantity + 1}}}
			},
			field: "entries[0].quantity",
		},
		{
			name:    "many entries past the order cap",
			service: ShoeCleaning,
			sel: func(c *Catalog) Selection {
				sel := Selection{}
				for i := 0; i <= MaxOrderQuantity/MaxLineQuantity; i++ {
					sel.Entries = append(sel.Entries, Entry{ItemID: "sneakers", Quantity: MaxLineQuantity})
				}
				return sel
			},
			field: "items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCatalog(t, tt.service)

			_, err := ComputeQuote(c, tt.sel(c))

			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestComputeQuote_MonotonicUpToQuantityCap(t *testing.T) {
	c := testCatalog(t, WashFold)
	sel := DefaultSelection(c)
	sel.SetModifier("fold", "hung")

	previous := decimal.Zero
	for _, qty := range []int{MaxLineQuantity - 10, MaxLineQuantity - 9, MaxLineQuantity - 1, MaxLineQuantity} {
		require.NoError(t, sel.SetQuantity("laundry", qty))
		q := quote(t, c, sel)
		assert.True(t, q.Total.GreaterThan(previous), "total must grow at qty %d", qty)
		line, ok := q.Line("modifier:fold")
		require.True(t, ok)
		assert.True(t, line.Amount.IsPositive())
		previous = q.Total
	}
}

func TestComputeQuote_NilCatalog(t *testing.T) {
	_, err := ComputeQuote(nil, Selection{})
	assert.Error(t, err)
}

func TestPriceBreakdown_MarshalJSON(t *testing.T) {
	c := testCatalog(t, WashFold)

	raw, err := json.Marshal(quote(t, c, DefaultSelection(c)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "19.90", decoded["total"])
	assert.Equal(t, "0.00", decoded["discount"])
	lines := decoded["lines"].([]any)
	assert.Equal(t, "19.90", lines[0].(map[string]any)["amount"])

	var back PriceBreakdown
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Total.Equal(decimal.RequireFromString("19.9")))
}
