package pricing

import "github.com/shopspring/decimal"

// Shared limits
const (
	maxNotesLength = 500
	maxPhotos      = 3
)

var recurringFrequencies = []string{"Weekly", "Bi-Weekly"}

func sharedPromotions() []Promotion {
	return []Promotion{
		{Code: "SAVE10", Name: "$10 off your order", Amount: mustDecimal("10")},
	}
}

// noFees is used by services that are dropped off at the counter; pickup is free
func noFees() map[Fulfillment]decimal.Decimal {
	return map[Fulfillment]decimal.Decimal{
		FulfillmentPickupOnly:   zero,
		FulfillmentDeliveryOnly: zero,
		FulfillmentRoundTrip:    zero,
	}
}

func item(id, name, price string) CatalogItem {
	return CatalogItem{ID: id, Name: name, BasePrice: mustDecimal(price)}
}

func delta(id, name, price string) ModifierOption {
	return ModifierOption{ID: id, Name: name, Multiplier: one, Delta: mustDecimal(price)}
}

func factor(id, name, multiplier string) ModifierOption {
	return ModifierOption{ID: id, Name: name, Multiplier: mustDecimal(multiplier), Delta: zero}
}

func addOn(id, name, price string) AddOn {
	return AddOn{ID: id, Name: name, Price: mustDecimal(price), Scaling: ScalePerOrder}
}

// DefaultCatalogs returns the built-in price list for every service. Each call
// builds fresh values so callers may not share or mutate them by accident.
func DefaultCatalogs() []*Catalog {
	return []*Catalog{
		dryCleaningCatalog(),
		washFoldCatalog(),
		ironingCatalog(),
		shoeCleaningCatalog(),
		carpetCleaningCatalog(),
		alterationsCatalog(),
	}
}

func dryCleaningCatalog() *Catalog {
	return &Catalog{
		Service:      DryCleaning,
		Name:         "Dry Cleaning",
		Unit:         "items",
		EmptyMessage: "Please select at least one item for dry cleaning.",
		Items: []CatalogItem{
			item("suit-2pc", "Suit (2-piece)", "15.99"),
			item("dress", "Dress", "12.99"),
			item("dress-shirt", "Dress Shirt", "4.99"),
			item("blouse", "Blouse", "5.99"),
			item("tie", "Tie", "3.99"),
			item("sweater", "Sweater", "7.99"),
			item("coat", "Coat/Jacket", "14.99"),
		},
		Modifiers: []ModifierGroup{
			{
				ID: "fabric", Name: "Fabric", Effect: EffectUnitDelta, Scope: ScopeLine, Default: "cotton",
				Options: []ModifierOption{
					delta("cotton", "Cotton", "0"),
					delta("silk", "Silk (premium)", "5"),
					delta("wool", "Wool (premium)", "3"),
					delta("linen", "Linen", "2"),
					delta("polyester", "Polyester", "0"),
					delta("rayon", "Rayon", "1"),
				},
			},
			{
				ID: "stain", Name: "Stain Treatment", Effect: EffectUnitDelta, Scope: ScopeOrder, Default: "none",
				Options: []ModifierOption{
					delta("none", "None", "0"),
					delta("treat", "Pretreat Stains", "2"),
				},
			},
			{
				ID: "turnaround", Name: "Turnaround", Effect: EffectSubtotalMultiplier, Scope: ScopeOrder, Default: "standard",
				Options: []ModifierOption{
					factor("standard", "Standard", "1"),
					factor("express", "Express", "1.5"),
				},
			},
		},
		Fees:       noFees(),
		Promotions: sharedPromotions(),
		Limits:     Limits{MaxNotesLength: maxNotesLength, MaxPhotos: maxPhotos},
	}
}

func washFoldCatalog() *Catalog {
	return &Catalog{
		Service:      WashFold,
		Name:         "Wash & Fold",
		Unit:         "lbs",
		EmptyMessage: "Please enter the weight of your laundry.",
		Items: []CatalogItem{
			item("laundry", "Laundry (per lb)", "1.99"),
		},
		DefaultItems: map[string]int{"laundry": 10},
		Modifiers: []ModifierGroup{
			{
				ID: "detergent", Name: "Detergent", Effect: EffectFlat, Scope: ScopeOrder, Scaling: ScalePerOrder, Default: "regular",
				Options: []ModifierOption{
					delta("regular", "Regular", "0"),
					delta("hypoallergenic", "Hypoallergenic", "2"),
					delta("fragrance-free", "Fragrance-Free", "2"),
					delta("eco-friendly", "Eco-Friendly", "1.5"),
				},
			},
			{
				ID: "fold", Name: "Fold Style", Effect: EffectFlat, Scope: ScopeOrder, Scaling: ScalePerBlock, BlockSize: 10, Default: "standard",
				Options: []ModifierOption{
					delta("standard", "Standard Fold", "0"),
					delta("military", "Military Fold", "0"),
					delta("hung", "Hang Items", "0.5"),
				},
			},
		},
		AddOns: []AddOn{
			addOn("fabric-softener", "Fabric Softener", "0"),
			{ID: "stain-treatment", Name: "Stain Pretreatment", Price: mustDecimal("1"), Scaling: ScalePerBlock, BlockSize: 10},
		},
		Fees:       noFees(),
		Promotions: sharedPromotions(),
		Preferences: []PreferenceGroup{
			{ID: "sort", Name: "Sort Type", Default: "mixed", Options: []string{"mixed", "whites", "darks", "colors", "delicates"}},
			{ID: "water-temp", Name: "Water Temperature", Default: "Warm", Options: []string{"Cold", "Warm", "Hot"}},
			{ID: "dryer", Name: "Dryer", Default: "Regular Dry", Options: []string{"Regular Dry", "Low Heat", "Air Dry"}},
		},
		Recurrence: append([]string(nil), recurringFrequencies...),
		Limits:     Limits{MinQuantity: 5, MaxQuantity: 50, MaxNotesLength: maxNotesLength, MaxPhotos: maxPhotos},
	}
}

func ironingCatalog() *Catalog {
	eligible := func(ci CatalogItem) CatalogItem {
		ci.BundleEligible = true
		return ci
	}
	return &Catalog{
		Service:      Ironing,
		Name:         "Ironing",
		Unit:         "items",
		EmptyMessage: "Please select at least one item to iron.",
		Items: []CatalogItem{
			eligible(item("dress-shirt", "Dress Shirt", "2.99")),
			eligible(item("pants", "Pants/Trousers", "3.99")),
			eligible(item("skirt", "Skirt", "3.49")),
			eligible(item("blouse", "Blouse", "3.49")),
			item("dress", "Dress", "5.99"),
			eligible(item("uniform", "Uniform", "4.99")),
			item("table-linen", "Table Linen", "4.99"),
			item("bed-sheet", "Bed Sheet", "5.99"),
		},
		Modifiers: []ModifierGroup{
			{
				ID: "press", Name: "Press", Effect: EffectUnitDelta, Scope: ScopeOrder, Default: "standard",
				Options: []ModifierOption{
					delta("standard", "Standard Press", "0"),
					delta("crisp", "Extra Crisp", "1"),
					delta("light", "Light Steam", "0"),
				},
			},
			{
				ID: "starch", Name: "Starch", Effect: EffectUnitDelta, Scope: ScopeOrder, Default: "none",
				Options: []ModifierOption{
					delta("none", "No Starch", "0"),
					delta("light", "Light Starch", "0.5"),
					delta("heavy", "Heavy Starch", "1"),
				},
			},
		},
		Bundles: []BundleDeal{
			{ID: "shirt-pack", Name: "5 Shirts Special", Items: map[string]int{"dress-shirt": 5}, Price: mustDecimal("12.99"), Savings: mustDecimal("1.96")},
			{ID: "suit-pack", Name: "Suit Press", Items: map[string]int{"dress-shirt": 1, "pants": 1}, Price: mustDecimal("5.99"), Savings: mustDecimal("0.99")},
			{ID: "uniform-pack", Name: "3 Uniforms", Items: map[string]int{"uniform": 3}, Price: mustDecimal("12.99"), Savings: mustDecimal("1.98")},
		},
		Fees:       noFees(),
		Promotions: sharedPromotions(),
		Limits:     Limits{MaxNotesLength: maxNotesLength, MaxPhotos: maxPhotos},
	}
}

func shoeCleaningCatalog() *Catalog {
	shoe := func(id, name, price string, levels ...string) CatalogItem {
		ci := item(id, name, price)
		ci.CareLevels = levels
		return ci
	}
	return &Catalog{
		Service:      ShoeCleaning,
		Name:         "Shoe Cleaning",
		Unit:         "pairs",
		EmptyMessage: "Please add at least one pair of shoes.",
		Items: []CatalogItem{
			shoe("sneakers", "Sneakers/Athletic", "15.99", "standard", "premium", "quick"),
			shoe("leather-dress", "Leather Dress Shoes", "18.99", "standard", "premium"),
			shoe("canvas", "Canvas Shoes", "14.99", "standard", "quick"),
			shoe("boots-ankle", "Ankle Boots", "22.99", "standard", "premium"),
			shoe("boots-knee", "Knee-High Boots", "29.99", "standard", "premium"),
			shoe("suede", "Suede", "24.99", "premium"),
			shoe("sandals", "Sandals/Flip Flops", "9.99", "quick"),
		},
		Modifiers: []ModifierGroup{
			{
				ID: "cleaning-level", Name: "Cleaning Level", Effect: EffectUnitDelta, Scope: ScopeOrder, Default: "standard",
				Options: []ModifierOption{
					delta("quick", "Quick Refresh", "0"),
					delta("standard", "Standard Deep Clean", "0"),
					delta("premium", "Premium Restore", "10"),
				},
			},
			{
				ID: "material", Name: "Material", Effect: EffectUnitDelta, Scope: ScopeLine, Default: "standard",
				Options: []ModifierOption{
					delta("standard", "Standard", "0"),
					delta("suede", "Suede/Nubuck", "5"),
					delta("exotic-leather", "Exotic Leather", "10"),
					delta("patent", "Patent Leather", "3"),
				},
			},
			{
				ID: "condition", Name: "Condition", Effect: EffectLineMultiplier, Scope: ScopeLine, Default: "good",
				Options: []ModifierOption{
					factor("good", "Good", "1"),
					factor("worn", "Worn", "1"),
					factor("very-dirty", "Very Dirty", "1.2"),
				},
			},
		},
		CareLevelGroup: "cleaning-level",
		AddOns: []AddOn{
			addOn("waterproofing", "Waterproofing Treatment", "5.99"),
			addOn("color-restore", "Color Restoration", "7.99"),
			addOn("scuff-removal", "Scuff Mark Removal", "3.99"),
			addOn("lace-replacement", "New Laces (white)", "2.99"),
			addOn("lace-replacement-color", "New Laces (colored)", "3.99"),
			addOn("insole-replacement", "New Insoles", "8.99"),
		},
		Fees:       noFees(),
		Promotions: sharedPromotions(),
		Limits:     Limits{MaxNotesLength: maxNotesLength, MaxPhotos: maxPhotos},
	}
}

func carpetCleaningCatalog() *Catalog {
	return &Catalog{
		Service:      CarpetCleaning,
		Name:         "Carpet & Rug Cleaning",
		Unit:         "rugs",
		EmptyMessage: "Please choose a rug size or enter custom dimensions.",
		Items: []CatalogItem{
			item("small", "Small (2x3 - 4x6 ft)", "29.99"),
			item("medium", "Medium (5x7 - 6x9 ft)", "49.99"),
			item("large", "Large (8x10 - 9x12 ft)", "79.99"),
			item("xl", "Extra Large (10x14+ ft)", "129.99"),
		},
		DefaultItems: map[string]int{"medium": 1},
		Modifiers: []ModifierGroup{
			{
				ID: "rug-type", Name: "Rug Type", Effect: EffectSubtotalMultiplier, Scope: ScopeOrder, Default: "area-rug",
				Options: []ModifierOption{
					factor("area-rug", "Area Rug", "1"),
					factor("runner", "Runner Rug", "1.1"),
					factor("bath-mat", "Bath Mat", "0.7"),
					factor("decorative", "Decorative Rug", "1"),
					factor("oriental", "Oriental/Persian", "1.5"),
					factor("wool", "Wool Rug", "1.3"),
					factor("synthetic", "Synthetic", "0.9"),
				},
			},
			{
				ID: "soil-level", Name: "Soil Level", Effect: EffectSubtotalMultiplier, Scope: ScopeOrder, Default: "medium",
				Options: []ModifierOption{
					factor("light", "Light", "1"),
					factor("medium", "Medium", "1.2"),
					factor("heavy", "Heavy", "1.5"),
					factor("extreme", "Extreme", "2"),
				},
			},
			{
				ID: "method", Name: "Cleaning Method", Effect: EffectIncrement, Scope: ScopeOrder, Default: "steam",
				Options: []ModifierOption{
					factor("steam", "Hot Water Extraction", "1"),
					factor("dry", "Dry Cleaning", "1.2"),
					factor("eco", "Eco-Friendly", "1.15"),
				},
			},
		},
		AddOns: []AddOn{
			addOn("stain-protect", "Stain Protection", "14.99"),
			addOn("deodorize", "Deodorizing", "9.99"),
			addOn("pet-odor", "Pet Odor Removal", "19.99"),
			addOn("spot-treatment", "Spot Stain Treatment", "7.99"),
			addOn("fringe-clean", "Fringe Cleaning", "12.99"),
			addOn("backing-clean", "Backing Cleaning", "15.99"),
		},
		Fees: map[Fulfillment]decimal.Decimal{
			FulfillmentPickupOnly:   mustDecimal("9.99"),
			FulfillmentDeliveryOnly: mustDecimal("9.99"),
			FulfillmentRoundTrip:    mustDecimal("14.99"),
		},
		Promotions: sharedPromotions(),
		CustomSize: &CustomSizePricing{
			RatePerSqFt:         mustDecimal("2.49"),
			MinFeet:             mustDecimal("1"),
			MaxFeet:             mustDecimal("50"),
			SpecialHandlingFeet: mustDecimal("20"),
		},
		Limits: Limits{MaxNotesLength: maxNotesLength, MaxPhotos: maxPhotos},
	}
}

func alterationsCatalog() *Catalog {
	return &Catalog{
		Service:      Alterations,
		Name:         "Alterations & Repairs",
		Unit:         "services",
		EmptyMessage: "Please choose at least one alteration or repair.",
		Items: []CatalogItem{
			item("hem-pants", "Hem Pants", "12"),
			item("hem-jeans", "Hem Jeans (original hem)", "14"),
			item("take-in-waist", "Take In Waist", "18"),
			item("let-out-waist", "Let Out Waist", "18"),
			item("shorten-sleeves", "Shorten Sleeves", "20"),
			item("zipper-replacement", "Zipper Replacement", "15"),
			item("button-replacement", "Button Replacement", "3"),
			item("patch-repair", "Patch Repair", "10"),
			item("seam-repair", "Seam Repair", "8"),
			item("dress-hem", "Dress Hem", "25"),
			item("suit-tailoring", "Suit Tailoring", "45"),
			item("restoration", "Garment Restoration", "35"),
		},
		Modifiers: []ModifierGroup{
			{
				ID: "urgency", Name: "Urgency", Effect: EffectIncrement, Scope: ScopeOrder, Default: "standard",
				Options: []ModifierOption{
					factor("standard", "Standard (3-5 days)", "1"),
					factor("rush", "Rush (24-48h)", "1.5"),
					factor("express", "Express (same-day)", "2"),
				},
			},
		},
		Fees:       noFees(),
		Promotions: sharedPromotions(),
		Preferences: []PreferenceGroup{
			{ID: "category", Name: "Service Category", Default: "alteration", Options: []string{"alteration", "repair", "restoration"}},
			{ID: "garment", Name: "Garment", Options: []string{"pants", "shirts", "dresses", "jackets", "suits", "jeans", "formal"}},
		},
		Limits: Limits{MaxNotesLength: maxNotesLength, MaxPhotos: maxPhotos},
	}
}
