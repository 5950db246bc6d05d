package pricing

// ApplicableBundles lists the bundles whose required items are all present in
// the selection in at least the bundle's quantities, in catalog order.
func ApplicableBundles(c *Catalog, sel Selection) []BundleDeal {
	var out []BundleDeal
	for _, b := range c.Bundles {
		if bundleCovered(c, b, sel) {
			out = append(out, b)
		}
	}
	return out
}

func bundleCovered(c *Catalog, b BundleDeal, sel Selection) bool {
	for id, qty := range b.Items {
		item, err := c.Item(id)
		if err != nil || !item.BundleEligible {
			return false
		}
		if sel.Items[id] < qty {
			return false
		}
	}
	return true
}

// bundleMatches reports whether the selection is exactly the bundle's items
func bundleMatches(b BundleDeal, sel Selection) bool {
	if len(sel.Entries) > 0 || sel.Dimensions != nil {
		return false
	}
	for id, qty := range sel.Items {
		if qty != 0 && b.Items[id] != qty {
			return false
		}
	}
	for id, qty := range b.Items {
		if sel.Items[id] != qty {
			return false
		}
	}
	return true
}

// ApplyBundle replaces the selection's items with the bundle's exact quantities
// and records the bundle. Items outside the bundle are dropped; modifiers,
// add-ons and fulfillment choices are kept.
func (s *Selection) ApplyBundle(c *Catalog, bundleID string) error {
	b, err := c.Bundle(bundleID)
	if err != nil {
		return err
	}
	for id := range b.Items {
		item, err := c.Item(id)
		if err != nil {
			return err
		}
		if !item.BundleEligible {
			return newValidationError("applied_bundle", "%s is not eligible for bundle pricing", item.Name)
		}
	}
	s.Items = copyIntMap(b.Items)
	s.Entries = nil
	s.Dimensions = nil
	s.AppliedBundle = b.ID
	return nil
}

// ClearBundle drops the bundle and keeps the current quantities
func (s *Selection) ClearBundle() {
	s.AppliedBundle = ""
}
