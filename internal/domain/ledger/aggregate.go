package ledger

import "sort"

// AggregateFlows groups the events of one category by normalized inventory
// key and sums quantity and amount. Events not matching the category are
// skipped, so callers may pass a pre-filtered or a mixed slice.
//
// For the purchase category, negative-quantity lines are purchase returns and
// are accumulated, sign-inverted, into the return columns. For the sales
// category, return lines keep their negative sign and net directly into the
// sales totals. All other categories sum as-is (positive = inbound).
//
// The result is ordered by key string so repeated runs over an unchanged flow
// set produce identical output.
func AggregateFlows(category FlowCategory, events []FlowEvent) []CategoryTotals {
	byKey := make(map[InventoryKey]*CategoryTotals)

	for _, e := range events {
		if !e.Matches(category) {
			continue
		}
		key := e.Key.Normalized()
		t, ok := byKey[key]
		if !ok {
			t = &CategoryTotals{Key: key}
			byKey[key] = t
		}
		if category == CategoryPurchase && e.Quantity.IsNegative() {
			t.ReturnQty = t.ReturnQty.Sub(e.Quantity)
			t.ReturnAmount = t.ReturnAmount.Sub(e.Amount)
			continue
		}
		t.Qty = t.Qty.Add(e.Quantity)
		t.Amount = t.Amount.Add(e.Amount)
	}

	totals := make([]CategoryTotals, 0, len(byKey))
	for _, t := range byKey {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Key.String() < totals[j].Key.String()
	})
	return totals
}

// DistinctKeys returns the normalized set of keys appearing in the events,
// ordered deterministically.
func DistinctKeys(events []FlowEvent) []InventoryKey {
	seen := make(map[InventoryKey]struct{})
	keys := make([]InventoryKey, 0)
	for _, e := range events {
		key := e.Key.Normalized()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
