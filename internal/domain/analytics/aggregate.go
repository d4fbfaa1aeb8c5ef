package analytics

func tierName(tier *string) string {
	if tier == nil || *tier == "" {
		return NoTierName
	}
	return *tier
}

// BuildDealUsageHeatmap pairs every loyalty tier with every deal and counts
// usages by customers in that tier. Tiers appear in first-seen customer
// order and deals in the given order.
func BuildDealUsageHeatmap(customers []CustomerTier, usage []UsageCount, dealIDs []int64) []TierDealUsage {
	tierOf := make(map[int64]string, len(customers))
	tiers := make([]string, 0)
	seen := make(map[string]bool)
	for _, c := range customers {
		name := tierName(c.Tier)
		tierOf[c.CustomerID] = name
		if !seen[name] {
			seen[name] = true
			tiers = append(tiers, name)
		}
	}

	type key struct {
		tier string
		deal int64
	}
	counts := make(map[key]int64)
	for _, u := range usage {
		tier, ok := tierOf[u.CustomerID]
		if !ok {
			continue
		}
		counts[key{tier, u.DealID}] += u.Count
	}

	out := make([]TierDealUsage, 0, len(tiers))
	for _, tier := range tiers {
		row := TierDealUsage{LoyaltyTier: tier, Deals: make([]DealCount, 0, len(dealIDs))}
		for _, id := range dealIDs {
			row.Deals = append(row.Deals, DealCount{DealID: id, Count: counts[key{tier, id}]})
		}
		out = append(out, row)
	}
	return out
}

// NormalizeTierCounts relabels the empty tier as NoTierName, merging counts
// if both an empty and a null tier were grouped separately.
func NormalizeTierCounts(in []TierCount) []TierCount {
	index := make(map[string]int)
	out := make([]TierCount, 0, len(in))
	for _, tc := range in {
		name := tc.LoyaltyTier
		if name == "" {
			name = NoTierName
		}
		if i, ok := index[name]; ok {
			out[i].Count += tc.Count
			continue
		}
		index[name] = len(out)
		out = append(out, TierCount{LoyaltyTier: name, Count: tc.Count})
	}
	return out
}

// BuildCategoryVolumes sums, per customer and category, the cart quantity
// of each deal usage's product. A usage with no matching cart line counts
// as one unit; usages without a category are skipped.
func BuildCategoryVolumes(usages []UsageProduct, carts []CartQuantity) []CategoryVolume {
	type cartKey struct{ customer, product int64 }
	qty := make(map[cartKey]int64, len(carts))
	for _, c := range carts {
		qty[cartKey{c.CustomerID, c.ProductID}] += c.Quantity
	}

	type volKey struct{ customer, category int64 }
	index := make(map[volKey]int)
	out := make([]CategoryVolume, 0)
	for _, u := range usages {
		if u.CategoryID == nil {
			continue
		}
		q, ok := qty[cartKey{u.CustomerID, u.ProductID}]
		if !ok || q == 0 {
			q = 1
		}
		k := volKey{u.CustomerID, *u.CategoryID}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, CategoryVolume{CustomerID: u.CustomerID, CategoryID: *u.CategoryID})
		}
		out[i].Volume += q
	}
	return out
}

// BuildFunnel returns the two-stage cart-to-purchase funnel
func BuildFunnel(activeCarts, transactions int64) []FunnelStage {
	return []FunnelStage{
		{Stage: StageCartInitiated, Count: activeCarts},
		{Stage: StagePurchaseCompleted, Count: transactions},
	}
}
