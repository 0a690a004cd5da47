// Package margin computes profit and margin figures for line items.
// Kept small and explicit because it drives KPIs, charts, and
// per-product display.
package margin

import "marginbook/internal/domain/project"

// Summary holds aggregate figures for a set of products.
type Summary struct {
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	MarginPct float64 `json:"marginPct"`
}

// Profit is selling price minus cost price.
func Profit(costPrice, sellingPrice float64) float64 {
	return sellingPrice - costPrice
}

// MarginPct is profit as a percentage of the selling price. Defined as
// zero when there is no revenue to avoid dividing by zero.
func MarginPct(costPrice, sellingPrice float64) float64 {
	if sellingPrice <= 0 {
		return 0
	}
	return Profit(costPrice, sellingPrice) / sellingPrice * 100
}

// Totals sums revenue, cost and profit over products. The aggregate
// margin is weighted by revenue (sum of profit over sum of revenue),
// never an average of per-row percentages.
func Totals(products []project.Product) Summary {
	var s Summary
	for _, p := range products {
		s.Revenue += p.SellingPrice
		s.Cost += p.CostPrice
	}
	s.Profit = s.Revenue - s.Cost
	if s.Revenue > 0 {
		s.MarginPct = s.Profit / s.Revenue * 100
	}
	return s
}
