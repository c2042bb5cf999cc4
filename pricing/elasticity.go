package pricing

import (
	"math"

	"shoplens-backend/models"
)

// minActionableElasticity is the cutoff below which demand is treated as
// unresponsive to price and no recommendation is made.
const minActionableElasticity = 0.1

// EstimateElasticity derives price elasticity of demand from a product's
// sale records with a two-point estimate: records are grouped by exact sale
// price, demand at a price level is the average quantity per record, and the
// lowest and highest observed prices anchor the estimate.
//
// Returns 0 when the history cannot support an estimate: fewer than two
// distinct prices, a zero low price, zero demand at the low price, or a
// non-finite ratio.
func EstimateElasticity(records []models.SaleRecord) float64 {
	type priceLevel struct {
		totalQuantity int
		observations  int
	}
	levels := make(map[float64]*priceLevel)
	for _, r := range records {
		lv := levels[r.Price]
		if lv == nil {
			lv = &priceLevel{}
			levels[r.Price] = lv
		}
		lv.totalQuantity += r.Quantity
		lv.observations++
	}
	if len(levels) < 2 {
		return 0
	}

	lowPrice := math.Inf(1)
	highPrice := math.Inf(-1)
	for p := range levels {
		if p < lowPrice {
			lowPrice = p
		}
		if p > highPrice {
			highPrice = p
		}
	}
	if lowPrice == 0 {
		return 0
	}

	demandAt := func(price float64) float64 {
		lv := levels[price]
		return float64(lv.totalQuantity) / float64(lv.observations)
	}
	demandAtLow := demandAt(lowPrice)
	if demandAtLow == 0 {
		return 0
	}

	priceChange := (highPrice - lowPrice) / lowPrice
	demandChange := (demandAt(highPrice) - demandAtLow) / demandAtLow
	elasticity := demandChange / priceChange
	if math.IsNaN(elasticity) || math.IsInf(elasticity, 0) {
		return 0
	}
	return elasticity
}
