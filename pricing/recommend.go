package pricing

import (
	"math"

	"shoplens-backend/models"
)

// daysPerMonth scales the per-sale-date revenue average to a month.
const daysPerMonth = 30

// estimateMonthlyRevenue estimates a product's average monthly revenue from
// its in-window records: total revenue divided by the number of distinct
// sale dates, scaled to a 30-day month. Days without a sale do not enter the
// average.
func estimateMonthlyRevenue(records []models.SaleRecord) float64 {
	var total float64
	dates := make(map[string]struct{})
	for _, r := range records {
		total += r.Price * float64(r.Quantity)
		dates[r.OccurredAt.Format("2006-01-02")] = struct{}{}
	}
	if len(dates) == 0 {
		return 0
	}
	return total / float64(len(dates)) * daysPerMonth
}

// recommendation couples the outward DTO with the inputs the projector needs.
type recommendation struct {
	rec        models.PriceRecommendation
	elasticity float64
	change     float64
}

// buildRecommendation evaluates one product at one tier. The second return
// is false when the product does not qualify: too few records for the tier,
// or demand too inelastic to act on.
func buildRecommendation(h models.ProductSalesHistory, tier Tier) (recommendation, bool) {
	if len(h.Sales) < tier.MinSamples {
		return recommendation{}, false
	}
	elasticity := EstimateElasticity(h.Sales)
	if math.Abs(elasticity) < minActionableElasticity {
		return recommendation{}, false
	}

	// Elastic demand (elasticity <= -1) punishes a price increase, so cut
	// the price; inelastic demand tolerates an increase.
	change := tier.Threshold
	if elasticity <= -1 {
		change = -tier.Threshold
	}

	currentRevenue := estimateMonthlyRevenue(h.Sales)
	potentialRevenue := ProjectRevenue(currentRevenue, elasticity, change)

	return recommendation{
		rec: models.PriceRecommendation{
			ProductID:         h.ProductID,
			ProductName:       h.ProductName,
			CurrentPrice:      h.CurrentPrice,
			RecommendedPrice:  h.CurrentPrice * (1 + change),
			Confidence:        tier.Level,
			CurrentRevenue:    currentRevenue,
			PotentialRevenue:  potentialRevenue,
			RevenueDifference: potentialRevenue - currentRevenue,
			PercentageChange:  change * 100,
		},
		elasticity: elasticity,
		change:     change,
	}, true
}
