package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shoplens-backend/models"
)

// defaultWindowDays is used when the caller passes a non-positive window.
const defaultWindowDays = 90

// HistoryStore supplies product sales histories to the calculators.
//
// ProductHistories returns every live product for the merchant (all
// merchants when merchantID is empty) together with its sale records inside
// [from, to], plus the number of products dropped because their rows could
// not be read.
type HistoryStore interface {
	Ping(ctx context.Context) error
	ProductHistories(ctx context.Context, merchantID string, from, to time.Time) ([]models.ProductSalesHistory, int, error)
}

// Calculator runs the pricing analytics against a HistoryStore. It keeps no
// state between calls: identical inputs produce identical reports.
type Calculator struct {
	store HistoryStore
	now   func() time.Time
}

// NewCalculator returns a Calculator backed by store.
func NewCalculator(store HistoryStore) *Calculator {
	return &Calculator{store: store, now: time.Now}
}

// CalculatePriceRecommendations builds confidence-filtered price
// recommendations and a six-month revenue projection from the merchant's
// in-window sales history.
//
// It returns ErrDatabaseConnection when the store cannot be reached (checked
// before anything else, never retried) and ErrInsufficientData when no
// product has enough in-window sales to reach even the lowest confidence
// tier. Any other store failure is wrapped with its original message
// preserved.
func (c *Calculator) CalculatePriceRecommendations(ctx context.Context, timeRangeDays int, merchantID, confidence string) (*models.PriceRecommendationReport, error) {
	if err := c.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	from, to := c.window(timeRangeDays)
	histories, skipped, err := c.store.ProductHistories(ctx, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("price recommendation calculation failed: %w", err)
	}

	eligible := withSales(histories)
	if !anyEligible(eligible) {
		return nil, ErrInsufficientData
	}

	recs, currentTotal, optimizedTotal := recommendAll(eligible, confidence)
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RevenueDifference > recs[j].RevenueDifference
	})

	return &models.PriceRecommendationReport{
		Recommendations:    recs,
		RevenueProjections: buildProjections(currentTotal, optimizedTotal, c.now()),
		SkippedProducts:    skipped,
	}, nil
}

// window computes [now-days, now], defaulting the span for non-positive
// inputs.
func (c *Calculator) window(timeRangeDays int) (time.Time, time.Time) {
	if timeRangeDays <= 0 {
		timeRangeDays = defaultWindowDays
	}
	to := c.now()
	return to.AddDate(0, 0, -timeRangeDays), to
}

// withSales drops products with an empty in-window history.
func withSales(histories []models.ProductSalesHistory) []models.ProductSalesHistory {
	kept := make([]models.ProductSalesHistory, 0, len(histories))
	for _, h := range histories {
		if len(h.Sales) > 0 {
			kept = append(kept, h)
		}
	}
	return kept
}

// anyEligible reports whether at least one product has enough records to
// reach the lowest confidence tier. Products below that minimum still
// contribute baseline revenue to projections, but alone they cannot produce
// a report.
func anyEligible(histories []models.ProductSalesHistory) bool {
	for _, h := range histories {
		if len(h.Sales) >= MinimumSamples() {
			return true
		}
	}
	return false
}

// recommendAll evaluates every product at the requested confidence filter
// and accumulates the monthly revenue totals the projector needs. A product
// with no recommendation contributes its baseline revenue to both totals.
func recommendAll(histories []models.ProductSalesHistory, confidence string) ([]models.PriceRecommendation, float64, float64) {
	recs := make([]models.PriceRecommendation, 0, len(histories))
	var currentTotal, optimizedTotal float64
	for _, h := range histories {
		baseline := estimateMonthlyRevenue(h.Sales)
		currentTotal += baseline

		r, ok := evaluate(h, confidence)
		if !ok {
			optimizedTotal += baseline
			continue
		}
		recs = append(recs, r.rec)
		optimizedTotal += r.rec.PotentialRevenue
	}
	return recs, currentTotal, optimizedTotal
}

// evaluate applies the confidence filtering contract: a named tier judges
// the product at exactly that tier, "all" at the best tier the product's
// sample count reaches. Either way a product yields at most one
// recommendation.
func evaluate(h models.ProductSalesHistory, confidence string) (recommendation, bool) {
	if confidence == ConfidenceAll {
		tier, ok := BestTier(len(h.Sales))
		if !ok {
			return recommendation{}, false
		}
		return buildRecommendation(h, tier)
	}
	tier, ok := TierFor(confidence)
	if !ok {
		return recommendation{}, false
	}
	return buildRecommendation(h, tier)
}
