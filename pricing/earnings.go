package pricing

import (
	"context"
	"fmt"
	"math"

	"shoplens-backend/models"
)

// CalculateProjectedEarnings builds the merchant's realized monthly revenue
// series across the window plus a six-month forward projection. TodayIndex
// points at the current month inside Actual.
//
// Error taxonomy matches CalculatePriceRecommendations: unreachable store,
// then zero in-window sales, then wrapped unexpected failures.
func (c *Calculator) CalculateProjectedEarnings(ctx context.Context, timeRangeDays int, merchantID string) (*models.ProjectedEarnings, error) {
	if err := c.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	from, to := c.window(timeRangeDays)
	histories, _, err := c.store.ProductHistories(ctx, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("projected earnings calculation failed: %w", err)
	}

	var records []models.SaleRecord
	for _, h := range histories {
		records = append(records, h.Sales...)
	}
	if len(records) == 0 {
		return nil, ErrInsufficientData
	}

	actual := monthlyRevenueSeries(records, from, to)

	// Project forward from the whole store's monthly revenue estimate.
	baseline := estimateMonthlyRevenue(records)
	monthStart := startOfMonth(to)
	projected := make([]models.TimeSeriesPoint, 0, projectionMonths)
	for i := 0; i < projectionMonths; i++ {
		projected = append(projected, models.TimeSeriesPoint{
			Period:  monthStart.AddDate(0, i+1, 0).Format("Jan 2006"),
			Revenue: baseline * math.Pow(1+monthlyGrowthRate, float64(i)),
		})
	}

	return &models.ProjectedEarnings{
		Actual:     actual,
		Projected:  projected,
		TodayIndex: len(actual) - 1,
	}, nil
}
