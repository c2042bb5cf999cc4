package pricing

import (
	"math"
	"time"

	"shoplens-backend/models"
)

const (
	// projectionMonths is how many future months every projection covers.
	projectionMonths = 6

	// monthlyGrowthRate compounds on both sides of every projection.
	monthlyGrowthRate = 0.02
)

// ProjectRevenue applies the single-period elasticity model: a price change
// shifts demand by elasticity*priceChange, and revenue scales by both.
func ProjectRevenue(base, elasticity, priceChange float64) float64 {
	quantityChange := elasticity * priceChange
	return base * (1 + priceChange) * (1 + quantityChange)
}

// buildProjections rolls a baseline monthly revenue and its optimized
// counterpart across the next six calendar months, compounding 2% growth
// per month on both.
func buildProjections(current, optimized float64, now time.Time) []models.RevenueProjection {
	monthStart := startOfMonth(now)
	projections := make([]models.RevenueProjection, 0, projectionMonths)
	for i := 0; i < projectionMonths; i++ {
		growth := math.Pow(1+monthlyGrowthRate, float64(i))
		projections = append(projections, models.RevenueProjection{
			Month:            monthStart.AddDate(0, i+1, 0).Format("Jan 2006"),
			CurrentRevenue:   current * growth,
			OptimizedRevenue: optimized * growth,
		})
	}
	return projections
}

// startOfMonth truncates t to the first instant of its calendar month.
// AddDate on a month-start never lands outside the intended month.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
