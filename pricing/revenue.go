package pricing

import (
	"context"
	"fmt"
	"time"

	"shoplens-backend/models"
)

// maxDailyBucketDays is the widest window still charted per day.
const maxDailyBucketDays = 31

// RevenueOverTime buckets realized revenue per day for windows up to 31
// days and per month for longer windows. A window with no sales yields an
// empty series, not an error: a dashboard chart may be empty.
func (c *Calculator) RevenueOverTime(ctx context.Context, timeRangeDays int, merchantID string) ([]models.TimeSeriesPoint, error) {
	if err := c.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	if timeRangeDays <= 0 {
		timeRangeDays = defaultWindowDays
	}
	from, to := c.window(timeRangeDays)
	histories, _, err := c.store.ProductHistories(ctx, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("revenue series calculation failed: %w", err)
	}

	var records []models.SaleRecord
	for _, h := range histories {
		records = append(records, h.Sales...)
	}
	if len(records) == 0 {
		return []models.TimeSeriesPoint{}, nil
	}

	if timeRangeDays <= maxDailyBucketDays {
		return dailyRevenueSeries(records, from, to), nil
	}
	return monthlyRevenueSeries(records, from, to), nil
}

// dailyRevenueSeries buckets revenue per calendar day across [from, to],
// keeping zero days so the series is continuous.
func dailyRevenueSeries(records []models.SaleRecord, from, to time.Time) []models.TimeSeriesPoint {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.OccurredAt.Format("2006-01-02")] += r.Price * float64(r.Quantity)
	}
	series := make([]models.TimeSeriesPoint, 0)
	for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		label := d.Format("2006-01-02")
		series = append(series, models.TimeSeriesPoint{Period: label, Revenue: totals[label]})
	}
	return series
}

// monthlyRevenueSeries buckets revenue per calendar month from the window's
// first month through the month holding to, keeping zero months so the
// series is continuous.
func monthlyRevenueSeries(records []models.SaleRecord, from, to time.Time) []models.TimeSeriesPoint {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.OccurredAt.Format("Jan 2006")] += r.Price * float64(r.Quantity)
	}
	series := make([]models.TimeSeriesPoint, 0)
	for m := startOfMonth(from); !m.After(to); m = m.AddDate(0, 1, 0) {
		label := m.Format("Jan 2006")
		series = append(series, models.TimeSeriesPoint{Period: label, Revenue: totals[label]})
	}
	return series
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
