package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shoplens-backend/models"
)

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	pingErr   error
	fetchErr  error
	histories []models.ProductSalesHistory
	skipped   int

	fetches        int
	lastMerchantID string
	lastFrom       time.Time
	lastTo         time.Time
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ProductHistories(ctx context.Context, merchantID string, from, to time.Time) ([]models.ProductSalesHistory, int, error) {
	f.fetches++
	f.lastMerchantID = merchantID
	f.lastFrom = from
	f.lastTo = to
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	return f.histories, f.skipped, nil
}

func newTestCalculator(store HistoryStore) *Calculator {
	c := NewCalculator(store)
	c.now = func() time.Time { return testNow }
	return c
}

// strongElasticHistory has 50 records and elasticity -2.5: a high-tier price
// cut with a clear projected gain.
func strongElasticHistory() models.ProductSalesHistory {
	records := repeatSales(10, 4, 25, 0)
	records = append(records, repeatSales(12, 2, 25, 25)...)
	return models.ProductSalesHistory{
		ProductID:    "prod-a",
		ProductName:  "Cold Brew Bottle",
		CurrentPrice: 20,
		Sales:        records,
	}
}

// smallHistory has 6 records and mild inelasticity: low tier only.
func smallHistory() models.ProductSalesHistory {
	records := repeatSales(8, 5, 3, 0)
	records = append(records, salesAt(9, 3, 5, 5, 4)...)
	return models.ProductSalesHistory{
		ProductID:    "prod-b",
		ProductName:  "Filter Papers",
		CurrentPrice: 9,
		Sales:        records,
	}
}

func TestCalculator_UnreachableStore(t *testing.T) {
	store := &fakeStore{pingErr: errors.New("dial tcp: connection refused")}
	calc := newTestCalculator(store)

	_, err := calc.CalculatePriceRecommendations(context.Background(), 90, "", ConfidenceAll)
	if !errors.Is(err, ErrDatabaseConnection) {
		t.Fatalf("expected ErrDatabaseConnection, got %v", err)
	}
	if store.fetches != 0 {
		t.Fatalf("connection failure must be raised before any product is fetched")
	}
}

func TestCalculator_NoProductsMeansInsufficientData(t *testing.T) {
	calc := newTestCalculator(&fakeStore{})
	_, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceAll)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCalculator_SingleRecordProductIsInsufficient(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{{
		ProductID:    "prod-l",
		ProductName:  "Lone Item",
		CurrentPrice: 10,
		Sales:        repeatSales(10, 1, 1, 0),
	}}}
	calc := newTestCalculator(store)

	_, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceAll)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("a lone single-record product must be insufficient, got %v", err)
	}
}

func TestCalculator_StoreFailureIsWrappedWithCause(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New(`relation "sale_items" does not exist`)}
	calc := newTestCalculator(store)

	_, err := calc.CalculatePriceRecommendations(context.Background(), 90, "", ConfidenceAll)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if errors.Is(err, ErrDatabaseConnection) || errors.Is(err, ErrInsufficientData) {
		t.Fatalf("a mid-query failure must not map to the sentinel errors, got %v", err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("original cause must be preserved in %q", err.Error())
	}
}

func TestCalculator_HighConfidenceFiltersSmallHistories(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{strongElasticHistory(), smallHistory()}}
	calc := newTestCalculator(store)

	report, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Recommendations) != 1 {
		t.Fatalf("expected only the 50-record product at high confidence, got %d recommendations", len(report.Recommendations))
	}
	rec := report.Recommendations[0]
	if rec.ProductID != "prod-a" || rec.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
}

func TestCalculator_LowConfidenceEvaluatesEveryProductAtLow(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{strongElasticHistory(), smallHistory()}}
	calc := newTestCalculator(store)

	report, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Recommendations) != 2 {
		t.Fatalf("expected both products at low confidence, got %d", len(report.Recommendations))
	}
	for _, rec := range report.Recommendations {
		if rec.Confidence != ConfidenceLow {
			t.Fatalf("requested tier must stamp every recommendation, got %q", rec.Confidence)
		}
	}
}

func TestCalculator_AllPicksBestTierPerProduct(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{smallHistory(), strongElasticHistory()}}
	calc := newTestCalculator(store)

	report, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Recommendations) != 2 {
		t.Fatalf("expected one recommendation per product, got %d", len(report.Recommendations))
	}

	byID := map[string]models.PriceRecommendation{}
	for _, rec := range report.Recommendations {
		byID[rec.ProductID] = rec
	}
	if byID["prod-a"].Confidence != ConfidenceHigh {
		t.Fatalf("50 records must land on the high tier, got %q", byID["prod-a"].Confidence)
	}
	if byID["prod-b"].Confidence != ConfidenceLow {
		t.Fatalf("6 records must land on the low tier, got %q", byID["prod-b"].Confidence)
	}

	// ordered by impact
	for i := 1; i < len(report.Recommendations); i++ {
		if report.Recommendations[i].RevenueDifference > report.Recommendations[i-1].RevenueDifference {
			t.Fatalf("recommendations must be ordered by revenue difference descending")
		}
	}
}

func TestCalculator_ProjectionsTieToRecommendations(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{strongElasticHistory(), smallHistory()}}
	calc := newTestCalculator(store)

	report, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.RevenueProjections) != 6 {
		t.Fatalf("expected exactly 6 projection periods, got %d", len(report.RevenueProjections))
	}

	// period 0 baseline: 960 (prod-a) + 1230 (prod-b)
	first := report.RevenueProjections[0]
	assert.InDelta(t, 2190, first.CurrentRevenue, 1e-6)

	var optimizedTotal float64
	for _, rec := range report.Recommendations {
		optimizedTotal += rec.PotentialRevenue
	}
	assert.InDelta(t, optimizedTotal, first.OptimizedRevenue, 1e-6)

	if first.OptimizedRevenue <= first.CurrentRevenue {
		t.Fatalf("optimized revenue must beat the baseline when products contribute recommendations")
	}
	if first.Month != "Sep 2026" {
		t.Fatalf("projections must start the month after now, got %q", first.Month)
	}
}

func TestCalculator_ProductsBelowEveryTierKeepTheirBaseline(t *testing.T) {
	tiny := models.ProductSalesHistory{
		ProductID:    "prod-c",
		ProductName:  "Sticker Pack",
		CurrentPrice: 5,
		Sales: []models.SaleRecord{
			{Price: 5, Quantity: 2, OccurredAt: historyStart},
			{Price: 5, Quantity: 2, OccurredAt: historyStart.AddDate(0, 0, 1)},
			{Price: 6, Quantity: 2, OccurredAt: historyStart.AddDate(0, 0, 2)},
		},
	}
	store := &fakeStore{histories: []models.ProductSalesHistory{strongElasticHistory(), tiny}}
	calc := newTestCalculator(store)

	report, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Recommendations) != 1 {
		t.Fatalf("3 records can never produce a recommendation, got %d recommendations", len(report.Recommendations))
	}

	// tiny contributes its baseline (320) to both sides of period 0
	first := report.RevenueProjections[0]
	assert.InDelta(t, 960+320, first.CurrentRevenue, 1e-6)
	rec := report.Recommendations[0]
	assert.InDelta(t, rec.PotentialRevenue+320, first.OptimizedRevenue, 1e-6)
}

func TestCalculator_SkippedCountPropagates(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{strongElasticHistory()}, skipped: 2}
	calc := newTestCalculator(store)

	report, err := calc.CalculatePriceRecommendations(context.Background(), 90, "m-1", ConfidenceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SkippedProducts != 2 {
		t.Fatalf("expected 2 skipped products, got %d", report.SkippedProducts)
	}
}

func TestCalculator_WindowDefaultsTo90Days(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{strongElasticHistory()}}
	calc := newTestCalculator(store)

	_, err := calc.CalculatePriceRecommendations(context.Background(), 0, "merchant-7", ConfidenceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.lastTo.Equal(testNow) {
		t.Fatalf("window must end now, got %v", store.lastTo)
	}
	if !store.lastFrom.Equal(testNow.AddDate(0, 0, -90)) {
		t.Fatalf("non-positive day count must default to 90, got from=%v", store.lastFrom)
	}
	if store.lastMerchantID != "merchant-7" {
		t.Fatalf("merchant filter must reach the store, got %q", store.lastMerchantID)
	}
}

func TestProjectedEarnings_UnreachableStore(t *testing.T) {
	calc := newTestCalculator(&fakeStore{pingErr: errors.New("pool closed")})
	_, err := calc.CalculateProjectedEarnings(context.Background(), 90, "m-1")
	if !errors.Is(err, ErrDatabaseConnection) {
		t.Fatalf("expected ErrDatabaseConnection, got %v", err)
	}
}

func TestProjectedEarnings_NoSalesMeansInsufficientData(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{{
		ProductID: "prod-a", ProductName: "Empty", CurrentPrice: 10,
	}}}
	calc := newTestCalculator(store)

	_, err := calc.CalculateProjectedEarnings(context.Background(), 90, "m-1")
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestProjectedEarnings_MonthlySeriesAndTodayIndex(t *testing.T) {
	// 90-day window ending 2026-08-25 starts 2026-05-27: May through August.
	store := &fakeStore{histories: []models.ProductSalesHistory{{
		ProductID:    "prod-a",
		ProductName:  "Cold Brew Bottle",
		CurrentPrice: 100,
		Sales: []models.SaleRecord{
			{Price: 100, Quantity: 2, OccurredAt: time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)},
			{Price: 100, Quantity: 1, OccurredAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
		},
	}}}
	calc := newTestCalculator(store)

	earnings, err := calc.CalculateProjectedEarnings(context.Background(), 90, "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantActual := []string{"May 2026", "Jun 2026", "Jul 2026", "Aug 2026"}
	if len(earnings.Actual) != len(wantActual) {
		t.Fatalf("expected %d actual months, got %d", len(wantActual), len(earnings.Actual))
	}
	for i, p := range earnings.Actual {
		if p.Period != wantActual[i] {
			t.Fatalf("actual %d: expected %q, got %q", i, wantActual[i], p.Period)
		}
	}
	assert.InDelta(t, 0, earnings.Actual[0].Revenue, 1e-9)   // May: no sales
	assert.InDelta(t, 200, earnings.Actual[1].Revenue, 1e-9) // June
	assert.InDelta(t, 0, earnings.Actual[2].Revenue, 1e-9)   // July
	assert.InDelta(t, 100, earnings.Actual[3].Revenue, 1e-9) // August

	if earnings.TodayIndex != len(earnings.Actual)-1 {
		t.Fatalf("today index must point at the last actual month, got %d", earnings.TodayIndex)
	}

	if len(earnings.Projected) != 6 {
		t.Fatalf("expected 6 projected months, got %d", len(earnings.Projected))
	}
	if earnings.Projected[0].Period != "Sep 2026" {
		t.Fatalf("projection must start the month after now, got %q", earnings.Projected[0].Period)
	}
	// 300 over 2 sale dates scaled to a month = 4500, compounding 2%
	assert.InDelta(t, 4500, earnings.Projected[0].Revenue, 1e-6)
	assert.InDelta(t, 4500*1.02, earnings.Projected[1].Revenue, 1e-6)
}

func TestRevenueOverTime_DailyBucketsForShortWindows(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{
		{
			ProductID: "prod-a", ProductName: "A", CurrentPrice: 10,
			Sales: []models.SaleRecord{
				{Price: 10, Quantity: 2, OccurredAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)},
				{Price: 15, Quantity: 1, OccurredAt: time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)},
			},
		},
		{
			ProductID: "prod-b", ProductName: "B", CurrentPrice: 5,
			Sales: []models.SaleRecord{
				{Price: 5, Quantity: 1, OccurredAt: time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)},
			},
		},
	}}
	calc := newTestCalculator(store)

	series, err := calc.RevenueOverTime(context.Background(), 7, "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Aug 18 through Aug 25 inclusive
	if len(series) != 8 {
		t.Fatalf("expected 8 daily buckets, got %d", len(series))
	}
	if series[0].Period != "2026-08-18" || series[len(series)-1].Period != "2026-08-25" {
		t.Fatalf("unexpected series range: %q .. %q", series[0].Period, series[len(series)-1].Period)
	}

	byPeriod := map[string]float64{}
	for _, p := range series {
		byPeriod[p.Period] = p.Revenue
	}
	assert.InDelta(t, 25, byPeriod["2026-08-20"], 1e-9)
	assert.InDelta(t, 15, byPeriod["2026-08-24"], 1e-9)
	assert.InDelta(t, 0, byPeriod["2026-08-22"], 1e-9)
}

func TestRevenueOverTime_MonthlyBucketsForLongWindows(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{{
		ProductID: "prod-a", ProductName: "A", CurrentPrice: 10,
		Sales: []models.SaleRecord{
			{Price: 10, Quantity: 3, OccurredAt: time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)},
		},
	}}}
	calc := newTestCalculator(store)

	series, err := calc.RevenueOverTime(context.Background(), 60, "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 60 days back from Aug 25 is Jun 26: June, July, August
	want := []string{"Jun 2026", "Jul 2026", "Aug 2026"}
	if len(series) != len(want) {
		t.Fatalf("expected %d monthly buckets, got %d", len(want), len(series))
	}
	for i, p := range series {
		if p.Period != want[i] {
			t.Fatalf("bucket %d: expected %q, got %q", i, want[i], p.Period)
		}
	}
	assert.InDelta(t, 30, series[1].Revenue, 1e-9)
}

func TestRevenueOverTime_EmptyWindowIsAnEmptySeries(t *testing.T) {
	store := &fakeStore{histories: []models.ProductSalesHistory{{
		ProductID: "prod-a", ProductName: "A", CurrentPrice: 10,
	}}}
	calc := newTestCalculator(store)

	series, err := calc.RevenueOverTime(context.Background(), 30, "m-1")
	if err != nil {
		t.Fatalf("an empty window is not an error, got %v", err)
	}
	if len(series) != 0 {
		t.Fatalf("expected an empty series, got %d points", len(series))
	}
}

func TestRevenueOverTime_UnreachableStore(t *testing.T) {
	calc := newTestCalculator(&fakeStore{pingErr: errors.New("no route to host")})
	_, err := calc.RevenueOverTime(context.Background(), 30, "m-1")
	if !errors.Is(err, ErrDatabaseConnection) {
		t.Fatalf("expected ErrDatabaseConnection, got %v", err)
	}
}
