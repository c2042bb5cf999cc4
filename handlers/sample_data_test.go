package handlers

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSamplePriceRecommendationReport_InternallyConsistent(t *testing.T) {
	report := samplePriceRecommendationReport()

	if len(report.Recommendations) == 0 {
		t.Fatal("sample report must contain recommendations")
	}

	seen := map[string]bool{}
	var current, optimized float64
	for _, rec := range report.Recommendations {
		seen[rec.Confidence] = true
		assert.InDelta(t, rec.CurrentPrice*(1+rec.PercentageChange/100), rec.RecommendedPrice, 1e-9,
			"recommended price must match the stated percentage change for %s", rec.ProductID)
		assert.InDelta(t, rec.PotentialRevenue-rec.CurrentRevenue, rec.RevenueDifference, 1e-6,
			"revenue difference must match the revenue columns for %s", rec.ProductID)
		current += rec.CurrentRevenue
		optimized += rec.PotentialRevenue
	}
	for _, tier := range []string{"high", "medium", "low"} {
		if !seen[tier] {
			t.Fatalf("sample report should demonstrate the %s confidence tier", tier)
		}
	}

	if len(report.RevenueProjections) != 6 {
		t.Fatalf("expected 6 projected months, got %d", len(report.RevenueProjections))
	}
	for i, proj := range report.RevenueProjections {
		growth := math.Pow(sampleMonthlyGrowth, float64(i))
		assert.InDelta(t, current*growth, proj.CurrentRevenue, 1e-6)
		assert.InDelta(t, optimized*growth, proj.OptimizedRevenue, 1e-6)
		if proj.OptimizedRevenue <= proj.CurrentRevenue {
			t.Fatalf("month %d: optimized revenue should exceed current revenue", i)
		}
	}

	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if got, want := report.RevenueProjections[0].Month, anchor.AddDate(0, 1, 0).Format("Jan 2006"); got != want {
		t.Fatalf("first projection should be next month %q, got %q", want, got)
	}
}

func TestSampleProjectedEarnings_ChartShape(t *testing.T) {
	earnings := sampleProjectedEarnings()

	if len(earnings.Actual) == 0 {
		t.Fatal("sample earnings need realized months")
	}
	if len(earnings.Projected) != 6 {
		t.Fatalf("expected 6 projected months, got %d", len(earnings.Projected))
	}
	if earnings.TodayIndex != len(earnings.Actual)-1 {
		t.Fatalf("today must be the last actual point, got index %d", earnings.TodayIndex)
	}

	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if got, want := earnings.Actual[earnings.TodayIndex].Period, anchor.Format("Jan 2006"); got != want {
		t.Fatalf("last actual point should be the current month %q, got %q", want, got)
	}
	if got, want := earnings.Projected[0].Period, anchor.AddDate(0, 1, 0).Format("Jan 2006"); got != want {
		t.Fatalf("first projected point should be next month %q, got %q", want, got)
	}

	base := earnings.Actual[len(earnings.Actual)-1].Revenue
	for i, point := range earnings.Projected {
		assert.InDelta(t, base*math.Pow(sampleMonthlyGrowth, float64(i)), point.Revenue, 1e-6)
	}
}

func TestSampleAiInsights_HasNarrative(t *testing.T) {
	insights := sampleAiInsights()

	if insights.Summary == "" {
		t.Fatal("sample insights need a summary")
	}
	if len(insights.PositiveFactors) == 0 || len(insights.NegativeFactors) == 0 {
		t.Fatal("sample insights need both factor lists")
	}
}
