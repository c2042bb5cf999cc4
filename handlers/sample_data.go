package handlers

import (
	"math"
	"time"

	"shoplens-backend/models"
)

// Sample analytics payloads shown to merchants whose sales history is still
// too thin for the pricing engine. Month labels are computed from the clock
// so the charts always look current.

const sampleMonthlyGrowth = 1.02

func samplePriceRecommendationReport() *models.PriceRecommendationReport {
	recommendations := []models.PriceRecommendation{
		{
			ProductID:         "sample-espresso-beans",
			ProductName:       "Classic Espresso Beans 1kg",
			CurrentPrice:      18.00,
			RecommendedPrice:  22.50,
			Confidence:        "high",
			CurrentRevenue:    1240.00,
			PotentialRevenue:  1317.50,
			RevenueDifference: 77.50,
			PercentageChange:  25,
		},
		{
			ProductID:         "sample-house-blend",
			ProductName:       "House Blend Coffee 500g",
			CurrentPrice:      12.00,
			RecommendedPrice:  10.80,
			Confidence:        "low",
			CurrentRevenue:    860.00,
			PotentialRevenue:  913.32,
			RevenueDifference: 53.32,
			PercentageChange:  -10,
		},
		{
			ProductID:         "sample-pour-over",
			ProductName:       "Ceramic Pour-Over Dripper",
			CurrentPrice:      24.00,
			RecommendedPrice:  27.60,
			Confidence:        "medium",
			CurrentRevenue:    430.00,
			PotentialRevenue:  464.83,
			RevenueDifference: 34.83,
			PercentageChange:  15,
		},
	}

	var current, optimized float64
	for _, r := range recommendations {
		current += r.CurrentRevenue
		optimized += r.PotentialRevenue
	}

	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	projections := make([]models.RevenueProjection, 0, 6)
	for i := 0; i < 6; i++ {
		growth := math.Pow(sampleMonthlyGrowth, float64(i))
		projections = append(projections, models.RevenueProjection{
			Month:            anchor.AddDate(0, i+1, 0).Format("Jan 2006"),
			CurrentRevenue:   current * growth,
			OptimizedRevenue: optimized * growth,
		})
	}

	return &models.PriceRecommendationReport{
		Recommendations:    recommendations,
		RevenueProjections: projections,
	}
}

func sampleAiInsights() *models.AiInsights {
	return &models.AiInsights{
		Summary: "There is not enough sales history yet to analyze your pricing. Once you have recorded around 30 sales per product, the engine can estimate how demand responds to price and suggest concrete changes.",
		PositiveFactors: []string{
			"Every sale you record improves the accuracy of future recommendations.",
			"Products with stable repeat sales reach the high-confidence tier fastest.",
		},
		NegativeFactors: []string{
			"Recommendations need sales at more than one price point to measure demand.",
			"Short sales histories can only support small, low-confidence price moves.",
		},
	}
}

func sampleProjectedEarnings() *models.ProjectedEarnings {
	monthly := []float64{1820, 2040, 1960, 2210, 2380, 2530}

	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	actual := make([]models.TimeSeriesPoint, 0, len(monthly))
	for i, revenue := range monthly {
		month := anchor.AddDate(0, i-(len(monthly)-1), 0)
		actual = append(actual, models.TimeSeriesPoint{
			Period:  month.Format("Jan 2006"),
			Revenue: revenue,
		})
	}

	base := monthly[len(monthly)-1]
	projected := make([]models.TimeSeriesPoint, 0, 6)
	for i := 0; i < 6; i++ {
		projected = append(projected, models.TimeSeriesPoint{
			Period:  anchor.AddDate(0, i+1, 0).Format("Jan 2006"),
			Revenue: base * math.Pow(sampleMonthlyGrowth, float64(i)),
		})
	}

	return &models.ProjectedEarnings{
		Actual:     actual,
		Projected:  projected,
		TodayIndex: len(actual) - 1,
	}
}
