package models

import "time"

// --- Pricing Analytics Models ---

// SaleRecord is a single historical observation of a product selling at a
// price: the raw input of the elasticity estimate. Read-only once built.
type SaleRecord struct {
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ProductSalesHistory bundles a product's catalog data with its in-window
// sale records, ordered by occurrence time.
type ProductSalesHistory struct {
	ProductID    string       `json:"productId"`
	ProductName  string       `json:"productName"`
	CurrentPrice float64      `json:"currentPrice"`
	Sales        []SaleRecord `json:"sales"`
}

// PriceRecommendation is one suggested price move for one product.
type PriceRecommendation struct {
	ProductID         string  `json:"productId"`
	ProductName       string  `json:"productName"`
	CurrentPrice      float64 `json:"currentPrice"`
	RecommendedPrice  float64 `json:"recommendedPrice"`
	Confidence        string  `json:"confidence"`
	CurrentRevenue    float64 `json:"currentRevenue"`
	PotentialRevenue  float64 `json:"potentialRevenue"`
	RevenueDifference float64 `json:"revenueDifference"`
	PercentageChange  float64 `json:"percentageChange"`
}

// RevenueProjection compares projected revenue for one future month under
// current pricing vs. the recommended pricing.
type RevenueProjection struct {
	Month            string  `json:"month"`
	CurrentRevenue   float64 `json:"currentRevenue"`
	OptimizedRevenue float64 `json:"optimizedRevenue"`
}

// PriceRecommendationReport is the full output of a recommendation run.
type PriceRecommendationReport struct {
	Recommendations    []PriceRecommendation `json:"recommendations"`
	RevenueProjections []RevenueProjection   `json:"revenueProjections"`
	SkippedProducts    int                   `json:"skippedProducts,omitempty"`
}

// TimeSeriesPoint is one labeled bucket of realized or projected revenue.
type TimeSeriesPoint struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

// ProjectedEarnings holds the past/future revenue chart for a merchant:
// realized monthly revenue up to the current month, then six projected
// months. TodayIndex marks the current month inside Actual.
type ProjectedEarnings struct {
	Actual     []TimeSeriesPoint `json:"actual"`
	Projected  []TimeSeriesPoint `json:"projected"`
	TodayIndex int               `json:"todayIndex"`
}

// AiInsights is the narrative commentary generated over a recommendation
// report.
type AiInsights struct {
	Summary         string   `json:"summary"`
	PositiveFactors []string `json:"positiveFactors"`
	NegativeFactors []string `json:"negativeFactors"`
}
