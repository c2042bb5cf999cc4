package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/olekukonko/tablewriter"

	"shoplens-backend/config"
	"shoplens-backend/database"
	"shoplens-backend/models"
	"shoplens-backend/pricing"
)

// pricereport runs the price recommendation engine against the configured
// database and renders the result as tables, for operators who want the
// numbers without going through the API.
func main() {
	days := flag.Int("days", 0, "sales history window in days (0 = configured default)")
	merchant := flag.String("merchant", "", "merchant id to analyze (empty = all merchants)")
	confidence := flag.String("confidence", pricing.ConfidenceAll, "confidence filter: high, medium, low or all")
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	if !pricing.ValidConfidence(*confidence) {
		log.Fatalf("Invalid confidence filter %q: expected high, medium, low or all", *confidence)
	}

	windowDays := *days
	if windowDays <= 0 {
		windowDays = cfg.Analytics.DefaultWindowDays
	}

	if err := database.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	calc := pricing.NewCalculator(pricing.NewPGHistoryStore(database.GetDB()))
	report, err := calc.CalculatePriceRecommendations(context.Background(), windowDays, *merchant, *confidence)
	if err != nil {
		if errors.Is(err, pricing.ErrInsufficientData) {
			fmt.Println("Not enough historical sales data to generate recommendations.")
			return
		}
		log.Fatalf("Price recommendation run failed: %v", err)
	}

	printRecommendations(os.Stdout, report.Recommendations)
	fmt.Println()
	printProjections(os.Stdout, report.RevenueProjections)

	if report.SkippedProducts > 0 {
		fmt.Printf("\n%d product(s) skipped due to fetch errors.\n", report.SkippedProducts)
	}
}

func printRecommendations(out io.Writer, recs []models.PriceRecommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No price changes recommended for the selected window and confidence filter.")
		return
	}

	fmt.Fprintf(out, "Price recommendations (%d product(s)):\n", len(recs))

	table := tablewriter.NewWriter(out)
	table.Header("Product", "Confidence", "Current", "Recommended", "Change", "Revenue/mo", "Potential/mo", "Difference")

	for _, r := range recs {
		table.Append(
			r.ProductName,
			r.Confidence,
			fmt.Sprintf("$%.2f", r.CurrentPrice),
			fmt.Sprintf("$%.2f", r.RecommendedPrice),
			fmt.Sprintf("%+.0f%%", r.PercentageChange),
			fmt.Sprintf("$%.2f", r.CurrentRevenue),
			fmt.Sprintf("$%.2f", r.PotentialRevenue),
			fmt.Sprintf("%+.2f", r.RevenueDifference),
		)
	}

	table.Render()
}

func printProjections(out io.Writer, projections []models.RevenueProjection) {
	if len(projections) == 0 {
		return
	}

	fmt.Fprintln(out, "Six-month revenue projection:")

	table := tablewriter.NewWriter(out)
	table.Header("Month", "Current Pricing", "Recommended Pricing", "Lift")

	for _, p := range projections {
		table.Append(
			p.Month,
			fmt.Sprintf("$%.2f", p.CurrentRevenue),
			fmt.Sprintf("$%.2f", p.OptimizedRevenue),
			fmt.Sprintf("%+.2f", p.OptimizedRevenue-p.CurrentRevenue),
		)
	}

	table.Render()
}
