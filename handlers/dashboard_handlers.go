package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"shoplens-backend/config"
	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
	"shoplens-backend/pricing"
)

// HandleGetMerchantDashboardSummary fetches summary data for the merchant dashboard.
// An optional ?days=N narrows the revenue and transaction KPIs to a window.
func HandleGetMerchantDashboardSummary(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	merchantID := claims.UserID

	days := c.QueryInt("days", 0)
	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	var summary models.MerchantDashboardSummary

	// 1. Total Sales Revenue
	querySales := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE merchant_id = $1
	`
	argsSales := []interface{}{merchantID}
	if days > 0 {
		querySales += " AND sale_date >= $2"
		argsSales = append(argsSales, since)
	}
	err = db.QueryRow(ctx, querySales, argsSales...).Scan(&summary.TotalSalesRevenue.Value)
	if err != nil {
		log.Printf("Error fetching total sales revenue: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch total sales revenue"})
	}

	// 2. Number of Transactions
	queryTransactions := `
		SELECT COUNT(*)
		FROM sales
		WHERE merchant_id = $1
	`
	argsTransactions := []interface{}{merchantID}
	if days > 0 {
		queryTransactions += " AND sale_date >= $2"
		argsTransactions = append(argsTransactions, since)
	}
	err = db.QueryRow(ctx, queryTransactions, argsTransactions...).Scan(&summary.NumberOfTransactions.Value)
	if err != nil {
		log.Printf("Error fetching number of transactions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch number of transactions"})
	}

	// 3. Average Order Value
	if summary.NumberOfTransactions.Value > 0 {
		summary.AverageOrderValue.Value = summary.TotalSalesRevenue.Value / summary.NumberOfTransactions.Value
	} else {
		summary.AverageOrderValue.Value = 0
	}

	// 4. Low Stock Items
	queryLowStock := `
		SELECT COUNT(*)
		FROM products
		WHERE merchant_id = $1
		  AND is_archived = FALSE
		  AND low_stock_threshold IS NOT NULL
		  AND stock_quantity <= low_stock_threshold
	`
	err = db.QueryRow(ctx, queryLowStock, merchantID).Scan(&summary.LowStockItems.Value)
	if err != nil {
		log.Printf("Error fetching low stock count: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch low stock count"})
	}

	// 5. Top Selling Products
	queryTopProducts := `
		SELECT
			p.id AS product_id,
			p.name AS product_name,
			COALESCE(SUM(si.quantity), 0) AS quantity_sold,
			COALESCE(SUM(si.subtotal), 0) AS revenue
		FROM sales s
		JOIN sale_items si ON s.id = si.sale_id
		JOIN products p ON si.product_id = p.id
		WHERE s.merchant_id = $1
	`
	argsTopProducts := []interface{}{merchantID}
	if days > 0 {
		queryTopProducts += " AND s.sale_date >= $2"
		argsTopProducts = append(argsTopProducts, since)
	}
	queryTopProducts += `
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT 5
	`

	rows, err := db.Query(ctx, queryTopProducts, argsTopProducts...)
	if err != nil {
		log.Printf("Error fetching top selling products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch top selling products"})
	}
	defer rows.Close()

	products := []models.ProductSummary{}
	for rows.Next() {
		var p models.ProductSummary
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.QuantitySold, &p.Revenue); err != nil {
			log.Printf("Error scanning top product row: %v", err)
			continue
		}
		products = append(products, p)
	}
	summary.TopSellingProducts = products

	return c.JSON(summary)
}

// HandleGetRevenueOverTime returns the realized revenue series for the
// dashboard chart, bucketed per day for short windows and per month for long
// ones.
func HandleGetRevenueOverTime(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	days := c.QueryInt("days", config.AppConfig.Analytics.DefaultWindowDays)

	calc := pricing.NewCalculator(pricing.NewPGHistoryStore(database.GetDB()))
	series, err := calc.RevenueOverTime(context.Background(), days, claims.UserID)
	if err != nil {
		if errors.Is(err, pricing.ErrDatabaseConnection) {
			log.Printf("Revenue over time unavailable: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Database is unreachable"})
		}
		log.Printf("Error computing revenue over time: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to compute revenue over time"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": series})
}
