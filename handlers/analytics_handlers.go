package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"shoplens-backend/config"
	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
	"shoplens-backend/pricing"
)

// HandleGetPriceRecommendations runs the pricing engine over the merchant's
// sales history and returns confidence-scored price recommendations with a
// six-month revenue projection.
func HandleGetPriceRecommendations(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	days := c.QueryInt("days", config.AppConfig.Analytics.DefaultWindowDays)
	confidence := c.Query("confidence", pricing.ConfidenceAll)
	if !pricing.ValidConfidence(confidence) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Invalid confidence filter %q: expected high, medium, low or all", confidence)})
	}

	calc := pricing.NewCalculator(pricing.NewPGHistoryStore(database.GetDB()))
	report, err := calc.CalculatePriceRecommendations(context.Background(), days, claims.UserID, confidence)

	return respondPriceRecommendations(c, report, err)
}

// HandleAdminGetPriceRecommendations is the admin twin: it runs across every
// tenant unless a merchantId query narrows the scope.
func HandleAdminGetPriceRecommendations(c *fiber.Ctx) error {
	days := c.QueryInt("days", config.AppConfig.Analytics.DefaultWindowDays)
	confidence := c.Query("confidence", pricing.ConfidenceAll)
	if !pricing.ValidConfidence(confidence) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Invalid confidence filter %q: expected high, medium, low or all", confidence)})
	}

	merchantID := c.Query("merchantId")

	calc := pricing.NewCalculator(pricing.NewPGHistoryStore(database.GetDB()))
	report, err := calc.CalculatePriceRecommendations(context.Background(), days, merchantID, confidence)

	return respondPriceRecommendations(c, report, err)
}

// HandleGetProjectedEarnings returns the merchant's realized monthly revenue
// plus a six-month projection.
func HandleGetProjectedEarnings(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	days := c.QueryInt("days", config.AppConfig.Analytics.DefaultWindowDays)

	calc := pricing.NewCalculator(pricing.NewPGHistoryStore(database.GetDB()))
	earnings, err := calc.CalculateProjectedEarnings(context.Background(), days, claims.UserID)

	return respondProjectedEarnings(c, earnings, err)
}

// respondPriceRecommendations maps the pricing error taxonomy onto HTTP.
// Connectivity failures are 503, thin history substitutes the sample report
// so new merchants still see the feature, anything else is a 500.
func respondPriceRecommendations(c *fiber.Ctx, report *models.PriceRecommendationReport, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrDatabaseConnection):
			log.Printf("Price recommendations unavailable: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Database is unreachable"})
		case errors.Is(err, pricing.ErrInsufficientData):
			return c.JSON(fiber.Map{
				"status":       "success",
				"data":         samplePriceRecommendationReport(),
				"isSampleData": true,
				"message":      "Not enough sales history yet; showing sample data",
			})
		default:
			log.Printf("Error calculating price recommendations: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to calculate price recommendations"})
		}
	}

	return c.JSON(fiber.Map{"status": "success", "data": report, "isSampleData": false})
}

// respondProjectedEarnings applies the same taxonomy mapping for the
// earnings endpoint.
func respondProjectedEarnings(c *fiber.Ctx, earnings *models.ProjectedEarnings, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrDatabaseConnection):
			log.Printf("Projected earnings unavailable: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Database is unreachable"})
		case errors.Is(err, pricing.ErrInsufficientData):
			return c.JSON(fiber.Map{
				"status":       "success",
				"data":         sampleProjectedEarnings(),
				"isSampleData": true,
				"message":      "Not enough sales history yet; showing sample data",
			})
		default:
			log.Printf("Error calculating projected earnings: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to calculate projected earnings"})
		}
	}

	return c.JSON(fiber.Map{"status": "success", "data": earnings, "isSampleData": false})
}
