package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"shoplens-backend/config"
	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
	"shoplens-backend/pricing"
)

// The Gemini call budget is shared across all merchants: the free tier is
// per-project, not per-tenant.
var (
	insightsLimiterOnce sync.Once
	insightsLimiter     *rate.Limiter
)

func geminiLimiter() *rate.Limiter {
	insightsLimiterOnce.Do(func() {
		rpm := config.AppConfig.Insights.RequestsPerMinute
		if rpm <= 0 {
			rpm = 6
		}
		burst := config.AppConfig.Insights.Burst
		if burst <= 0 {
			burst = 1
		}
		insightsLimiter = rate.NewLimiter(rate.Limit(rpm/60.0), burst)
	})
	return insightsLimiter
}

// HandleGenerateInsights runs the pricing engine and asks Gemini to write a
// short narrative over the resulting recommendations.
// POST /api/v1/merchant/analytics/insights
func HandleGenerateInsights(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var body struct {
		Days       int    `json:"days"`
		Confidence string `json:"confidence"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
		}
	}
	if body.Days <= 0 {
		body.Days = config.AppConfig.Analytics.DefaultWindowDays
	}
	if body.Confidence == "" {
		body.Confidence = pricing.ConfidenceAll
	}
	if !pricing.ValidConfidence(body.Confidence) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": fmt.Sprintf("Invalid confidence filter %q", body.Confidence)})
	}

	if config.AppConfig.GeminiAPIKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "AI service is not configured"})
	}

	ctx := context.Background()

	calc := pricing.NewCalculator(pricing.NewPGHistoryStore(database.GetDB()))
	report, err := calc.CalculatePriceRecommendations(ctx, body.Days, claims.UserID, body.Confidence)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrDatabaseConnection):
			log.Printf("Insights unavailable: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "Database is unreachable"})
		case errors.Is(err, pricing.ErrInsufficientData):
			return c.JSON(fiber.Map{"success": true, "data": sampleAiInsights(), "isSampleData": true})
		default:
			log.Printf("Error calculating recommendations for insights: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to calculate price recommendations"})
		}
	}

	if err := geminiLimiter().Wait(ctx); err != nil {
		log.Printf("Insights rate limiter interrupted: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "AI service is busy, try again shortly"})
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to connect to AI service"})
	}
	defer client.Close()

	model := client.GenerativeModel(config.AppConfig.Insights.Model)
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockNone,
		},
	}

	prompt := constructInsightsPrompt(report)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Error from Gemini API: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to generate insights from AI"})
	}

	insights, err := parseInsightsResponse(resp)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": insights, "isSampleData": false})
}

// constructInsightsPrompt renders the recommendation report as plain facts
// for the model to comment on.
func constructInsightsPrompt(report *models.PriceRecommendationReport) string {
	dataStr := ""
	for _, r := range report.Recommendations {
		dataStr += fmt.Sprintf("%s: current price %.2f, recommended price %.2f (%s confidence, %.0f%% change), estimated monthly revenue %.2f -> %.2f.\n",
			r.ProductName, r.CurrentPrice, r.RecommendedPrice, r.Confidence, r.PercentageChange, r.CurrentRevenue, r.PotentialRevenue)
	}
	if dataStr == "" {
		dataStr = "No price changes are recommended at this time."
	}

	projectionStr := ""
	if n := len(report.RevenueProjections); n > 0 {
		last := report.RevenueProjections[n-1]
		projectionStr = fmt.Sprintf("By %s, projected monthly revenue is %.2f under current pricing and %.2f under recommended pricing.",
			last.Month, last.CurrentRevenue, last.OptimizedRevenue)
	}

	jsonFormat := `{"summary":"string","positive_factors":["string",...],"negative_factors":["string",...]}`

	return fmt.Sprintf(`
        You are an expert retail pricing analyst. Write a short, plain-language analysis of the price recommendations below for a small business owner.

        **Today's Date:** %s

        **Price Recommendations:**
        %s

        **Revenue Projection:**
        %s

        **Required Output:**
        You must provide a single, minified JSON object with the following exact structure. Do not include any markdown formatting, backticks, or explanatory text before or after the JSON object.

        %s
    `, time.Now().Format("2006-01-02"), dataStr, projectionStr, jsonFormat)
}

func extractJSON(rawString string) string {
	start := strings.Index(rawString, "{")
	end := strings.LastIndex(rawString, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return rawString[start : end+1]
}

// parseInsightsResponse parses the JSON from Gemini into a structured response.
func parseInsightsResponse(resp *genai.GenerateContentResponse) (*models.AiInsights, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content received from AI")
	}

	var geminiText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			geminiText += string(txt)
		}
	}
	if geminiText == "" {
		return nil, fmt.Errorf("no text content received from AI")
	}

	// Clean the response to get only the JSON object
	jsonStr := extractJSON(geminiText)
	if jsonStr == "" {
		log.Printf("Could not extract JSON from Gemini response: %s", geminiText)
		return nil, fmt.Errorf("failed to parse AI response format")
	}

	var geminiJSON struct {
		Summary         string   `json:"summary"`
		PositiveFactors []string `json:"positive_factors"`
		NegativeFactors []string `json:"negative_factors"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &geminiJSON); err != nil {
		log.Printf("Error parsing Gemini JSON: %v\nRaw JSON: %s", err, jsonStr)
		return nil, fmt.Errorf("failed to parse AI insights data")
	}

	return &models.AiInsights{
		Summary:         geminiJSON.Summary,
		PositiveFactors: geminiJSON.PositiveFactors,
		NegativeFactors: geminiJSON.NegativeFactors,
	}, nil
}
