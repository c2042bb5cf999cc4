package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"

	"shoplens-backend/config"
	"shoplens-backend/models"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"summary":"ok"}`, `{"summary":"ok"}`},
		{"markdown fences", "```json\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"prose around object", `Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"no object", "sorry, I cannot help with that", ""},
		{"reversed braces", "}{", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestConstructInsightsPrompt(t *testing.T) {
	report := &models.PriceRecommendationReport{
		Recommendations: []models.PriceRecommendation{
			{
				ProductName:      "Espresso Beans 1kg",
				CurrentPrice:     18,
				RecommendedPrice: 22.5,
				Confidence:       "high",
				PercentageChange: 25,
				CurrentRevenue:   1240,
				PotentialRevenue: 1317.5,
			},
		},
		RevenueProjections: []models.RevenueProjection{
			{Month: "Sep 2026", CurrentRevenue: 2530, OptimizedRevenue: 2695.65},
			{Month: "Oct 2026", CurrentRevenue: 2580.6, OptimizedRevenue: 2749.56},
		},
	}

	prompt := constructInsightsPrompt(report)

	if !strings.Contains(prompt, "Espresso Beans 1kg: current price 18.00, recommended price 22.50 (high confidence, 25% change)") {
		t.Fatalf("prompt is missing the recommendation facts:\n%s", prompt)
	}
	if !strings.Contains(prompt, "By Oct 2026") {
		t.Fatalf("prompt should cite the last projected month:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"positive_factors"`) {
		t.Fatalf("prompt should pin the output JSON shape:\n%s", prompt)
	}
}

func TestConstructInsightsPrompt_EmptyReport(t *testing.T) {
	prompt := constructInsightsPrompt(&models.PriceRecommendationReport{})
	if !strings.Contains(prompt, "No price changes are recommended at this time.") {
		t.Fatalf("empty report should still produce a prompt:\n%s", prompt)
	}
}

func TestParseInsightsResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text("```json\n{\"summary\":\"Raise beans\",\"positive_factors\":[\"stable demand\"],\"negative_factors\":[\"thin margins\"]}\n```"),
					},
				},
			},
		},
	}

	insights, err := parseInsightsResponse(resp)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if insights.Summary != "Raise beans" {
		t.Fatalf("unexpected summary %q", insights.Summary)
	}
	if len(insights.PositiveFactors) != 1 || insights.PositiveFactors[0] != "stable demand" {
		t.Fatalf("unexpected positive factors %v", insights.PositiveFactors)
	}
	if len(insights.NegativeFactors) != 1 || insights.NegativeFactors[0] != "thin margins" {
		t.Fatalf("unexpected negative factors %v", insights.NegativeFactors)
	}
}

func TestParseInsightsResponse_Errors(t *testing.T) {
	if _, err := parseInsightsResponse(nil); err == nil {
		t.Fatal("expected an error for a nil response")
	}

	empty := &genai.GenerateContentResponse{}
	if _, err := parseInsightsResponse(empty); err == nil {
		t.Fatal("expected an error for a response without candidates")
	}

	junk := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("I cannot answer that.")},
				},
			},
		},
	}
	if _, err := parseInsightsResponse(junk); err == nil {
		t.Fatal("expected an error when the response carries no JSON")
	}
}

func TestHandleGenerateInsights_RejectsUnknownConfidence(t *testing.T) {
	app := merchantApp(fiber.MethodPost, "/analytics/insights", HandleGenerateInsights)

	req := httptest.NewRequest("POST", "/analytics/insights", strings.NewReader(`{"confidence": "certain"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for an unknown confidence filter, got %d", resp.StatusCode)
	}
}

func TestHandleGenerateInsights_UnconfiguredKeyIs503(t *testing.T) {
	prev := config.AppConfig.GeminiAPIKey
	config.AppConfig.GeminiAPIKey = ""
	defer func() { config.AppConfig.GeminiAPIKey = prev }()

	app := merchantApp(fiber.MethodPost, "/analytics/insights", HandleGenerateInsights)

	req := httptest.NewRequest("POST", "/analytics/insights", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test error: %v", err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 when no API key is configured, got %d", resp.StatusCode)
	}
}
