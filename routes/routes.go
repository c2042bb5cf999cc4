package routes

import (
	"github.com/gofiber/fiber/v2"

	"shoplens-backend/handlers"
	"shoplens-backend/middleware"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Authentication & Bootstrap Routes ---
	auth := api.Group("/auth")
	auth.Post("/login", handlers.HandleLogin)

	api.Post("/init/admin", handlers.HandleInitializeAdmin)

	// --- Admin Routes ---
	admin := api.Group("/admin", middleware.JWTMiddleware, middleware.AdminRequired)

	// Dashboard
	admin.Get("/dashboard/summary", handlers.HandleGetAdminDashboardSummary)

	// User Management
	admin.Get("/users/merchants-for-selection", handlers.HandleGetMerchantsForSelection) // Must be before /users/:userId
	admin.Post("/users", handlers.HandleCreateUser)
	admin.Get("/users", handlers.HandleGetUsers)
	admin.Put("/users/:userId", handlers.HandleAdminUpdateUser)

	// Analytics across tenants
	admin.Get("/analytics/price-recommendations", handlers.HandleAdminGetPriceRecommendations)

	// --- Merchant Routes ---
	merchant := api.Group("/merchant", middleware.JWTMiddleware, middleware.MerchantRequired)

	// Dashboard
	merchant.Get("/dashboard/summary", handlers.HandleGetMerchantDashboardSummary)
	merchant.Get("/dashboard/revenue-over-time", handlers.HandleGetRevenueOverTime)

	// Catalog
	products := merchant.Group("/products")
	products.Get("/", handlers.HandleListProducts)
	products.Post("/", handlers.HandleCreateProduct)
	products.Post("/import", handlers.HandleImportProducts) // Must be before /:productId
	products.Get("/:productId", handlers.HandleGetProduct)
	products.Put("/:productId", handlers.HandleUpdateProduct)
	products.Delete("/:productId", handlers.HandleArchiveProduct)
	products.Put("/:productId/stock", handlers.HandleUpdateProductStock)

	// Sales
	sales := merchant.Group("/sales")
	sales.Post("/", handlers.HandleRecordSale)
	sales.Get("/", handlers.HandleListSales)
	sales.Post("/sync", handlers.HandleSyncOfflineSales)
	sales.Get("/:saleId", handlers.HandleGetSale)

	// Onboarding wizard
	onboarding := merchant.Group("/onboarding")
	onboarding.Get("/", handlers.HandleGetOnboardingProgress)
	onboarding.Put("/step", handlers.HandleUpdateOnboardingStep)
	onboarding.Post("/complete", handlers.HandleCompleteOnboarding)

	// Pricing analytics
	analytics := merchant.Group("/analytics")
	analytics.Get("/price-recommendations", handlers.HandleGetPriceRecommendations)
	analytics.Get("/projected-earnings", handlers.HandleGetProjectedEarnings)
	analytics.Post("/insights", handlers.HandleGenerateInsights)
}
