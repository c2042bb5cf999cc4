package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- Custom JSON Type for database/sql ---

// JSONB allows storing JSON data in a PostgreSQL jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, &j)
}

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// --- Core Models ---

// User represents a user in the system (Admin or Merchant). Merchants are
// tenants: every product and sale hangs off the merchant's user id.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	StoreName *string   `json:"store_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents an item in a merchant's catalog.
type Product struct {
	ID                string    `json:"id"`
	MerchantID        string    `json:"merchant_id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	SKU               *string   `json:"sku,omitempty"`
	Category          *string   `json:"category,omitempty"`
	Price             float64   `json:"price"`
	CostPrice         *float64  `json:"cost_price,omitempty"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty"`
	IsArchived        bool      `json:"is_archived"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Sale represents a single transaction.
type Sale struct {
	ID          string     `json:"id"`
	MerchantID  string     `json:"merchant_id"`
	SaleNumber  string     `json:"sale_number"`
	SaleDate    time.Time  `json:"sale_date"`
	TotalAmount float64    `json:"total_amount"`
	PaymentType string     `json:"payment_type"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []SaleItem `json:"items,omitempty"`
}

// SaleItem is an individual item within a Sale.
type SaleItem struct {
	ID          string  `json:"id"`
	SaleID      string  `json:"sale_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	ProductName *string `json:"product_name,omitempty"`
	ProductSKU  *string `json:"product_sku,omitempty"`
}

// OnboardingProgress tracks a merchant's position in the setup wizard.
type OnboardingProgress struct {
	MerchantID      string    `json:"merchant_id"`
	CurrentStep     int       `json:"current_step"`
	CompletedSteps  []int     `json:"completed_steps"`
	BusinessProfile JSONB     `json:"business_profile,omitempty"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// --- API Request/Response Structs ---

// CreateUserRequest defines the body for creating a new user.
type CreateUserRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	StoreName *string `json:"store_name,omitempty"`
}

// CreateProductRequest defines the body for creating a new product.
type CreateProductRequest struct {
	Name              string   `json:"name"`
	Description       *string  `json:"description,omitempty"`
	SKU               *string  `json:"sku,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Price             float64  `json:"price"`
	CostPrice         *float64 `json:"cost_price,omitempty"`
	StockQuantity     int      `json:"stock_quantity"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty"`
}

// UpdateProductRequest defines the body for updating a product. Nil fields
// are left unchanged.
type UpdateProductRequest struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	SKU               *string  `json:"sku,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	CostPrice         *float64 `json:"cost_price,omitempty"`
	StockQuantity     *int     `json:"stock_quantity,omitempty"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty"`
	IsArchived        *bool    `json:"is_archived,omitempty"`
}

// UpdateStockRequest defines the body for adjusting a product's stock level.
type UpdateStockRequest struct {
	StockQuantity int     `json:"stock_quantity"`
	Reason        *string `json:"reason,omitempty"`
}

// RecordSaleRequest defines the body for recording a sale.
type RecordSaleRequest struct {
	SaleDate    *time.Time            `json:"sale_date,omitempty"`
	PaymentType string                `json:"payment_type"`
	Notes       *string               `json:"notes,omitempty"`
	Items       []RecordSaleItemInput `json:"items"`
}

// RecordSaleItemInput is one line of a RecordSaleRequest.
type RecordSaleItemInput struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

// UpdateOnboardingStepRequest marks a wizard step as completed.
type UpdateOnboardingStepRequest struct {
	Step            int   `json:"step"`
	BusinessProfile JSONB `json:"business_profile,omitempty"`
}

// ImportRowError reports a single rejected row of a CSV product import.
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportReport summarizes a CSV product import.
type ImportReport struct {
	BatchID  string           `json:"batch_id"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// AdminDashboardSummary defines the structure for the admin dashboard summary.
type AdminDashboardSummary struct {
	TotalActiveMerchants int `json:"total_active_merchants"`
	TotalProductsListed  int `json:"total_products_listed"`
	TotalSalesRecorded   int `json:"total_sales_recorded"`
}

// KpiData represents a single Key Performance Indicator.
type KpiData struct {
	Value float64 `json:"value"`
}

// ProductSummary represents a summary of a single product's performance.
type ProductSummary struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// MerchantDashboardSummary defines the structure for the merchant dashboard summary.
type MerchantDashboardSummary struct {
	TotalSalesRevenue    KpiData          `json:"total_sales_revenue"`
	NumberOfTransactions KpiData          `json:"number_of_transactions"`
	AverageOrderValue    KpiData          `json:"average_order_value"`
	LowStockItems        KpiData          `json:"low_stock_items"`
	TopSellingProducts   []ProductSummary `json:"top_selling_products"`
}

// --- Paginated Responses ---

// Pagination details for paginated responses.
type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// PaginatedProductsResponse for a merchant's catalog.
type PaginatedProductsResponse struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PaginatedSalesResponse for sales history.
type PaginatedSalesResponse struct {
	Data struct {
		Items []Sale     `json:"items"`
		Meta  Pagination `json:"meta"`
	} `json:"data"`
}

// PaginatedUsersResponse is the generic structure for paginated users.
type PaginatedUsersResponse struct {
	Data       []User     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// UserSelectionItem for dropdowns
type UserSelectionItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
