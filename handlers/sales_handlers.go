package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
	"shoplens-backend/utils"
)

// HandleRecordSale records a sale with its line items, decrementing stock,
// all in one transaction. Items default to the product's current price when
// no unit price is given.
func HandleRecordSale(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	var req models.RecordSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "A sale requires at least one item"})
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Item %d is missing product_id", i+1)})
		}
		if item.Quantity < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Item %d has an invalid quantity", i+1)})
		}
		if item.UnitPrice != nil && *item.UnitPrice <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Item %d has an invalid unit price", i+1)})
		}
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = "cash"
	}
	saleDate := time.Now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	db := database.GetDB()
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		log.Printf("Error starting sale transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback(ctx)

	// Resolve prices and build line items before touching the sales table.
	total := decimal.Zero
	items := make([]models.SaleItem, 0, len(req.Items))

	for _, input := range req.Items {
		var productName string
		var productPrice float64
		var stock int

		lookup := `SELECT name, price, stock_quantity FROM products WHERE id = $1 AND merchant_id = $2 AND is_archived = FALSE FOR UPDATE`
		if err := tx.QueryRow(ctx, lookup, input.ProductID, claims.UserID).Scan(&productName, &productPrice, &stock); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Product %s not found", input.ProductID)})
			}
			log.Printf("Error looking up product %s: %v", input.ProductID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to record sale"})
		}

		if stock < input.Quantity {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Insufficient stock for %s: %d available, %d requested", productName, stock, input.Quantity)})
		}

		unitPrice := productPrice
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}

		subtotal := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(input.Quantity)))
		total = total.Add(subtotal)

		name := productName
		items = append(items, models.SaleItem{
			ProductID:   input.ProductID,
			Quantity:    input.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal.InexactFloat64(),
			ProductName: &name,
		})
	}

	saleNumber, err := utils.GenerateSaleNumber(ctx, tx, claims.UserID)
	if err != nil {
		log.Printf("Error generating sale number: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to record sale"})
	}

	sale := models.Sale{
		MerchantID:  claims.UserID,
		SaleNumber:  saleNumber,
		SaleDate:    saleDate,
		TotalAmount: total.InexactFloat64(),
		PaymentType: paymentType,
		Notes:       req.Notes,
	}

	saleQuery := `
		INSERT INTO sales (merchant_id, sale_number, sale_date, total_amount, payment_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	if err := tx.QueryRow(ctx, saleQuery, sale.MerchantID, sale.SaleNumber, sale.SaleDate, sale.TotalAmount, sale.PaymentType, sale.Notes).Scan(&sale.ID, &sale.CreatedAt); err != nil {
		log.Printf("Error creating sale: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create sale"})
	}

	for i := range items {
		items[i].SaleID = sale.ID

		itemQuery := `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`
		if err := tx.QueryRow(ctx, itemQuery, sale.ID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice, items[i].Subtotal).Scan(&items[i].ID); err != nil {
			log.Printf("Error creating sale item: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create sale item"})
		}

		stockQuery := `UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
		if _, err := tx.Exec(ctx, stockQuery, items[i].Quantity, items[i].ProductID); err != nil {
			log.Printf("Error decrementing stock for product %s: %v", items[i].ProductID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update stock"})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("Error committing sale transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction"})
	}

	sale.Items = items

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": sale})
}

// HandleListSales lists the merchant's sales, newest first, with line items.
func HandleListSales(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	db := database.GetDB()
	ctx := context.Background()

	log.Printf("📥 [SALES] Fetching sales for merchant %s, page %d, pageSize %d", claims.UserID, page, pageSize)

	query := `
		SELECT id, merchant_id, sale_number, sale_date, total_amount, payment_type, notes, created_at
		FROM sales
		WHERE merchant_id = $1
		ORDER BY sale_date DESC
		LIMIT $2 OFFSET $3`
	rows, err := db.Query(ctx, query, claims.UserID, pageSize, offset)
	if err != nil {
		log.Printf("❌ [SALES] Error listing sales: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sales"})
	}
	defer rows.Close()

	sales := make([]models.Sale, 0)
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.MerchantID, &sale.SaleNumber, &sale.SaleDate, &sale.TotalAmount, &sale.PaymentType, &sale.Notes, &sale.CreatedAt); err != nil {
			log.Printf("❌ [SALES] Error scanning sale: %v", err)
			continue
		}
		sales = append(sales, sale)
	}

	for i := range sales {
		items, err := fetchSaleItems(ctx, sales[i].ID)
		if err != nil {
			// One sale's items failing should not fail the whole page.
			log.Printf("⚠️ [SALES] Error fetching items for sale %s: %v", sales[i].ID, err)
			items = []models.SaleItem{}
		}
		sales[i].Items = items
	}

	var totalItems int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM sales WHERE merchant_id = $1", claims.UserID).Scan(&totalItems); err != nil {
		log.Printf("❌ [SALES] Error counting sales: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count sales"})
	}

	var response models.PaginatedSalesResponse
	response.Data.Items = sales
	response.Data.Meta = *utils.CreatePagination(totalItems, page, pageSize)

	return c.JSON(response)
}

// HandleGetSale retrieves a single sale with its line items.
func HandleGetSale(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	saleID := c.Params("saleId")

	db := database.GetDB()
	ctx := context.Background()

	query := `
		SELECT id, merchant_id, sale_number, sale_date, total_amount, payment_type, notes, created_at
		FROM sales
		WHERE id = $1 AND merchant_id = $2`
	var sale models.Sale
	err = db.QueryRow(ctx, query, saleID, claims.UserID).Scan(&sale.ID, &sale.MerchantID, &sale.SaleNumber, &sale.SaleDate, &sale.TotalAmount, &sale.PaymentType, &sale.Notes, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Sale not found"})
		}
		log.Printf("Error getting sale %s: %v", saleID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sale"})
	}

	items, err := fetchSaleItems(ctx, sale.ID)
	if err != nil {
		log.Printf("Error fetching items for sale %s: %v", sale.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sale items"})
	}
	sale.Items = items

	return c.JSON(fiber.Map{"status": "success", "data": sale})
}

// fetchSaleItems loads the line items of one sale, with the product's name
// and SKU joined in for display.
func fetchSaleItems(ctx context.Context, saleID string) ([]models.SaleItem, error) {
	query := `
		SELECT si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.subtotal, p.name, p.sku
		FROM sale_items si
		JOIN products p ON si.product_id = p.id
		WHERE si.sale_id = $1
		ORDER BY si.id`
	rows, err := database.GetDB().Query(ctx, query, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.SaleItem, 0)
	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.ProductName, &item.ProductSKU); err != nil {
			log.Printf("Error scanning sale item: %v", err)
			continue
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
